package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"testing/quick"
	"time"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name      string
		announced string
		status    string
		want      string // "" means not ok
	}{
		{"announced full", "2024, January 17", "", "2024-01-17"},
		{"status released", "", "Released 2024, January 24", "2024-01-24"},
		{"status wins", "2024, January 17", "Available. Released 2024, January 24", "2024-01-24"},
		{"no day defaults to 15", "2023, September", "", "2023-09-15"},
		{"year only", "2022", "", "2022-01-15"},
		{"month prefix", "2021, Sept 3", "", "2021-09-03"},
		{"short month", "2021, Mar 3", "", "2021-03-03"},
		{"unknown month word", "2024, Q1", "", "2024-01-15"},
		{"status without release falls back", "2020, May 4", "Coming soon. Exp. release 2020, June", "2020-05-04"},
		{"status released without day", "", "Released 2019, October", "2019-10-15"},
		{"ordinal day", "2024, January 24th", "", "2024-01-24"},
		{"ordinal status day", "", "Released 2023, March 2nd", "2023-03-02"},
		{"ordinal first", "2022, August 1st", "", "2022-08-01"},
		{"ordinal third", "2021, May 3rd", "", "2021-05-03"},
		{"impossible day", "2023, February 30", "", ""},
		{"zero day", "2023, April 0", "", ""},
		{"no year", "Not announced yet", "", ""},
		{"empty", "", "", ""},
		{"garbage", "§§§", "Available", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.announced, tt.status)
			if tt.want == "" {
				if ok {
					t.Errorf("expected no date, got %s", got.Format("2006-01-02"))
				}
				return
			}
			if !ok {
				t.Fatalf("expected %s, got not ok", tt.want)
			}
			if s := got.Format("2006-01-02"); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
		})
	}
}

var fourDigits = regexp.MustCompile(`\d{4}`)

// dateHolds checks the properties every Date result must satisfy
func dateHolds(announced, status string) error {
	got, ok := Date(announced, status)
	again, okAgain := Date(announced, status)
	if ok != okAgain || !got.Equal(again) {
		return fmt.Errorf("not deterministic: %v/%v vs %v/%v", got, ok, again, okAgain)
	}
	if !ok {
		return nil
	}
	if !fourDigits.MatchString(announced) && !fourDigits.MatchString(status) {
		return fmt.Errorf("date %v from input without a year", got)
	}
	year := fmt.Sprintf("%04d", got.Year())
	if !strings.Contains(announced, year) && !strings.Contains(status, year) {
		return fmt.Errorf("year %s not present in input", year)
	}
	if got.Day() < 1 || got.Day() > 31 {
		return fmt.Errorf("impossible day %d", got.Day())
	}
	return nil
}

func TestDate_ArbitraryInput(t *testing.T) {
	prop := func(announced, status string) bool {
		if err := dateHolds(announced, status); err != nil {
			t.Log(err)
			return false
		}
		return true
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestDate_GeneratedDates(t *testing.T) {
	prop := func(y uint16, m, d uint8, released bool) bool {
		year := 1990 + int(y%60)
		month := time.Month(int(m%12) + 1)
		day := int(d % 40)

		text := fmt.Sprintf("%d, %s %d", year, month, day)
		announced, status := text, ""
		if released {
			announced, status = "", "Available. Released "+text
		}

		got, ok := Date(announced, status)
		valid := day >= 1 && day <= time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if ok != valid {
			t.Logf("%q/%q: ok=%v, want %v", announced, status, ok, valid)
			return false
		}
		return !ok || (got.Year() == year && got.Month() == month && got.Day() == day)
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func FuzzDate(f *testing.F) {
	for _, seed := range [][2]string{
		{"2024, January 17", ""},
		{"", "Released 2024, January 24th"},
		{"Not announced yet", "Coming soon"},
		{"99999, Foo 99", "\x00\xff"},
	} {
		f.Add(seed[0], seed[1])
	}
	f.Fuzz(func(t *testing.T, announced, status string) {
		if err := dateHolds(announced, status); err != nil {
			t.Error(err)
		}
	})
}

func TestLookupMonth(t *testing.T) {
	for in, want := range map[string]int{
		"January": 1, "feb": 2, "MARCH": 3, "Dec": 12, "xy": 1, "": 1, "Foo": 1,
	} {
		if got := int(lookupMonth(in)); got != want {
			t.Errorf("lookupMonth(%q) = %d, want %d", in, got, want)
		}
	}
}
