package extract

import (
	"strings"
	"testing"
)

func TestPageText(t *testing.T) {
	content := `<html><head><title>T</title><style>p{}</style></head><body>
		<h1>Pixel 8</h1>
		<script>track()</script>
		<p>Great   phone.</p>
		<table><tr><td>Chipset</td><td>Tensor G3</td></tr></table>
	</body></html>`

	got := PageText(content, "text/html")
	want := "Pixel 8\nGreat phone.\nChipset | Tensor G3"
	if got != want {
		t.Errorf("PageText = %q, want %q", got, want)
	}
}

func TestPageText_MarkdownUnchanged(t *testing.T) {
	md := "# Pixel 8\n\n| Chipset | Tensor G3 |"
	if got := PageText(md, "text/markdown"); got != md {
		t.Errorf("PageText changed markdown: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 0, "hello"},
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"€€€€", 2, "€€"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
	if !strings.HasPrefix(Truncate("abc", 1), "a") {
		t.Error("prefix lost")
	}
}
