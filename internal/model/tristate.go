package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tristate is a boolean with an explicit unknown state
type Tristate int8

const (
	TriUnknown Tristate = iota
	TriYes
	TriNo
)

// TristateOf converts a known boolean
func TristateOf(b bool) Tristate {
	if b {
		return TriYes
	}
	return TriNo
}

// Known reports whether the value is yes or no
func (t Tristate) Known() bool {
	return t == TriYes || t == TriNo
}

// Bool returns true only for TriYes
func (t Tristate) Bool() bool {
	return t == TriYes
}

func (t Tristate) String() string {
	switch t {
	case TriYes:
		return "yes"
	case TriNo:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes unknown as null
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case TriYes:
		return []byte("true"), nil
	case TriNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null
func (t *Tristate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = TriUnknown
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tristate: %w", err)
	}
	*t = TristateOf(b)
	return nil
}
