package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrNoRule        = errors.New("no validation rule for brand")
)

// Stage names used in failure reports
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageWrite   = "write"
)

// FetchError is a network, timeout or non-2xx failure from a source
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means the page could not be turned into a usable field map
type ExtractionError struct {
	URL     string
	Missing []string // Required fields absent from the response
	Err     error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("extract")
	if e.URL != "" {
		b.WriteString(" ")
		b.WriteString(e.URL)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required fields [%s]", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Write steps reported in WriteError
const (
	StepBrand   = "brand"
	StepProduct = "product"
	StepSpec    = "spec"
	StepCommit  = "commit"
)

// WriteError is a failed store write for one product
type WriteError struct {
	Slug          string
	Brand         string
	Step          string
	RequiresRerun bool // The product row was touched before the failure and rolled back
	Err           error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("write %s (brand %s) at step %s: %v", e.Slug, e.Brand, e.Step, e.Err)
	if e.RequiresRerun {
		msg += " (partial write rolled back, re-run required)"
	}
	return msg
}

func (e *WriteError) Unwrap() error { return e.Err }

// StageOf classifies an item error for the report
func StageOf(err error) string {
	var fe *FetchError
	var ee *ExtractionError
	var we *WriteError
	switch {
	case errors.As(err, &fe):
		return StageFetch
	case errors.As(err, &ee):
		return StageExtract
	case errors.As(err, &we):
		return StageWrite
	default:
		return ""
	}
}
