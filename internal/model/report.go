package model

import "time"

// Report is the batch report written after every run
type Report struct {
	Summary      Summary       `json:"summary"`
	ValidItems   []ValidItem   `json:"validItems"`
	InvalidItems []InvalidItem `json:"invalidItems"`
	Errors       []ItemError   `json:"errors"`

	RunID      string    `json:"runId,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Cancelled  bool      `json:"cancelled,omitempty"`
	Skipped    int       `json:"skipped,omitempty"` // Completed in a previous attempt of the same run
}

// Summary holds the batch counters. Total = Valid + Invalid + Errors.
type Summary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Errors  int `json:"errors"`
}

// ValidItem describes a record that passed validation
type ValidItem struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Brand     string    `json:"brand"`
	Source    string    `json:"source"`
	ImageTier ImageTier `json:"imageTier,omitempty"`
	Written   bool      `json:"written"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// InvalidItem describes a record rejected by validation
type InvalidItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Source string `json:"source,omitempty"`
}

// ItemError is a per-item failure
type ItemError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// WriteOutcome is the result of upserting one product
type WriteOutcome struct {
	BrandID        string `json:"brand_id"`
	ProductID      string `json:"product_id"`
	ProductCreated bool   `json:"product_created"`
	SpecCreated    bool   `json:"spec_created"`
}
