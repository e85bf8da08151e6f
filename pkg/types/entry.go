package types

import (
	"errors"
	"time"
)

// Category classifies a knowledge-base entry by mainframe subsystem
type Category string

const (
	CategoryCOBOL      Category = "COBOL"
	CategoryVSAM       Category = "VSAM"
	CategoryJCL        Category = "JCL"
	CategoryDB2        Category = "DB2"
	CategoryCICS       Category = "CICS"
	CategoryBatch      Category = "Batch"
	CategoryFunctional Category = "Functional"
	CategoryOther      Category = "Other"
)

// Categories lists all valid categories in declaration order
var Categories = []Category{
	CategoryCOBOL,
	CategoryVSAM,
	CategoryJCL,
	CategoryDB2,
	CategoryCICS,
	CategoryBatch,
	CategoryFunctional,
	CategoryOther,
}

// Valid reports whether the category is a member of the closed enumeration
func (c Category) Valid() bool {
	switch c {
	case CategoryCOBOL, CategoryVSAM, CategoryJCL, CategoryDB2,
		CategoryCICS, CategoryBatch, CategoryFunctional, CategoryOther:
		return true
	default:
		return false
	}
}

// KBEntry represents a single knowledge-base record.
// The engine treats entries as read-only: it never mutates a snapshot it is
// handed, and results hold references into that snapshot rather than copies.
type KBEntry struct {
	// Identification
	ID    string
	Title string

	// Content
	Problem  string
	Solution string

	// Classification
	Category Category
	Tags     []string

	// Usage statistics maintained by the persistence layer.
	// success + failure <= usage is not enforced here; counters are
	// taken as given.
	UsageCount   int
	SuccessCount int
	FailureCount int

	// Timestamps (informational; recency sort uses UpdatedAt)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SuccessRate returns success/usage in [0,1], or 0 when the entry is unused
func (e *KBEntry) SuccessRate() float64 {
	if e.UsageCount <= 0 {
		return 0
	}
	return float64(e.SuccessCount) / float64(e.UsageCount)
}

// Validate performs basic structural validation for the persistence layer.
// The search engine itself tolerates malformed entries (missing text fields
// are treated as empty strings) and does not call this.
func (e *KBEntry) Validate() error {
	if e.ID == "" {
		return errors.New("entry ID is required")
	}
	if e.Title == "" {
		return errors.New("entry title is required")
	}
	if !e.Category.Valid() {
		return errors.New("invalid category: " + string(e.Category))
	}
	if e.UsageCount < 0 || e.SuccessCount < 0 || e.FailureCount < 0 {
		return errors.New("usage counters must be non-negative")
	}
	return nil
}
