package types

import "errors"

// Validation errors for search results and options
var (
	ErrMissingEntry     = errors.New("search result has no entry")
	ErrScoreOutOfRange  = errors.New("score must be within [0,100]")
	ErrInvalidMatchType = errors.New("invalid match type")
	ErrNegativeLimit    = errors.New("limit must not be negative")
	ErrInvalidThreshold = errors.New("threshold must be within [0,100]")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidCategory  = errors.New("invalid category filter")
)
