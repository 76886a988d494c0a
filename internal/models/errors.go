package models

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrInvalidRule      = errors.New("invalid assignment rule")
	ErrInvalidTerritory = errors.New("invalid territory")
	// ErrCapacityExceeded and ErrMemberUnavailable are returned by a store
	// when the capacity re-check inside a commit fails.
	ErrCapacityExceeded  = errors.New("member capacity exceeded")
	ErrMemberUnavailable = errors.New("member unavailable")
)
