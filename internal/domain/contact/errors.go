package contact

import "errors"

var (
	// ErrContactNotFound indicates the identity doesn't exist in the pool.
	ErrContactNotFound = errors.New("contact not found")
	// ErrInvalidChannel indicates an unrecognized channel name.
	ErrInvalidChannel = errors.New("invalid channel")
	// ErrEmptyLabel indicates a blank label was supplied.
	ErrEmptyLabel = errors.New("label must not be empty")
	// ErrNoValues indicates an ingestion call with no raw values.
	ErrNoValues = errors.New("no values supplied")
)
