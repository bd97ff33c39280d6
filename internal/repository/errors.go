package repository

import "errors"

var (
	// ErrNotFound is returned when a record is absent from the requested domain.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (admin email within a domain) is taken.
	ErrDuplicate = errors.New("duplicate record")
)
