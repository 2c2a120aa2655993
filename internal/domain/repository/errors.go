package repository

import "errors"

var (
	// ErrNotFound is returned by updates that matched no active record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateIdentifier is returned when a write would give two active
	// clients of one business the same normalized email or phone.
	ErrDuplicateIdentifier = errors.New("identifier already belongs to another active client")
)
