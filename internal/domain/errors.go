package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collision.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuantity is returned when a cart quantity is zero or negative.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrPersistence wraps failures of the underlying cart storage.
	ErrPersistence = errors.New("cart storage failure")
)
