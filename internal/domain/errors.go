package domain

import "errors"

var (
	// ErrTypeNotRegistered signals an operation on a content type that was
	// never registered for search.
	ErrTypeNotRegistered = errors.New("content type not registered for search")
	// ErrRecordNotFound signals a missing record in the canonical store.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNotImplemented signals an explicitly unsupported operation.
	ErrNotImplemented = errors.New("not implemented")
	// ErrAutocompleteNotSupported signals that the backend was built without
	// autocomplete support.
	ErrAutocompleteNotSupported = errors.New("autocomplete not supported by this backend configuration")
	// ErrInvalidSchema signals an invalid content type or field definition.
	ErrInvalidSchema = errors.New("invalid schema")
)
