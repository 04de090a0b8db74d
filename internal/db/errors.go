package db

import "errors"

// Sentinel errors for store operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	ErrKeyNotFound   = errors.New("db: key not found")
)

// Op constants name the remote operation for error context.
const (
	OpGetSettings    = "get-settings"
	OpCreateIndex    = "create-index"
	OpDeleteIndex    = "delete-index"
	OpAddDocuments   = "add-documents"
	OpDeleteDocument = "delete-document"
	OpSearch         = "search"
	OpHealth         = "health"

	OpHSet    = "HSET"
	OpHGetAll = "HGETALL"
	OpDel     = "DEL"
	OpScan    = "SCAN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
