package types

import (
	"errors"
	"fmt"
)

// Caller-fault input errors. These are never retried.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrEmptyInput         = errors.New("no chunks provided")
	ErrEmptyQuery         = errors.New("empty query")
	ErrCollectionNotFound = errors.New("collection not found")
)

// ParseError reports a malformed PDF. Fatal for the document being processed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse PDF %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServiceError reports a failure of an external model provider (embedding or
// chat). Transient; retry policy is the caller's concern.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// StorageError reports a write failure against the persistent vector store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
