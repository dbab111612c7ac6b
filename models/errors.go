package models

import "fmt"

// StorageError wraps a failed document-store operation with the collection
// and operation it came from. It is never retried here; idempotency of a
// retry is the caller's call.
type StorageError struct {
	Collection string
	Op         string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Collection, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
