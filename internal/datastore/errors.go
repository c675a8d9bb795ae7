package datastore

import "fmt"

// StoreOp identifies which side of the snapshot store an operation
// failed on.
type StoreOp string

const (
	StoreOpRead  StoreOp = "read"
	StoreOpWrite StoreOp = "write"
)

// StoreError reports a snapshot store failure for one page. A missing
// snapshot is not a StoreError; stores signal that with
// models.ErrSnapshotNotFound instead.
type StoreError struct {
	Op      StoreOp
	PageID  string
	Wrapped error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return fmt.Sprintf("snapshot %s failed for page '%s': %v", e.Op, e.PageID, e.Wrapped)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Wrapped
}

// NewReadError wraps err as a snapshot read failure for a page.
func NewReadError(pageID string, err error) *StoreError {
	return &StoreError{Op: StoreOpRead, PageID: pageID, Wrapped: err}
}

// NewWriteError wraps err as a snapshot write failure for a page.
func NewWriteError(pageID string, err error) *StoreError {
	return &StoreError{Op: StoreOpWrite, PageID: pageID, Wrapped: err}
}
