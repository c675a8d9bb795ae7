package models

import (
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned by snapshot stores when no snapshot has
// been persisted for a page yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the persisted normalized state of a tracked page from its
// most recent successful check. ETag and LastModified carry the HTTP
// validators observed at capture time and feed the next conditional fetch;
// they are empty for pages that were not fetched over HTTP.
type Snapshot struct {
	PageID       string
	CapturedAt   time.Time
	ETag         string
	LastModified string
	Data         Value
}
