// Package datastore persists tracker state: the current snapshot of each
// page, the append-only change log, and the run history database.
package datastore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

// SnapshotStore persists exactly one snapshot per page: the normalized
// payload from its last successful check. Get reports a missing snapshot
// as models.ErrSnapshotNotFound so callers can treat the first check of a
// page as baseline establishment rather than a failure.
type SnapshotStore interface {
	Get(pageID string) (*models.Snapshot, error)
	Put(pageID string, snapshot *models.Snapshot) error
}

// snapshotEnvelope is the on-disk JSON form of a snapshot. The payload is
// embedded as raw canonical JSON so storing and loading never re-orders
// what the normalizer produced.
type snapshotEnvelope struct {
	CapturedAt   time.Time       `json:"captured_at"`
	ETag         string          `json:"etag,omitempty"`
	LastModified string          `json:"last_modified,omitempty"`
	Data         json.RawMessage `json:"data"`
}

// FileSnapshotStore keeps one JSON file per page under a base directory.
type FileSnapshotStore struct {
	baseDir      string
	logger       zerolog.Logger
	mutexManager *PageMutexManager
}

// NewFileSnapshotStore creates the snapshot directory and returns a store
// rooted there.
func NewFileSnapshotStore(cfg config.StorageConfig, logger zerolog.Logger) (*FileSnapshotStore, error) {
	if cfg.SnapshotDir == "" {
		return nil, errorwrapper.NewValidationError("snapshot_dir", cfg.SnapshotDir, "snapshot directory cannot be empty")
	}

	if err := os.MkdirAll(cfg.SnapshotDir, 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create snapshot directory: "+cfg.SnapshotDir)
	}

	return &FileSnapshotStore{
		baseDir:      cfg.SnapshotDir,
		logger:       logger.With().Str("component", "FileSnapshotStore").Logger(),
		mutexManager: NewPageMutexManager(),
	}, nil
}

// snapshotFilePath returns the file backing a page's snapshot.
func (fss *FileSnapshotStore) snapshotFilePath(pageID string) string {
	return filepath.Join(fss.baseDir, urlhandler.SanitizeFilename(pageID)+".json")
}

// Get loads the stored snapshot for a page.
func (fss *FileSnapshotStore) Get(pageID string) (*models.Snapshot, error) {
	mutex := fss.mutexManager.GetMutex(pageID)
	mutex.Lock()
	defer mutex.Unlock()

	path := fss.snapshotFilePath(pageID)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrSnapshotNotFound
		}
		return nil, NewReadError(pageID, err)
	}

	var envelope snapshotEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, NewReadError(pageID, errorwrapper.WrapError(err, "malformed snapshot file: "+path))
	}

	data, err := models.FromJSON(envelope.Data)
	if err != nil {
		return nil, NewReadError(pageID, errorwrapper.WrapError(err, "malformed snapshot payload: "+path))
	}

	return &models.Snapshot{
		PageID:       pageID,
		CapturedAt:   envelope.CapturedAt,
		ETag:         envelope.ETag,
		LastModified: envelope.LastModified,
		Data:         data,
	}, nil
}

// Put overwrites the stored snapshot for a page. The write goes through a
// temp file in the same directory followed by a rename, so a crash
// mid-write never leaves a truncated snapshot behind.
func (fss *FileSnapshotStore) Put(pageID string, snapshot *models.Snapshot) error {
	mutex := fss.mutexManager.GetMutex(pageID)
	mutex.Lock()
	defer mutex.Unlock()

	envelope := snapshotEnvelope{
		CapturedAt:   snapshot.CapturedAt,
		ETag:         snapshot.ETag,
		LastModified: snapshot.LastModified,
		Data:         json.RawMessage(models.EncodeJSON(snapshot.Data)),
	}

	encoded, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return NewWriteError(pageID, err)
	}

	path := fss.snapshotFilePath(pageID)
	tmpFile, err := os.CreateTemp(fss.baseDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return NewWriteError(pageID, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(encoded); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return NewWriteError(pageID, err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return NewWriteError(pageID, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return NewWriteError(pageID, err)
	}

	fss.logger.Debug().
		Str("page_id", pageID).
		Str("path", path).
		Msg("Stored snapshot")
	return nil
}
