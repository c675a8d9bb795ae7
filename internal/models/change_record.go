package models

import (
	"time"
)

// ChangeRecord is the flattened, storage-friendly form of one ChangeEntry
// as archived in the per-page change log. Values are stored as their
// canonical JSON text.
type ChangeRecord struct {
	PageID     string `parquet:"page_id,zstd"`
	PageURL    string `parquet:"page_url,zstd"`
	CapturedAt int64  `parquet:"captured_at,zstd"` // Unix milliseconds
	Path       string `parquet:"path,zstd"`
	Kind       string `parquet:"kind,zstd"`
	OldValue   string `parquet:"old_value,zstd,optional"`
	NewValue   string `parquet:"new_value,zstd,optional"`
}

// NewChangeRecords flattens a ChangeSet into archive records, preserving
// entry order.
func NewChangeRecords(pageID, pageURL string, capturedAt time.Time, changes ChangeSet) []ChangeRecord {
	records := make([]ChangeRecord, 0, len(changes))
	for _, entry := range changes {
		record := ChangeRecord{
			PageID:     pageID,
			PageURL:    pageURL,
			CapturedAt: capturedAt.UnixMilli(),
			Path:       entry.Path.String(),
			Kind:       string(entry.Kind),
		}
		if entry.OldValue != nil {
			record.OldValue = string(EncodeJSON(entry.OldValue))
		}
		if entry.NewValue != nil {
			record.NewValue = string(EncodeJSON(entry.NewValue))
		}
		records = append(records, record)
	}
	return records
}
