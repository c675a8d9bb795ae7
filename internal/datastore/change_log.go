package datastore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/urlhandler"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ChangeLogStore archives every reported change entry as one Parquet
// record, one file per page. Unlike snapshots, the change log is
// append-only history.
type ChangeLogStore struct {
	baseDir      string
	codec        parquet.WriterOption
	logger       zerolog.Logger
	mutexManager *PageMutexManager
}

// NewChangeLogStore creates the change log directory and returns a store
// using the configured compression codec.
func NewChangeLogStore(cfg config.StorageConfig, logger zerolog.Logger) (*ChangeLogStore, error) {
	if cfg.ChangeLogDir == "" {
		return nil, errorwrapper.NewValidationError("change_log_dir", cfg.ChangeLogDir, "change log directory cannot be empty")
	}

	if err := os.MkdirAll(cfg.ChangeLogDir, 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create change log directory: "+cfg.ChangeLogDir)
	}

	componentLogger := logger.With().Str("component", "ChangeLogStore").Logger()
	return &ChangeLogStore{
		baseDir:      cfg.ChangeLogDir,
		codec:        compressionOption(cfg.CompressionCodec, componentLogger),
		logger:       componentLogger,
		mutexManager: NewPageMutexManager(),
	}, nil
}

// compressionOption maps the configured codec name to a writer option.
func compressionOption(codec string, logger zerolog.Logger) parquet.WriterOption {
	switch strings.ToLower(codec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		logger.Warn().Str("codec", codec).Msg("Unsupported compression codec, defaulting to zstd")
		return parquet.Compression(&parquet.Zstd)
	}
}

// changeLogFilePath returns the Parquet file backing a page's change log.
func (cls *ChangeLogStore) changeLogFilePath(pageID string) string {
	return filepath.Join(cls.baseDir, urlhandler.SanitizeFilename(pageID)+".parquet")
}

// AppendChanges archives the changes reported by one check. A check that
// found nothing appends nothing.
func (cls *ChangeLogStore) AppendChanges(pageID, pageURL string, capturedAt time.Time, changes models.ChangeSet) error {
	records := models.NewChangeRecords(pageID, pageURL, capturedAt, changes)
	if len(records) == 0 {
		return nil
	}

	mutex := cls.mutexManager.GetMutex(pageID)
	mutex.Lock()
	defer mutex.Unlock()

	path := cls.changeLogFilePath(pageID)

	// Parquet files cannot be appended in place without corrupting the
	// footer, so the log is rewritten with the new records at the end.
	existing, err := readChangeRecords(path)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to load existing change log: "+path)
	}
	all := append(existing, records...)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to open change log for writing: "+path)
	}

	writer := parquet.NewGenericWriter[models.ChangeRecord](file, cls.codec)
	if _, err := writer.Write(all); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return errorwrapper.WrapError(err, "failed to write change records: "+path)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return errorwrapper.WrapError(err, "failed to finalize change log: "+path)
	}
	if err := file.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to close change log: "+path)
	}

	cls.logger.Debug().
		Str("page_id", pageID).
		Int("appended", len(records)).
		Int("total_records", len(all)).
		Msg("Archived change records")
	return nil
}

// GetRecordsForPage returns a page's archived changes, newest first,
// capped at limit when limit is positive.
func (cls *ChangeLogStore) GetRecordsForPage(pageID string, limit int) ([]models.ChangeRecord, error) {
	mutex := cls.mutexManager.GetMutex(pageID)
	mutex.Lock()
	defer mutex.Unlock()

	records, err := readChangeRecords(cls.changeLogFilePath(pageID))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CapturedAt > records[j].CapturedAt
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// readChangeRecords reads every record from a change log file. A missing
// or empty file reads as an empty log.
func readChangeRecords(path string) ([]models.ChangeRecord, error) {
	osFile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ChangeRecord{}, nil
		}
		return nil, errorwrapper.WrapError(err, "failed to open change log: "+path)
	}
	defer func() {
		_ = osFile.Close()
	}()

	stat, err := osFile.Stat()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to stat change log: "+path)
	}
	if stat.Size() == 0 {
		return []models.ChangeRecord{}, nil
	}

	pqFile, err := parquet.OpenFile(osFile, stat.Size())
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse change log: "+path)
	}

	reader := parquet.NewReader(pqFile)
	defer reader.Close()

	var records []models.ChangeRecord
	for {
		var record models.ChangeRecord
		if err := reader.Read(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errorwrapper.WrapError(err, "failed to read change record: "+path)
		}
		records = append(records, record)
	}
	return records, nil
}
