package config

// StorageConfig defines configuration for snapshot, change log and run
// history storage
type StorageConfig struct {
	ChangeLogDir     string `json:"change_log_dir,omitempty" yaml:"change_log_dir,omitempty"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=gzip snappy zstd none"`
	EnableChangeLog  bool   `json:"enable_change_log" yaml:"enable_change_log"`
	EnableRunHistory bool   `json:"enable_run_history" yaml:"enable_run_history"`
	HistoryDBPath    string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
	SnapshotDir      string `json:"snapshot_dir,omitempty" yaml:"snapshot_dir,omitempty" validate:"required"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		ChangeLogDir:     DefaultStorageChangeLogDir,
		CompressionCodec: DefaultStorageCompressionCodec,
		EnableChangeLog:  true,
		EnableRunHistory: true,
		HistoryDBPath:    DefaultStorageHistoryDBPath,
		SnapshotDir:      DefaultStorageSnapshotDir,
	}
}
