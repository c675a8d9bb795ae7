package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/pagewatch/internal/errorwrapper"

	"gopkg.in/yaml.v3"
)

const (
	// Fetcher Defaults
	DefaultFetcherUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultFetcherTimeoutSecs     = 30
	DefaultFetcherMaxContentSize  = 5 * 1024 * 1024
	DefaultFetcherMaxRedirects    = 10
	DefaultFetcherInsecureSkipTLS = false

	// Tracker Defaults
	DefaultTrackerMaxConcurrentChecks = 5
	DefaultTrackerPageTimeoutSecs     = 60

	// Report Defaults
	DefaultReportMaxChangesPerReport = 10
	DefaultReportMaxValueLength      = 256
	DefaultReportMaxDiffLines        = 8
	DefaultReportMaxDiffLineLength   = 220

	// Extract Defaults
	DefaultExtractDataScriptID = "__NEXT_DATA__"

	// Storage Defaults
	DefaultStorageSnapshotDir      = "data/snapshots"
	DefaultStorageChangeLogDir     = "data/changes"
	DefaultStorageHistoryDBPath    = "data/history.db"
	DefaultStorageCompressionCodec = "zstd"

	// Sitemap Defaults
	DefaultSitemapMaxDepth    = 3
	DefaultSitemapParallelism = 2

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)

type GlobalConfig struct {
	ExtractConfig      ExtractConfig      `json:"extract_config,omitempty" yaml:"extract_config,omitempty"`
	FetcherConfig      FetcherConfig      `json:"fetcher_config,omitempty" yaml:"fetcher_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	NormalizeConfig    NormalizeConfig    `json:"normalize_config,omitempty" yaml:"normalize_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	Pages              []PageConfig       `json:"pages,omitempty" yaml:"pages,omitempty" validate:"omitempty,dive"`
	ReportConfig       ReportConfig       `json:"report_config,omitempty" yaml:"report_config,omitempty"`
	SitemapConfig      SitemapConfig      `json:"sitemap_config,omitempty" yaml:"sitemap_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	TrackerConfig      TrackerConfig      `json:"tracker_config,omitempty" yaml:"tracker_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ExtractConfig:      NewDefaultExtractConfig(),
		FetcherConfig:      NewDefaultFetcherConfig(),
		LogConfig:          NewDefaultLogConfig(),
		NormalizeConfig:    NewDefaultNormalizeConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		Pages:              []PageConfig{},
		ReportConfig:       NewDefaultReportConfig(),
		SitemapConfig:      NewDefaultSitemapConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		TrackerConfig:      NewDefaultTrackerConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// JSON and YAML formats. YAML is preferred if the extension is .yaml or .yml.
// When no config file is found anywhere, the defaults are returned as-is.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	if !fileExists(filePath) {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file does not exist")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
