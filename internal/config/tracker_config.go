package config

// TrackerConfig defines configuration for the tracking run itself
type TrackerConfig struct {
	MaxConcurrentChecks int `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"omitempty,min=1"`
	PageTimeoutSecs     int `json:"page_timeout_secs,omitempty" yaml:"page_timeout_secs,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultTrackerConfig creates default tracker configuration
func NewDefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxConcurrentChecks: DefaultTrackerMaxConcurrentChecks,
		PageTimeoutSecs:     DefaultTrackerPageTimeoutSecs,
	}
}
