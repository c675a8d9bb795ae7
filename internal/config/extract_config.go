package config

// ExtractConfig defines configuration for payload extraction.
// DataScriptID is the element id of the JSON script tag carrying the page
// data. BootstrapMarkers are assignment prefixes searched in inline
// scripts when no such tag exists, e.g. "window.__INITIAL_STATE__".
type ExtractConfig struct {
	DataScriptID     string   `json:"data_script_id,omitempty" yaml:"data_script_id,omitempty"`
	BootstrapMarkers []string `json:"bootstrap_markers,omitempty" yaml:"bootstrap_markers,omitempty"`
}

// NewDefaultExtractConfig creates default extract configuration
func NewDefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		DataScriptID: DefaultExtractDataScriptID,
		BootstrapMarkers: []string{
			"window.__INITIAL_STATE__",
			"window.__PRELOADED_STATE__",
		},
	}
}
