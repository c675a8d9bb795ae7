package config

// FetcherConfig defines configuration for HTTP page fetching
type FetcherConfig struct {
	HTTPTimeoutSecs    int    `json:"http_timeout_secs,omitempty" yaml:"http_timeout_secs,omitempty" validate:"omitempty,min=1"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	MaxContentSize     int    `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=1024"`
	MaxRedirects       int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultFetcherConfig creates default fetcher configuration
func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		HTTPTimeoutSecs:    DefaultFetcherTimeoutSecs,
		InsecureSkipVerify: DefaultFetcherInsecureSkipTLS,
		MaxContentSize:     DefaultFetcherMaxContentSize,
		MaxRedirects:       DefaultFetcherMaxRedirects,
		UserAgent:          DefaultFetcherUserAgent,
	}
}
