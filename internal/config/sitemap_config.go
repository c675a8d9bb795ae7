package config

// SitemapConfig defines configuration for sitemap collection
type SitemapConfig struct {
	MaxDepth    int `json:"max_depth,omitempty" yaml:"max_depth,omitempty" validate:"omitempty,min=1"`
	Parallelism int `json:"parallelism,omitempty" yaml:"parallelism,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultSitemapConfig creates default sitemap configuration
func NewDefaultSitemapConfig() SitemapConfig {
	return SitemapConfig{
		MaxDepth:    DefaultSitemapMaxDepth,
		Parallelism: DefaultSitemapParallelism,
	}
}
