package config

// NormalizeConfig defines configuration for payload normalization.
// IgnoreKeys are dropped from every mapping at any depth; they default to
// framework bookkeeping fields that churn on every build. TimestampKeys
// have their string values truncated to the date part so sub-day precision
// does not register as a change.
type NormalizeConfig struct {
	IgnoreKeys    []string `json:"ignore_keys,omitempty" yaml:"ignore_keys,omitempty"`
	TimestampKeys []string `json:"timestamp_keys,omitempty" yaml:"timestamp_keys,omitempty"`
}

// NewDefaultNormalizeConfig creates default normalize configuration
func NewDefaultNormalizeConfig() NormalizeConfig {
	return NormalizeConfig{
		IgnoreKeys: []string{
			"__N_SSP",
			"__N_SSG",
			"isFallback",
			"gssp",
			"dynamicIds",
			"scriptLoader",
			"locale",
			"locales",
			"defaultLocale",
			"isPreview",
			"notFoundSrcPage",
		},
		TimestampKeys: []string{
			"createdAt",
			"updatedAt",
			"lastModified",
			"timestamp",
			"_updatedAt",
			"_createdAt",
		},
	}
}
