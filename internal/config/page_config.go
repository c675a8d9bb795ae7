package config

// PageConfig describes one page to track. Extraction and ignore paths are
// textual access expressions ("props.pageProps.title", "items[*].updatedAt")
// that are parsed once during validation; wildcards are only allowed in
// ignore paths.
type PageConfig struct {
	ID              string   `json:"id" yaml:"id" validate:"required"`
	URL             string   `json:"url" yaml:"url" validate:"required,pageurl"`
	Mode            string   `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,watchmode"`
	ExtractionPaths []string `json:"extraction_paths,omitempty" yaml:"extraction_paths,omitempty" validate:"omitempty,dive,extractpath"`
	IgnorePaths     []string `json:"ignore_paths,omitempty" yaml:"ignore_paths,omitempty" validate:"omitempty,dive,ignorepath"`
	IgnoreKeys      []string `json:"ignore_keys,omitempty" yaml:"ignore_keys,omitempty" validate:"omitempty,dive,required"`
}
