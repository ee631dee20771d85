package interfaces

// MarkdownParser converts raw Markdown into HTML. Implementations must be
// safe for concurrent use so one instance can serve every render.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown conversion. Names stay readable for YAML
// configuration and CLI flags.
type ParseOptions struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode"`
}

// FrontMatter carries the metadata block stripped from the top of a page's
// Markdown source. Values are exposed to templates under `thisPage.meta`.
type FrontMatter map[string]any
