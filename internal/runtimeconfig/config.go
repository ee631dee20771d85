package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

var ErrGeneratorOutputDirRequired = errors.New("cms config: generator output directory is required when generator is enabled")
var ErrGeneratedDirInvalid = errors.New("cms config: render generated directory must be a relative path")
var ErrLoggingProviderRequired = errors.New("cms config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("cms config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("cms config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("cms config: logging format is invalid")
var ErrStorageDriverUnknown = errors.New("cms config: storage driver is invalid")
var ErrStorageDialectUnknown = errors.New("cms config: storage dialect is invalid")
var ErrStorageDSNRequired = errors.New("cms config: storage dsn is required for the bun driver")
var ErrCacheTTLInvalid = errors.New("cms config: cache ttl must be zero or positive")
var ErrRenderTimeoutInvalid = errors.New("cms config: render timeout must be zero or positive")
var ErrMarkdownExtensionUnknown = errors.New("cms config: markdown extension is invalid")

// Config aggregates runtime settings for the site CMS.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Markdown  MarkdownConfig  `yaml:"markdown"`
	Render    RenderConfig    `yaml:"render"`
	Generator GeneratorConfig `yaml:"generator"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Features  Features        `yaml:"features"`
}

// Features toggles optional integrations.
type Features struct {
	Logger  bool `yaml:"logger"`
	Metrics bool `yaml:"metrics"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for the article step.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// RenderConfig controls the render engine.
type RenderConfig struct {
	GeneratedDir      string        `yaml:"generated_dir"`
	Autoescape        bool          `yaml:"autoescape"`
	TemplateCache     bool          `yaml:"template_cache"`
	TemplateDir       string        `yaml:"template_dir"`
	PreviewBaseURL    string        `yaml:"preview_base_url"`
	PreviewBaseTarget string        `yaml:"preview_base_target"`
	Timeout           time.Duration `yaml:"timeout"`
}

// GeneratorConfig captures behaviour for full static builds.
type GeneratorConfig struct {
	Enabled         bool   `yaml:"enabled"`
	OutputDir       string `yaml:"output_dir"`
	GenerateSitemap bool   `yaml:"generate_sitemap"`
	SkipEmptyBlocks bool   `yaml:"skip_empty_blocks"`
	CleanBuild      bool   `yaml:"clean_build"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Driver  string `yaml:"driver"`
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
}

// CacheConfig captures repository cache behaviour.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// DefaultConfig returns defaults suitable for local builds.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
		Markdown: MarkdownConfig{},
		Render: RenderConfig{
			GeneratedDir:      "generated",
			TemplateCache:     true,
			PreviewBaseTarget: "_blank",
		},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			GenerateSitemap: true,
		},
		Storage: StorageConfig{
			Driver:  "memory",
			Dialect: "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cms config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("cms config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Generator.Enabled && strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}
	if dir := strings.TrimSpace(cfg.Render.GeneratedDir); dir == "" || strings.HasPrefix(dir, "/") || strings.Contains(dir, "..") {
		return fmt.Errorf("%w: %q", ErrGeneratedDirInvalid, cfg.Render.GeneratedDir)
	}
	if cfg.Render.Timeout < 0 {
		return ErrRenderTimeoutInvalid
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	for _, ext := range cfg.Markdown.Extensions {
		if err := validation.Validate(normalize(ext), validation.Required, validation.In(markdownExtensions...)); err != nil {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}

	driver := normalize(cfg.Storage.Driver)
	if err := validation.Validate(driver, validation.In("", "memory", "bun")); err != nil {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	if driver == "bun" {
		if err := validation.Validate(normalize(cfg.Storage.Dialect), validation.In("", "sqlite", "postgres", "pg")); err != nil {
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if err := validation.Validate(provider, validation.In("gologger", "noop")); err != nil {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if err := validation.Validate(normalize(cfg.Logging.Level), validation.In("", "trace", "debug", "info", "warn", "warning", "error", "fatal")); err != nil {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Logging.Level)
		}
		if err := validation.Validate(normalize(cfg.Logging.Format), validation.In("", "json", "console", "pretty")); err != nil {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, cfg.Logging.Format)
		}
	}
	return nil
}

var markdownExtensions = []any{
	"gfm", "table", "tables", "strikethrough", "linkify", "autolink",
	"tasklist", "definition", "footnote", "typographer",
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
