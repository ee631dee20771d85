// Package di wires the site CMS runtime from a runtimeconfig.Config.
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/logging/gologger"
	"github.com/goliatone/go-sitecms/internal/markdown"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/publisher"
	"github.com/goliatone/go-sitecms/internal/render"
	"github.com/goliatone/go-sitecms/internal/runtimeconfig"
	"github.com/goliatone/go-sitecms/internal/sitecontext"
	"github.com/goliatone/go-sitecms/internal/templates"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	recorder       metrics.Recorder
	registry       *prom.Registry

	store         documents.Store
	writer        publisher.ArtifactWriter
	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	template interfaces.TemplateRenderer
	markdown interfaces.MarkdownParser

	renderer     *render.Engine
	publisherSvc publisher.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithStore overrides the document store selected by storage.driver.
func WithStore(store documents.Store) Option {
	return func(c *Container) {
		if store != nil {
			c.store = store
		}
	}
}

// WithWriter overrides the artifact writer rooted at generator.output_dir.
func WithWriter(writer publisher.ArtifactWriter) Option {
	return func(c *Container) {
		if writer != nil {
			c.writer = writer
		}
	}
}

// WithRecorder overrides the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(c *Container) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithBunDB backs the document store with an existing bun database. The
// caller keeps ownership of the connection.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used by the bun store.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithTemplate overrides the template renderer.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		if tr != nil {
			c.template = tr
		}
	}
}

// WithMarkdown overrides the markdown parser.
func WithMarkdown(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.markdown = parser
		}
	}
}

// NewContainer validates cfg, applies opts and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureRecorder()
	if err := c.configureStore(context.Background()); err != nil {
		return nil, err
	}
	c.configureRenderer()
	c.configurePublisher()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureRecorder() {
	if c.recorder != nil {
		return
	}
	if !c.Config.Features.Metrics {
		c.recorder = metrics.NoopRecorder{}
		return
	}
	c.registry = prom.NewRegistry()
	c.recorder = metrics.NewPrometheusRecorder(c.registry)
}

func (c *Container) configureStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	logger := logging.StoreLogger(c.loggerProvider)

	if c.bunDB == nil && strings.EqualFold(strings.TrimSpace(c.Config.Storage.Driver), "bun") {
		db, err := openBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.bunDB == nil {
		c.store = documents.NewMemoryStore()
		logger.Debug("store.configured", "driver", "memory")
		return nil
	}

	if err := documents.CreateTables(ctx, c.bunDB); err != nil {
		return fmt.Errorf("di: create tables: %w", err)
	}
	if !c.Config.Cache.Enabled {
		c.store = documents.NewBunStore(c.bunDB)
		logger.Debug("store.configured", "driver", "bun", "cache", false)
		return nil
	}
	if err := c.configureCacheDefaults(); err != nil {
		return err
	}
	c.store = documents.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
	logger.Debug("store.configured", "driver", "bun", "cache", true)
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if c.cacheService != nil && c.keySerializer != nil {
		return nil
	}
	cfg := repocache.DefaultConfig()
	if c.Config.Cache.DefaultTTL > 0 {
		cfg.TTL = c.Config.Cache.DefaultTTL
	}
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		return fmt.Errorf("di: cache service: %w", err)
	}
	c.cacheService = service
	c.keySerializer = repocache.NewDefaultKeySerializer()
	return nil
}

func openBunDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dialect := strings.ToLower(strings.TrimSpace(cfg.Dialect))
	driver := "sqlite3"
	if dialect == "postgres" || dialect == "pg" {
		driver = "pgx"
	}
	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("di: open %s: %w", driver, err)
	}
	db, err := documents.Open(sqlDB, dialect)
	if err != nil {
		return nil, errors.Join(err, sqlDB.Close())
	}
	return db, nil
}

func (c *Container) configureRenderer() {
	if c.template == nil {
		c.template = templates.NewEngine(
			templates.WithAutoescape(c.Config.Render.Autoescape),
			templates.WithCache(c.Config.Render.TemplateCache),
			templates.WithIncludeRoot(afero.NewOsFs(), strings.TrimSpace(c.Config.Render.TemplateDir)),
		)
	}
	if c.markdown == nil {
		c.markdown = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
			SafeMode:   c.Config.Markdown.SafeMode,
		})
	}
	c.renderer = render.New(
		render.WithTemplates(c.template),
		render.WithMarkdown(c.markdown),
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
		render.WithRecorder(c.recorder),
		render.WithGeneratedDir(c.Config.Render.GeneratedDir),
		render.WithPreviewBase(c.Config.Render.PreviewBaseURL, c.Config.Render.PreviewBaseTarget),
		render.WithTimeout(c.Config.Render.Timeout),
	)
}

func (c *Container) configurePublisher() {
	if !c.Config.Generator.Enabled {
		c.publisherSvc = publisher.NewDisabledService()
		return
	}
	if c.writer == nil {
		c.writer = publisher.NewOSWriter(c.Config.Generator.OutputDir)
	}
	c.publisherSvc = publisher.NewService(publisher.Config{
		GenerateSitemap: c.Config.Generator.GenerateSitemap,
		SkipEmptyBlocks: c.Config.Generator.SkipEmptyBlocks,
		CleanBuild:      c.Config.Generator.CleanBuild,
	}, publisher.Dependencies{
		Store:    c.store,
		Renderer: c.renderer,
		Writer:   c.writer,
		Builder:  sitecontext.NewBuilder(),
		Logger:   logging.PublishLogger(c.loggerProvider),
		Recorder: c.recorder,
	})
}

// LoggerProvider returns the configured provider; nil means no-op logging.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Store returns the document store.
func (c *Container) Store() documents.Store {
	return c.store
}

// Renderer returns the render engine.
func (c *Container) Renderer() *render.Engine {
	return c.renderer
}

// PublisherService returns the publisher, disabled unless generator.enabled is set.
func (c *Container) PublisherService() publisher.Service {
	return c.publisherSvc
}

// Recorder returns the metrics recorder.
func (c *Container) Recorder() metrics.Recorder {
	return c.recorder
}

// MetricsRegistry returns the Prometheus registry created for features.metrics.
// It is nil when metrics are disabled or a recorder was injected.
func (c *Container) MetricsRegistry() *prom.Registry {
	return c.registry
}

// Close releases the database the container opened itself.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	return c.bunDB.Close()
}
