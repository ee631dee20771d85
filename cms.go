// Package cms is the entry point of the site CMS: it reconciles stored
// content against block schemas, renders previews and publishes static sites.
package cms

import (
	"github.com/goliatone/go-sitecms/internal/contentdata"
	"github.com/goliatone/go-sitecms/internal/di"
	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/publisher"
	"github.com/goliatone/go-sitecms/internal/render"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Content model.
type (
	Schema      = contentdata.Config
	BlockClass  = contentdata.BlockClass
	FieldClass  = contentdata.FieldClass
	FieldType   = contentdata.FieldType
	ContentData = contentdata.ContentData
	Block       = contentdata.Block
	Field       = contentdata.Field
	FieldValue  = contentdata.FieldValue
)

// Documents.
type (
	Site          = documents.Site
	Template      = documents.Template
	Page          = documents.Page
	Store         = documents.Store
	NotFoundError = documents.NotFoundError
)

// Rendering and publishing.
type (
	Renderer         = *render.Engine
	PreviewRequest   = render.PreviewRequest
	PublishRequest   = render.PublishRequest
	SiteRequest      = render.SiteRequest
	PageArtifacts    = render.PageArtifacts
	SiteArtifacts    = render.SiteArtifacts
	PublisherService = publisher.Service
	BuildOptions     = publisher.BuildOptions
	BuildResult      = publisher.BuildResult
	ArtifactWriter   = publisher.ArtifactWriter
	MetricsRecorder  = metrics.Recorder
)

// Option customises the runtime built by New.
type Option = di.Option

// WithLoggerProvider routes module logs through provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithStore replaces the store selected by the storage config.
func WithStore(store Store) Option {
	return di.WithStore(store)
}

// WithWriter replaces the filesystem writer rooted at the generator output dir.
func WithWriter(writer ArtifactWriter) Option {
	return di.WithWriter(writer)
}

// WithRecorder replaces the metrics recorder.
func WithRecorder(recorder MetricsRecorder) Option {
	return di.WithRecorder(recorder)
}

// Module represents the top level CMS runtime façade.
type Module struct {
	container *di.Container
	logger    interfaces.Logger
}

// New constructs a CMS module using the provided configuration and options.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{
		container: container,
		logger:    logging.ReconcileLogger(container.LoggerProvider()),
	}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Reconcile aligns content with schema: blocks the schema no longer declares
// are dropped, missing fields get defaults, and order follows content.
func (m *Module) Reconcile(schema *Schema, content ContentData) ContentData {
	out := contentdata.Reconcile(schema, content)
	if dropped := len(content) - len(out); dropped > 0 && m != nil && m.logger != nil {
		m.logger.Debug("reconcile.blocks_dropped", "count", dropped)
	}
	return out
}

// ParseSchema decodes a block schema from JSON.
func ParseSchema(raw []byte) (*Schema, error) {
	return contentdata.ParseConfig(raw)
}

// ParseContent decodes stored content from JSON.
func ParseContent(raw []byte) (ContentData, error) {
	return contentdata.ParseContentData(raw)
}

// IsEmptyBlock reports whether block holds no user-entered value.
func IsEmptyBlock(block Block) bool {
	return contentdata.IsEmptyBlock(block)
}

// WithoutEmptyBlocks returns a copy of content without blocks IsEmptyBlock
// reports as empty.
func WithoutEmptyBlocks(content ContentData) ContentData {
	return contentdata.WithoutEmptyBlocks(content)
}

// Store returns the configured document store.
func (m *Module) Store() Store {
	return m.container.Store()
}

// Renderer returns the render engine.
func (m *Module) Renderer() Renderer {
	return m.container.Renderer()
}

// Publisher returns the publisher service. It is disabled unless
// generator.enabled is set.
func (m *Module) Publisher() PublisherService {
	return m.container.PublisherService()
}

// Close releases resources the module opened itself.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.container.Close()
}
