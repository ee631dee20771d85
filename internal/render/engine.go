// Package render compiles page and site sources into preview documents and
// publishable artifacts.
package render

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/markdown"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/paths"
	"github.com/goliatone/go-sitecms/internal/templates"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Engine runs the render pipeline. Construct one per pipeline owner; it is
// safe for concurrent use.
type Engine struct {
	templates         interfaces.TemplateRenderer
	markdown          interfaces.MarkdownParser
	logger            interfaces.Logger
	recorder          metrics.Recorder
	flight            *coalescer
	generatedDir      string
	previewBaseURL    string
	previewBaseTarget string
	timeout           time.Duration
}

// Option customises an Engine.
type Option func(*Engine)

// WithTemplates overrides the template renderer. Defaults to a pongo2 engine
// with caching enabled and autoescape off.
func WithTemplates(renderer interfaces.TemplateRenderer) Option {
	return func(e *Engine) {
		if renderer != nil {
			e.templates = renderer
		}
	}
}

// WithMarkdown overrides the markdown parser. Defaults to goldmark.
func WithMarkdown(parser interfaces.MarkdownParser) Option {
	return func(e *Engine) {
		if parser != nil {
			e.markdown = parser
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(e *Engine) {
		e.recorder = metrics.OrNoop(recorder)
	}
}

// WithGeneratedDir overrides the folder holding emitted stylesheets.
func WithGeneratedDir(dir string) Option {
	return func(e *Engine) {
		e.generatedDir = dir
	}
}

// WithPreviewBase sets the base href (falls back to the site url) and the
// base target used by preview documents. An empty target omits the tag.
func WithPreviewBase(url, target string) Option {
	return func(e *Engine) {
		e.previewBaseURL = strings.TrimRight(strings.TrimSpace(url), "/")
		e.previewBaseTarget = strings.TrimSpace(target)
	}
}

// WithTimeout bounds each render call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout < 0 {
			timeout = 0
		}
		e.timeout = timeout
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		templates:         templates.NewEngine(),
		markdown:          markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		logger:            logging.NoOp(),
		recorder:          metrics.NoopRecorder{},
		generatedDir:      paths.GeneratedDir,
		previewBaseTarget: "_blank",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.flight = newCoalescer(e.recorder, e.timeout)
	return e
}

// Preview renders an inline preview document. It never fails: any error is
// returned as a minimal document showing the message in red.
func (e *Engine) Preview(ctx context.Context, req PreviewRequest) string {
	ctx = ensureContext(ctx)
	start := time.Now()
	logger := logging.WithPageContext(e.logger, req.Page.ID, req.Page.Route, string(metrics.KindPreview), "")

	out, err := e.preview(ctx, req)
	e.recorder.ObserveRender(metrics.KindPreview, time.Since(start), err == nil)
	if err != nil {
		logger.Warn("render.preview.failed", "error", err)
		return errorDocument(err)
	}
	logger.Debug("render.preview.success", "duration", time.Since(start))
	return out
}

func (e *Engine) preview(ctx context.Context, req PreviewRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", wrapRequestError(err)
	}
	key, err := requestKey(req)
	if err != nil {
		return "", stageError("request key", err)
	}
	value, err := e.flight.do(ctx, metrics.KindPreview, key, func(ctx context.Context) (any, error) {
		return e.runPreview(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// PublishPage renders the page HTML and page stylesheet artifacts. Errors
// are returned categorised with go-errors.
func (e *Engine) PublishPage(ctx context.Context, req PublishRequest) (PageArtifacts, error) {
	ctx = ensureContext(ctx)
	start := time.Now()
	logger := logging.WithPageContext(e.logger, req.Page.ID, req.Page.Route, string(metrics.KindPublishPage), "")

	out, err := e.publishPage(ctx, req)
	e.recorder.ObserveRender(metrics.KindPublishPage, time.Since(start), err == nil)
	if err != nil {
		logger.Error("render.publish_page.failed", "error", err)
		return PageArtifacts{}, err
	}
	logger.Debug("render.publish_page.success", "path", out.HTML.Path, "duration", time.Since(start))
	return out, nil
}

func (e *Engine) publishPage(ctx context.Context, req PublishRequest) (PageArtifacts, error) {
	if err := req.ValidateForPublish(); err != nil {
		return PageArtifacts{}, wrapRequestError(err)
	}
	key, err := requestKey(req)
	if err != nil {
		return PageArtifacts{}, wrapRenderError(stageError("request key", err))
	}
	value, err := e.flight.do(ctx, metrics.KindPublishPage, key, func(ctx context.Context) (any, error) {
		return e.runPublishPage(ctx, req)
	})
	if err != nil {
		return PageArtifacts{}, wrapRenderError(err)
	}
	return value.(PageArtifacts), nil
}

// PublishSite renders the site stylesheet, the site scripts and the sitemap.
func (e *Engine) PublishSite(ctx context.Context, req SiteRequest) (SiteArtifacts, error) {
	ctx = ensureContext(ctx)
	start := time.Now()
	logger := logging.WithFields(e.logger, map[string]any{"render_kind": string(metrics.KindPublishSite), "pages": len(req.Site.Pages)})

	out, err := e.publishSite(ctx, req)
	e.recorder.ObserveRender(metrics.KindPublishSite, time.Since(start), err == nil)
	if err != nil {
		logger.Error("render.publish_site.failed", "error", err)
		return SiteArtifacts{}, err
	}
	logger.Debug("render.publish_site.success", "duration", time.Since(start))
	return out, nil
}

func (e *Engine) publishSite(ctx context.Context, req SiteRequest) (SiteArtifacts, error) {
	if err := req.Validate(); err != nil {
		return SiteArtifacts{}, wrapRequestError(err)
	}
	key, err := requestKey(req)
	if err != nil {
		return SiteArtifacts{}, wrapRenderError(stageError("request key", err))
	}
	value, err := e.flight.do(ctx, metrics.KindPublishSite, key, func(ctx context.Context) (any, error) {
		return e.runPublishSite(ctx, req)
	})
	if err != nil {
		return SiteArtifacts{}, wrapRenderError(err)
	}
	return value.(SiteArtifacts), nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// SiteStylesHref is the URL path pages use to link the site stylesheet.
func (e *Engine) SiteStylesHref() string {
	return paths.Href(paths.SiteStylesPathIn(e.generatedDir))
}

