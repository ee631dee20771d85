// Package publisher turns the documents of a store into a static site: it
// reconciles stored content, builds template contexts, renders through the
// render engine and writes the artifacts.
package publisher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sitecms/internal/contentdata"
	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/render"
	"github.com/goliatone/go-sitecms/internal/sitecontext"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the publisher feature is disabled.
	ErrServiceDisabled = errors.New("publisher: service disabled")
	// ErrStoreRequired is returned when no document store is configured.
	ErrStoreRequired = errors.New("publisher: document store is required")
	// ErrRendererRequired is returned when no renderer is configured.
	ErrRendererRequired = errors.New("publisher: renderer is required")
	errTemplateRequired = errors.New("publisher: template is required for rendering")
)

// Service describes the publisher contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildPage(ctx context.Context, pageID uuid.UUID) error
	Preview(ctx context.Context, pageID uuid.UUID) (string, error)
	Clean(ctx context.Context) error
}

// Renderer is the subset of the render engine the publisher drives.
type Renderer interface {
	Preview(ctx context.Context, req render.PreviewRequest) string
	PublishPage(ctx context.Context, req render.PublishRequest) (render.PageArtifacts, error)
	PublishSite(ctx context.Context, req render.SiteRequest) (render.SiteArtifacts, error)
}

// Config captures runtime behaviour toggles for the publisher.
type Config struct {
	GenerateSitemap bool
	// SkipEmptyBlocks leaves blocks without any value out of template contexts.
	SkipEmptyBlocks bool
	CleanBuild      bool
	Workers         int
}

// BuildOptions narrows the scope of a build.
type BuildOptions struct {
	PageIDs []uuid.UUID
	DryRun  bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt       int
	ArtifactsWritten int
	Duration         time.Duration
	Rendered         []RenderedPage
	Errors           []error
	DryRun           bool
}

// RenderedPage describes one published page.
type RenderedPage struct {
	PageID   uuid.UUID
	Route    string
	Output   string
	Styles   string
	Checksum string
}

// Dependencies lists the collaborators required by the publisher.
type Dependencies struct {
	Store    documents.Store
	Renderer Renderer
	Writer   ArtifactWriter
	Builder  *sitecontext.Builder
	Logger   interfaces.Logger
	Recorder metrics.Recorder
}

// NewService wires a publisher with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Writer == nil {
		deps.Writer = NoopWriter{}
	}
	if deps.Builder == nil {
		deps.Builder = sitecontext.NewBuilder()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	deps.Recorder = metrics.OrNoop(deps.Recorder)
	return &service{cfg: cfg, deps: deps}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
}

type buildContext struct {
	site      *documents.Site
	context   sitecontext.SiteContext
	templates map[uuid.UUID]*documents.Template
	pages     []*documents.Page
	sources   map[uuid.UUID]sitecontext.PageSource
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &BuildResult{DryRun: opts.DryRun}
	logger := logging.WithFields(s.deps.Logger, map[string]any{"dry_run": opts.DryRun})

	bc, err := s.load(ctx)
	if err != nil {
		return s.finish(logger, result, start, []error{err})
	}
	selected, err := bc.selectPages(opts.PageIDs)
	if err != nil {
		return s.finish(logger, result, start, []error{err})
	}

	writer := s.deps.Writer
	if opts.DryRun {
		writer = NoopWriter{}
	}
	w := &countingWriter{ArtifactWriter: writer}

	if s.cfg.CleanBuild && !opts.DryRun && len(opts.PageIDs) == 0 {
		if err := w.RemoveAll(ctx, ""); err != nil {
			return s.finish(logger, result, start, []error{fmt.Errorf("publisher: clean: %w", err)})
		}
	}

	siteArtifacts, err := s.deps.Renderer.PublishSite(ctx, render.SiteRequest{
		Site:            bc.context,
		SiteStyles:      bc.site.Styles,
		SiteScripts:     bc.site.Scripts,
		SiteBodyScripts: bc.site.BodyScripts,
	})
	if err != nil {
		return s.finish(logger, result, start, []error{fmt.Errorf("publisher: site: %w", err)})
	}

	var errs []error
	if strings.TrimSpace(bc.site.Styles) != "" {
		if err := writeArtifact(ctx, w, siteArtifacts.Styles, CategoryStyles); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cfg.GenerateSitemap {
		if err := writeArtifact(ctx, w, siteArtifacts.Sitemap, CategorySitemap); err != nil {
			errs = append(errs, err)
		}
	}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(selected))
		group    errgroup.Group
	)
	group.SetLimit(s.workerCount(len(selected)))
	for _, page := range selected {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			out, err := s.publishPage(ctx, w, bc, page, siteArtifacts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			rendered = append(rendered, out)
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(rendered, func(i, j int) bool { return rendered[i].Route < rendered[j].Route })
	result.Rendered = rendered
	result.PagesBuilt = len(rendered)
	result.ArtifactsWritten = w.count()
	return s.finish(logger, result, start, errs)
}

func (s *service) BuildPage(ctx context.Context, pageID uuid.UUID) error {
	_, err := s.Build(ctx, BuildOptions{PageIDs: []uuid.UUID{pageID}})
	return err
}

// Preview renders the inline preview of one page. Store errors are returned;
// render errors are embedded in the document.
func (s *service) Preview(ctx context.Context, pageID uuid.UUID) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	bc, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	selected, err := bc.selectPages([]uuid.UUID{pageID})
	if err != nil {
		return "", err
	}
	req, err := s.pageRequest(bc, selected[0])
	if err != nil {
		return "", err
	}
	return s.deps.Renderer.Preview(ctx, req), nil
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.deps.Writer.RemoveAll(ctx, "")
}

func (s *service) ready() error {
	if s.deps.Store == nil {
		return ErrStoreRequired
	}
	if s.deps.Renderer == nil {
		return ErrRendererRequired
	}
	return nil
}

func (s *service) load(ctx context.Context) (*buildContext, error) {
	site, err := s.deps.Store.GetSite(ctx)
	if err != nil {
		return nil, fmt.Errorf("publisher: load site: %w", err)
	}
	templates, err := s.deps.Store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("publisher: load templates: %w", err)
	}
	pages, err := s.deps.Store.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("publisher: load pages: %w", err)
	}

	bc := &buildContext{
		site:      site,
		templates: make(map[uuid.UUID]*documents.Template, len(templates)),
		pages:     pages,
		sources:   make(map[uuid.UUID]sitecontext.PageSource, len(pages)),
	}
	for _, tpl := range templates {
		bc.templates[tpl.ID] = tpl
	}

	sources := make([]sitecontext.PageSource, 0, len(pages))
	for _, page := range pages {
		var schema *contentdata.Config
		if tpl, ok := bc.templates[page.TemplateID]; ok {
			schema = tpl.Schema
		}
		source := sitecontext.PageSource{
			ID:                 page.ID.String(),
			TemplateID:         page.TemplateID.String(),
			Slug:               page.Slug,
			Title:              page.Title,
			Route:              page.Route,
			ExcludeFromSitemap: page.ExcludeFromSitemap,
			Updated:            page.UpdatedAt,
			Blocks:             s.blocks("page", page.Route, schema, page.Content),
		}
		bc.sources[page.ID] = source
		sources = append(sources, source)
	}

	bc.context = s.deps.Builder.Site(sitecontext.SiteSource{
		Domain: site.Domain,
		URL:    site.URL,
		Blocks: s.blocks("site", site.Domain, site.Schema, site.Content),
	}, sources)
	return bc, nil
}

// blocks reconciles stored content against the current schema and, when
// configured, drops the blocks without values.
func (s *service) blocks(owner, key string, schema *contentdata.Config, content contentdata.ContentData) contentdata.ContentData {
	reconciled := contentdata.Reconcile(schema, content)
	if dropped := len(content) - len(reconciled); dropped > 0 {
		s.deps.Logger.Debug("publisher.reconcile.dropped_blocks", "owner", owner, "key", key, "dropped", dropped)
	}
	if s.cfg.SkipEmptyBlocks {
		return contentdata.WithoutEmptyBlocks(reconciled)
	}
	return reconciled
}

func (bc *buildContext) selectPages(ids []uuid.UUID) ([]*documents.Page, error) {
	if len(ids) == 0 {
		return bc.pages, nil
	}
	byID := make(map[uuid.UUID]*documents.Page, len(bc.pages))
	for _, page := range bc.pages {
		byID[page.ID] = page
	}
	out := make([]*documents.Page, 0, len(ids))
	for _, id := range ids {
		page, ok := byID[id]
		if !ok {
			return nil, &documents.NotFoundError{Resource: "page", Key: id.String()}
		}
		out = append(out, page)
	}
	return out, nil
}

func (s *service) pageRequest(bc *buildContext, page *documents.Page) (render.PageRequest, error) {
	tpl, ok := bc.templates[page.TemplateID]
	if !ok {
		return render.PageRequest{}, fmt.Errorf("publisher: page %s: %w", page.Route, errTemplateRequired)
	}
	return render.PageRequest{
		Markdown:        page.Markdown,
		HTML:            tpl.HTML,
		Styles:          tpl.Styles,
		SiteStyles:      bc.site.Styles,
		SiteScripts:     bc.site.Scripts,
		SiteBodyScripts: bc.site.BodyScripts,
		Page:            s.deps.Builder.Page(bc.sources[page.ID]),
		Site:            bc.context,
	}, nil
}

func (s *service) publishPage(ctx context.Context, w ArtifactWriter, bc *buildContext, page *documents.Page, site render.SiteArtifacts) (RenderedPage, error) {
	logger := logging.WithPageContext(s.deps.Logger, page.ID.String(), page.Route, string(metrics.KindPublishPage), "")

	req, err := s.pageRequest(bc, page)
	if err != nil {
		return RenderedPage{}, err
	}
	// Site scripts are rendered once per build and embedded as is.
	req.SiteScripts = site.Scripts
	req.SiteBodyScripts = site.BodyScripts

	artifacts, err := s.deps.Renderer.PublishPage(ctx, req)
	if err != nil {
		logger.Error("publisher.page.failed", "error", err)
		return RenderedPage{}, fmt.Errorf("publisher: page %s: %w", page.Route, err)
	}
	if err := writeArtifact(ctx, w, artifacts.Styles, CategoryStyles); err != nil {
		return RenderedPage{}, err
	}
	if err := writeArtifact(ctx, w, artifacts.HTML, CategoryPage); err != nil {
		return RenderedPage{}, err
	}
	logger.Debug("publisher.page.written", "output", artifacts.HTML.Path)

	return RenderedPage{
		PageID:   page.ID,
		Route:    page.Route,
		Output:   artifacts.HTML.Path,
		Styles:   artifacts.Styles.Path,
		Checksum: checksum(artifacts.HTML.Body),
	}, nil
}

func (s *service) finish(logger interfaces.Logger, result *BuildResult, start time.Time, errs []error) (*BuildResult, error) {
	result.Duration = time.Since(start)
	s.deps.Recorder.ObserveBuild(result.Duration, result.PagesBuilt, len(errs) == 0)
	if len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		logger.Error("publisher.build.failed", "errors", len(errs), "pages", result.PagesBuilt)
		return result, errors.Join(errs...)
	}
	logger.Info("publisher.build.completed", "pages", result.PagesBuilt, "artifacts", result.ArtifactsWritten, "duration", result.Duration)
	return result, nil
}

func (s *service) workerCount(pages int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if pages > 0 && workers > pages {
		workers = pages
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func writeArtifact(ctx context.Context, w ArtifactWriter, artifact render.Artifact, category WriteCategory) error {
	if err := w.WriteFile(ctx, textRequest(artifact.Path, artifact.Body, artifact.ContentType, category)); err != nil {
		return fmt.Errorf("publisher: write %s: %w", artifact.Path, err)
	}
	return nil
}

func checksum(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

type countingWriter struct {
	ArtifactWriter
	mu      sync.Mutex
	written int
}

func (w *countingWriter) WriteFile(ctx context.Context, req WriteFileRequest) error {
	if err := w.ArtifactWriter.WriteFile(ctx, req); err != nil {
		return err
	}
	w.mu.Lock()
	w.written++
	w.mu.Unlock()
	return nil
}

func (w *countingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPage(context.Context, uuid.UUID) error {
	return ErrServiceDisabled
}

func (disabledService) Preview(context.Context, uuid.UUID) (string, error) {
	return "", ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
