package di_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/contentdata"
	"github.com/goliatone/go-sitecms/internal/di"
	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/internal/logging/gologger"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/publisher"
	"github.com/goliatone/go-sitecms/internal/runtimeconfig"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

func TestNewContainerDefaults(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if _, ok := container.Store().(*documents.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", container.Store())
	}
	if container.Renderer() == nil {
		t.Fatal("expected renderer")
	}
	if container.MetricsRegistry() != nil {
		t.Fatal("expected no metrics registry when metrics are disabled")
	}
	if _, err := container.PublisherService().Build(context.Background(), publisher.BuildOptions{}); !errors.Is(err, publisher.ErrServiceDisabled) {
		t.Fatalf("expected disabled publisher, got %v", err)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mongo"
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected storage driver error, got %v", err)
	}
}

func TestNewContainerUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
}

func TestNewContainerMetricsRegistry(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Metrics = true

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.MetricsRegistry() == nil {
		t.Fatal("expected prometheus registry")
	}
	if _, ok := container.Recorder().(*metrics.PrometheusRecorder); !ok {
		t.Fatalf("expected prometheus recorder, got %T", container.Recorder())
	}
}

func TestNewContainerBunSQLiteStore(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "bun"
	cfg.Storage.Dialect = "sqlite"
	cfg.Storage.DSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, ok := container.Store().(*documents.BunStore); !ok {
		t.Fatalf("expected bun store, got %T", container.Store())
	}
	site, err := container.Store().SaveSite(context.Background(), &documents.Site{
		Domain: "example.com",
		URL:    "https://example.com",
	})
	if err != nil {
		t.Fatalf("save site: %v", err)
	}
	got, err := container.Store().GetSite(context.Background())
	if err != nil || got.ID != site.ID {
		t.Fatalf("expected stored site, got %+v, %v", got, err)
	}
}

func TestNewContainerPublishesThroughInjectedWriter(t *testing.T) {
	ctx := context.Background()
	store := documents.NewMemoryStore()
	site, err := store.SaveSite(ctx, &documents.Site{Domain: "example.com", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("save site: %v", err)
	}
	schema := contentdata.NewConfig().With("hero", contentdata.BlockClass{
		Label:  "Hero",
		Fields: []contentdata.FieldClass{{Label: "Title", Key: "title", Type: contentdata.FieldTypeString}},
	})
	tpl, err := store.SaveTemplate(ctx, &documents.Template{
		SiteID: site.ID,
		Name:   "Landing",
		Slug:   "landing",
		HTML:   "{% for b in thisPage.blocks %}<h1>{{ b.fields.title.stringValue }}</h1>{% endfor %}",
		Schema: schema,
	})
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	if _, err := store.SavePage(ctx, &documents.Page{
		SiteID:     site.ID,
		TemplateID: tpl.ID,
		Title:      "Home",
		Route:      "/",
	}); err != nil {
		t.Fatalf("save page: %v", err)
	}

	writer := &recordingWriter{}
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true

	container, err := di.NewContainer(cfg,
		di.WithStore(store),
		di.WithWriter(writer),
		di.WithLoggerProvider(nopProvider{}),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	result, err := container.PublisherService().Build(ctx, publisher.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Fatalf("expected one page, got %d", result.PagesBuilt)
	}
	if _, ok := writer.files["index.html"]; !ok {
		t.Fatalf("expected index.html to be written, got %v", writer.paths())
	}
}

type recordingWriter struct {
	files map[string]publisher.WriteFileRequest
}

func (w *recordingWriter) EnsureDir(context.Context, string) error { return nil }

func (w *recordingWriter) WriteFile(_ context.Context, req publisher.WriteFileRequest) error {
	if w.files == nil {
		w.files = map[string]publisher.WriteFileRequest{}
	}
	w.files[req.Path] = req
	return nil
}

func (w *recordingWriter) RemoveAll(context.Context, string) error { return nil }

func (w *recordingWriter) paths() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return nil }
