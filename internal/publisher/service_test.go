package publisher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitecms/internal/contentdata"
	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/render"
)

const layoutHTML = `<html><head>{{ styles }}{{ headScripts }}</head><body>` +
	`{% for b in thisPage.blocks %}<h1>{{ b.fields.title.stringValue }}</h1>{% endfor %}` +
	`{{ thisPage.article }}{{ bodyScripts }}</body></html>`

type fixture struct {
	store  *documents.MemoryStore
	fs     afero.Fs
	home   *documents.Page
	about  *documents.Page
	drafts *documents.Page
	tpl    *documents.Template
}

func heroSchema() *contentdata.Config {
	return contentdata.NewConfig().With("hero", contentdata.BlockClass{
		Label:  "Hero",
		Fields: []contentdata.FieldClass{{Label: "Title", Key: "title", Type: contentdata.FieldTypeString}},
	})
}

func hero(title string) contentdata.Block {
	return contentdata.Block{Key: "hero", Fields: map[string]contentdata.FieldValue{
		"title": contentdata.Single(contentdata.Field{StringValue: title}),
	}}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := documents.NewMemoryStore(documents.WithMemoryClock(func() time.Time {
		return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	}))

	site, err := store.SaveSite(ctx, &documents.Site{
		Domain:      "example.com",
		URL:         "https://example.com",
		Styles:      "body { margin: 0; }",
		Scripts:     "<script>{{ site.domain }}</script>",
		BodyScripts: "<script>tail</script>",
	})
	if err != nil {
		t.Fatalf("save site: %v", err)
	}
	tpl, err := store.SaveTemplate(ctx, &documents.Template{
		SiteID: site.ID,
		Name:   "Landing",
		Slug:   "landing",
		HTML:   layoutHTML,
		Styles: "h1 { color: red; }",
		Schema: heroSchema(),
	})
	if err != nil {
		t.Fatalf("save template: %v", err)
	}

	save := func(page *documents.Page) *documents.Page {
		page.SiteID = site.ID
		page.TemplateID = tpl.ID
		saved, err := store.SavePage(ctx, page)
		if err != nil {
			t.Fatalf("save page %s: %v", page.Route, err)
		}
		return saved
	}

	return &fixture{
		store: store,
		fs:    afero.NewMemMapFs(),
		tpl:   tpl,
		home: save(&documents.Page{
			Title:   "Home",
			Route:   "/",
			Content: contentdata.ContentData{hero("Welcome"), {Key: "legacy"}},
		}),
		about: save(&documents.Page{
			Title:    "About",
			Route:    "/about",
			Markdown: "# About {{ site.domain }}",
		}),
		drafts: save(&documents.Page{
			Title:              "Drafts",
			Route:              "/drafts",
			ExcludeFromSitemap: true,
			Content:            contentdata.ContentData{hero("   ")},
		}),
	}
}

func (f *fixture) service(cfg Config, recorder metrics.Recorder) Service {
	return NewService(cfg, Dependencies{
		Store:    f.store,
		Renderer: render.New(),
		Writer:   NewFSWriter(f.fs, "public"),
		Recorder: recorder,
	})
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, "public/"+name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

type buildRecorder struct {
	metrics.NoopRecorder
	pages   int
	success bool
	calls   int
}

func (r *buildRecorder) ObserveBuild(_ time.Duration, pages int, success bool) {
	r.calls++
	r.pages = pages
	r.success = success
}

func TestBuildWritesSite(t *testing.T) {
	f := newFixture(t)
	recorder := &buildRecorder{}
	result, err := f.service(Config{GenerateSitemap: true}, recorder).Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 3 || result.ArtifactsWritten != 8 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Rendered[0].Route != "/" || result.Rendered[0].Output != "index.html" {
		t.Fatalf("unexpected rendered order %+v", result.Rendered)
	}
	if recorder.calls != 1 || recorder.pages != 3 || !recorder.success {
		t.Fatalf("unexpected build metrics %+v", recorder)
	}

	home := f.read(t, "index.html")
	for _, want := range []string{
		"<h1>Welcome</h1>",
		`<link rel="stylesheet" href="/generated/global/styles.css">`,
		`<link rel="stylesheet" href="/generated/` + f.home.ID.String() + `/styles.css">`,
		"<script>example.com</script>",
		"<script>tail</script></body>",
	} {
		if !strings.Contains(home, want) {
			t.Fatalf("index.html missing %q:\n%s", want, home)
		}
	}
	if strings.Contains(home, "legacy") {
		t.Fatal("expected orphan block to be reconciled away")
	}

	if about := f.read(t, "about.html"); !strings.Contains(about, "About example.com</h1>") {
		t.Fatalf("expected rendered article, got %s", about)
	}
	if styles := f.read(t, "generated/"+f.about.ID.String()+"/styles.css"); styles != "h1 { color: red; }" {
		t.Fatalf("unexpected page styles %q", styles)
	}
	if styles := f.read(t, "generated/global/styles.css"); styles != "body { margin: 0; }" {
		t.Fatalf("unexpected site styles %q", styles)
	}

	sitemap := f.read(t, "sitemap.xml")
	if strings.Count(sitemap, "<url>") != 2 || strings.Contains(sitemap, "/drafts") {
		t.Fatalf("unexpected sitemap %s", sitemap)
	}
	if !strings.Contains(sitemap, "<lastmod>2024-05-02T09:00:00Z</lastmod>") {
		t.Fatalf("expected lastmod from page timestamps, got %s", sitemap)
	}
}

func TestBuildSkipEmptyBlocks(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service(Config{}, nil).Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if drafts := f.read(t, "drafts.html"); !strings.Contains(drafts, "<h1>   </h1>") {
		t.Fatalf("expected empty block to render by default, got %s", drafts)
	}

	if _, err := f.service(Config{SkipEmptyBlocks: true}, nil).Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if drafts := f.read(t, "drafts.html"); strings.Contains(drafts, "<h1>") {
		t.Fatalf("expected empty block to be skipped, got %s", drafts)
	}
	if home := f.read(t, "index.html"); !strings.Contains(home, "<h1>Welcome</h1>") {
		t.Fatalf("expected populated block to stay, got %s", home)
	}
}

func TestBuildPage(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Config{}, nil)
	if err := svc.BuildPage(context.Background(), f.about.ID); err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	f.read(t, "about.html")
	if exists, _ := afero.Exists(f.fs, "public/index.html"); exists {
		t.Fatal("expected only the requested page to be written")
	}

	err := svc.BuildPage(context.Background(), uuid.New())
	if !documents.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestBuildCollectsPageErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := *f.tpl
	broken.ID = uuid.Nil
	broken.Slug = "broken"
	broken.HTML = "{% if %}"
	saved, err := f.store.SaveTemplate(ctx, &broken)
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	about := *f.about
	about.TemplateID = saved.ID
	if _, err := f.store.SavePage(ctx, &about); err != nil {
		t.Fatalf("save page: %v", err)
	}

	recorder := &buildRecorder{}
	result, err := f.service(Config{}, recorder).Build(ctx, BuildOptions{})
	if err == nil {
		t.Fatal("expected build error")
	}
	var stageErr *render.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected render stage error, got %v", err)
	}
	if result.PagesBuilt != 2 || len(result.Errors) != 1 {
		t.Fatalf("expected remaining pages to build, got %+v", result)
	}
	if recorder.success {
		t.Fatal("expected failed build to be recorded")
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	result, err := f.service(Config{GenerateSitemap: true}, nil).Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !result.DryRun || result.PagesBuilt != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if exists, _ := afero.DirExists(f.fs, "public"); exists {
		t.Fatal("expected dry run to leave the filesystem untouched")
	}
}

func TestCleanBuildRemovesStaleFiles(t *testing.T) {
	f := newFixture(t)
	if err := afero.WriteFile(f.fs, "public/stale.html", []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.service(Config{CleanBuild: true}, nil).Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if exists, _ := afero.Exists(f.fs, "public/stale.html"); exists {
		t.Fatal("expected stale file to be removed")
	}
	f.read(t, "index.html")
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	svc := f.service(Config{}, nil)
	out, err := svc.Preview(context.Background(), f.home.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	for _, want := range []string{"<style>body { margin: 0; }", `<base href="https://example.com/">`, "<h1>Welcome</h1>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("preview missing %q:\n%s", want, out)
		}
	}

	if _, err := svc.Preview(context.Background(), uuid.New()); !documents.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPreviewEmbedsRenderErrors(t *testing.T) {
	f := newFixture(t)
	broken := *f.tpl
	broken.HTML = "{% if %}"
	if _, err := f.store.SaveTemplate(context.Background(), &broken); err != nil {
		t.Fatalf("save template: %v", err)
	}
	out, err := f.service(Config{}, nil).Preview(context.Background(), f.home.ID)
	if err != nil {
		t.Fatalf("expected render errors to be embedded, got %v", err)
	}
	if !strings.Contains(out, `<p style="color: red;">`) {
		t.Fatalf("expected error document, got %s", out)
	}
}

func TestBuildRequiresDependencies(t *testing.T) {
	if _, err := NewService(Config{}, Dependencies{}).Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
	svc := NewService(Config{}, Dependencies{Store: documents.NewMemoryStore()})
	if _, err := svc.Preview(context.Background(), uuid.New()); !errors.Is(err, ErrRendererRequired) {
		t.Fatalf("expected ErrRendererRequired, got %v", err)
	}

	empty := NewService(Config{}, Dependencies{Store: documents.NewMemoryStore(), Renderer: render.New()})
	if _, err := empty.Build(context.Background(), BuildOptions{}); !documents.IsNotFound(err) {
		t.Fatalf("expected missing site error, got %v", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}
