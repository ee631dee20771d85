package documents_test

import (
	"context"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitecms/internal/contentdata"
	"github.com/goliatone/go-sitecms/internal/documents"
	"github.com/goliatone/go-sitecms/internal/identity"
	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

var fixedNow = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

func heroSchema() *contentdata.Config {
	return contentdata.NewConfig().With("hero", contentdata.BlockClass{
		Label:  "Hero",
		Fields: []contentdata.FieldClass{{Label: "Title", Key: "title", Type: contentdata.FieldTypeString}},
	})
}

func exerciseStore(t *testing.T, store documents.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.GetSite(ctx)
	require.True(t, documents.IsNotFound(err), "expected missing site, got %v", err)

	site, err := store.SaveSite(ctx, &documents.Site{
		Domain: " example.com ",
		URL:    "https://example.com/",
		Schema: heroSchema(),
		Styles: "body {}",
	})
	require.NoError(t, err)
	require.Equal(t, identity.SiteUUID("example.com"), site.ID)
	require.Equal(t, "https://example.com", site.URL)

	loaded, err := store.GetSite(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"hero"}, loaded.Schema.Keys())

	tpl, err := store.SaveTemplate(ctx, &documents.Template{
		SiteID: site.ID,
		Name:   "Landing",
		Slug:   "landing",
		HTML:   "<main>{{ thisPage.article }}</main>",
		Schema: heroSchema(),
	})
	require.NoError(t, err)

	page, err := store.SavePage(ctx, &documents.Page{
		SiteID:     site.ID,
		TemplateID: tpl.ID,
		Title:      "Docs",
		Route:      "docs/",
		Content: contentdata.ContentData{
			{Key: "hero", Fields: map[string]contentdata.FieldValue{
				"title": contentdata.Single(contentdata.Field{StringValue: "Hi"}),
			}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "/docs", page.Route)
	require.Equal(t, fixedNow, page.CreatedAt.UTC())

	byRoute, err := store.GetPageByRoute(ctx, "/docs/")
	require.NoError(t, err)
	require.Equal(t, page.ID, byRoute.ID)
	require.Equal(t, "Hi", byRoute.Content[0].Fields["title"].Item.StringValue)

	page.Title = "Documentation"
	_, err = store.SavePage(ctx, page)
	require.NoError(t, err)

	updated, err := store.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "Documentation", updated.Title)

	_, err = store.SavePage(ctx, &documents.Page{SiteID: site.ID, TemplateID: tpl.ID, Title: "Home", Route: "/"})
	require.NoError(t, err)

	pages, err := store.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "/", pages[0].Route)

	templates, err := store.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	_, err = store.GetTemplate(ctx, identity.UUID("missing"))
	require.True(t, documents.IsNotFound(err), "expected missing template, got %v", err)

	_, err = store.SavePage(ctx, nil)
	require.ErrorIs(t, err, documents.ErrDocumentRequired)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, documents.NewMemoryStore(documents.WithMemoryClock(func() time.Time { return fixedNow })))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := documents.NewMemoryStore()
	saved, err := store.SavePage(ctx, &documents.Page{Title: "A", Route: "/a", Content: contentdata.ContentData{{Key: "hero"}}})
	require.NoError(t, err)

	saved.Content[0].Key = "mutated"
	loaded, err := store.GetPage(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "hero", loaded.Content[0].Key)
}

func TestBunStore(t *testing.T) {
	db := newBunDB(t)
	store := documents.NewBunStore(db).WithClock(func() time.Time { return fixedNow })
	exerciseStore(t, store)
}

func TestBunStoreWithCache(t *testing.T) {
	db := newBunDB(t)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	require.NoError(t, err)

	store := documents.NewBunStoreWithCache(db, cacheSvc, repocache.NewDefaultKeySerializer()).
		WithClock(func() time.Time { return fixedNow })
	exerciseStore(t, store)
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = documents.Open(sqlDB, "oracle")
	require.Error(t, err)
	_, err = documents.Open(nil, "sqlite")
	require.Error(t, err)
}
