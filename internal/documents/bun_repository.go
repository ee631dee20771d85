package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/paths"
)

// BunStore implements Store on top of go-repository-bun with optional caching.
type BunStore struct {
	sites     repository.Repository[*Site]
	templates repository.Repository[*Template]
	pages     repository.Repository[*Page]
	now       func() time.Time
}

// NewBunStore creates a store without caching.
func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache creates a store whose repositories read through the
// given cache service.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunStore {
	sites := NewSiteRepository(db)
	templates := NewTemplateRepository(db)
	pages := NewPageRepository(db)
	if cacheService != nil && serializer != nil {
		sites = repositorycache.New(sites, cacheService, serializer)
		templates = repositorycache.New(templates, cacheService, serializer)
		pages = repositorycache.New(pages, cacheService, serializer)
	}
	return &BunStore{
		sites:     sites,
		templates: templates,
		pages:     pages,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the clock used for timestamps.
func (s *BunStore) WithClock(now func() time.Time) *BunStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *BunStore) GetSite(ctx context.Context) (*Site, error) {
	records, _, err := s.sites.List(ctx, repository.SelectPaginate(1, 0))
	if err != nil {
		return nil, mapRepositoryError(err, "site", "")
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "site"}
	}
	return records[0], nil
}

func (s *BunStore) SaveSite(ctx context.Context, site *Site) (*Site, error) {
	if site == nil {
		return nil, ErrDocumentRequired
	}
	record := cloneSite(site)
	prepareSite(record, s.now())
	existing, err := s.sites.GetByID(ctx, record.ID.String())
	if err != nil && !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, mapRepositoryError(err, "site", record.Domain)
	}
	if existing == nil || err != nil {
		return s.sites.Create(ctx, record)
	}
	record.CreatedAt = existing.CreatedAt
	updated, err := s.sites.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "site", record.Domain)
	}
	return updated, nil
}

func (s *BunStore) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	record, err := s.templates.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "template", id.String())
	}
	return record, nil
}

func (s *BunStore) ListTemplates(ctx context.Context) ([]*Template, error) {
	records, _, err := s.templates.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("slug ASC")
	}))
	return records, err
}

func (s *BunStore) SaveTemplate(ctx context.Context, tpl *Template) (*Template, error) {
	if tpl == nil {
		return nil, ErrDocumentRequired
	}
	record := cloneTemplate(tpl)
	prepareTemplate(record, s.now())
	existing, err := s.templates.GetByID(ctx, record.ID.String())
	if err != nil && !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, mapRepositoryError(err, "template", record.Slug)
	}
	if existing == nil || err != nil {
		return s.templates.Create(ctx, record)
	}
	record.CreatedAt = existing.CreatedAt
	updated, err := s.templates.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "template", record.Slug)
	}
	return updated, nil
}

func (s *BunStore) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := s.pages.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return record, nil
}

func (s *BunStore) GetPageByRoute(ctx context.Context, route string) (*Page, error) {
	normalized := paths.NormalizeRoute(route)
	record, err := s.pages.GetByIdentifier(ctx, normalized)
	if err != nil {
		return nil, mapRepositoryError(err, "page", normalized)
	}
	return record, nil
}

func (s *BunStore) ListPages(ctx context.Context) ([]*Page, error) {
	records, _, err := s.pages.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("route ASC")
	}))
	return records, err
}

func (s *BunStore) SavePage(ctx context.Context, page *Page) (*Page, error) {
	if page == nil {
		return nil, ErrDocumentRequired
	}
	record := clonePage(page)
	preparePage(record, s.now())
	existing, err := s.pages.GetByID(ctx, record.ID.String())
	if err != nil && !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, mapRepositoryError(err, "page", record.Route)
	}
	if existing == nil || err != nil {
		return s.pages.Create(ctx, record)
	}
	record.CreatedAt = existing.CreatedAt
	updated, err := s.pages.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "page", record.Route)
	}
	return updated, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

var _ Store = (*BunStore)(nil)
