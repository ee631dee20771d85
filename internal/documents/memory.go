package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/paths"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu        sync.RWMutex
	site      *Site
	templates map[uuid.UUID]*Template
	pages     map[uuid.UUID]*Page
	routes    map[string]uuid.UUID
	now       func() time.Time
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock used for timestamps.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		templates: make(map[uuid.UUID]*Template),
		pages:     make(map[uuid.UUID]*Page),
		routes:    make(map[string]uuid.UUID),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) GetSite(_ context.Context) (*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.site == nil {
		return nil, &NotFoundError{Resource: "site"}
	}
	return cloneSite(s.site), nil
}

func (s *MemoryStore) SaveSite(_ context.Context, site *Site) (*Site, error) {
	if site == nil {
		return nil, ErrDocumentRequired
	}
	record := cloneSite(site)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.site != nil && record.CreatedAt.IsZero() {
		record.CreatedAt = s.site.CreatedAt
	}
	prepareSite(record, s.now())
	s.site = record
	return cloneSite(record), nil
}

func (s *MemoryStore) GetTemplate(_ context.Context, id uuid.UUID) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.templates[id]
	if !ok {
		return nil, &NotFoundError{Resource: "template", Key: id.String()}
	}
	return cloneTemplate(record), nil
}

func (s *MemoryStore) ListTemplates(_ context.Context) ([]*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Template, 0, len(s.templates))
	for _, record := range s.templates {
		out = append(out, cloneTemplate(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *MemoryStore) SaveTemplate(_ context.Context, tpl *Template) (*Template, error) {
	if tpl == nil {
		return nil, ErrDocumentRequired
	}
	record := cloneTemplate(tpl)
	s.mu.Lock()
	defer s.mu.Unlock()
	prepareTemplate(record, s.now())
	if existing, ok := s.templates[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.templates[record.ID] = record
	return cloneTemplate(record), nil
}

func (s *MemoryStore) GetPage(_ context.Context, id uuid.UUID) (*Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(record), nil
}

func (s *MemoryStore) GetPageByRoute(_ context.Context, route string) (*Page, error) {
	normalized := paths.NormalizeRoute(route)
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.routes[normalized]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: normalized}
	}
	return clonePage(s.pages[id]), nil
}

func (s *MemoryStore) ListPages(_ context.Context) ([]*Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Page, 0, len(s.pages))
	for _, record := range s.pages {
		out = append(out, clonePage(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out, nil
}

func (s *MemoryStore) SavePage(_ context.Context, page *Page) (*Page, error) {
	if page == nil {
		return nil, ErrDocumentRequired
	}
	record := clonePage(page)
	s.mu.Lock()
	defer s.mu.Unlock()
	preparePage(record, s.now())
	if existing, ok := s.pages[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
		delete(s.routes, existing.Route)
	}
	s.pages[record.ID] = record
	s.routes[record.Route] = record.ID
	return clonePage(record), nil
}

var _ Store = (*MemoryStore)(nil)
