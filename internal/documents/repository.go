package documents

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewSiteRepository creates a repository for sites.
func NewSiteRepository(db *bun.DB) repository.Repository[*Site] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Site]{
		NewRecord:          func() *Site { return &Site{} },
		GetID:              func(site *Site) uuid.UUID { return site.ID },
		SetID:              func(site *Site, id uuid.UUID) { site.ID = id },
		GetIdentifier:      func() string { return "domain" },
		GetIdentifierValue: func(site *Site) string { return site.Domain },
	})
}

// NewTemplateRepository creates a repository for templates.
func NewTemplateRepository(db *bun.DB) repository.Repository[*Template] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Template]{
		NewRecord:          func() *Template { return &Template{} },
		GetID:              func(tpl *Template) uuid.UUID { return tpl.ID },
		SetID:              func(tpl *Template, id uuid.UUID) { tpl.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(tpl *Template) string { return tpl.Slug },
	})
}

// NewPageRepository creates a repository for pages.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord:          func() *Page { return &Page{} },
		GetID:              func(page *Page) uuid.UUID { return page.ID },
		SetID:              func(page *Page, id uuid.UUID) { page.ID = id },
		GetIdentifier:      func() string { return "route" },
		GetIdentifierValue: func(page *Page) string { return page.Route },
	})
}
