package sitecontext

import (
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/contentdata"
	"github.com/goliatone/go-sitecms/internal/paths"
	"github.com/goliatone/go-slug"
)

// SiteSource carries the stored site fields the builder projects.
type SiteSource struct {
	Domain string
	URL    string
	Blocks contentdata.ContentData
}

// PageSource carries the stored page fields the builder projects.
type PageSource struct {
	ID                 string
	TemplateID         string
	Slug               string
	Title              string
	Route              string
	ExcludeFromSitemap bool
	Updated            time.Time
	Blocks             contentdata.ContentData
}

// Builder turns stored documents into template contexts.
type Builder struct {
	slugger    slug.Normalizer
	timeLayout string
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithSlugNormalizer overrides the normalizer used when a page has no slug.
func WithSlugNormalizer(normalizer slug.Normalizer) BuilderOption {
	return func(b *Builder) {
		if normalizer != nil {
			b.slugger = normalizer
		}
	}
}

// WithTimeLayout overrides the layout used for `updated` (RFC3339 by default).
func WithTimeLayout(layout string) BuilderOption {
	return func(b *Builder) {
		if strings.TrimSpace(layout) != "" {
			b.timeLayout = layout
		}
	}
}

// NewBuilder constructs a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		slugger:    slug.Default(),
		timeLayout: time.RFC3339,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Basic projects the summary fields of a page.
func (b *Builder) Basic(src PageSource) PageBasicContext {
	updated := ""
	if !src.Updated.IsZero() {
		updated = src.Updated.UTC().Format(b.timeLayout)
	}
	return PageBasicContext{
		ID:                 strings.TrimSpace(src.ID),
		TemplateID:         strings.TrimSpace(src.TemplateID),
		Slug:               b.slugFor(src),
		Title:              src.Title,
		Route:              paths.NormalizeRoute(src.Route),
		ExcludeFromSitemap: src.ExcludeFromSitemap,
		Updated:            updated,
	}
}

// Page projects a full page context. Article is left empty for the render
// engine to fill.
func (b *Builder) Page(src PageSource) PageContext {
	return PageContext{
		PageBasicContext: b.Basic(src),
		Blocks:           cloneContent(src.Blocks),
	}
}

// Site projects the site context with every page indexed by id.
func (b *Builder) Site(src SiteSource, pages []PageSource) SiteContext {
	index := make(map[string]PageBasicContext, len(pages))
	for _, page := range pages {
		basic := b.Basic(page)
		if basic.ID == "" {
			continue
		}
		index[basic.ID] = basic
	}
	return SiteContext{
		Domain: strings.TrimSpace(src.Domain),
		URL:    strings.TrimRight(strings.TrimSpace(src.URL), "/"),
		Blocks: cloneContent(src.Blocks),
		Pages:  index,
	}
}

func (b *Builder) slugFor(src PageSource) string {
	if candidate := strings.TrimSpace(src.Slug); candidate != "" {
		return candidate
	}
	title := strings.TrimSpace(src.Title)
	if title == "" {
		return ""
	}
	normalized, err := b.slugger.Normalize(title)
	if err != nil {
		return ""
	}
	return normalized
}

func cloneContent(content contentdata.ContentData) contentdata.ContentData {
	if content == nil {
		return contentdata.ContentData{}
	}
	return content.Clone()
}
