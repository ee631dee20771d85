// Package sitecontext projects stored site and page documents into the
// template contexts consumed by the render engine.
package sitecontext

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/goliatone/go-sitecms/internal/contentdata"
)

// SiteContext is exposed to templates as `site`.
type SiteContext struct {
	Domain string                      `json:"domain"`
	URL    string                      `json:"url"`
	Blocks contentdata.ContentData     `json:"blocks"`
	Pages  map[string]PageBasicContext `json:"pages"`
}

// PageBasicContext is the summary of a page listed under `site.pages`.
type PageBasicContext struct {
	ID                 string `json:"id"`
	TemplateID         string `json:"templateId"`
	Slug               string `json:"slug"`
	Title              string `json:"title"`
	Route              string `json:"route"`
	ExcludeFromSitemap bool   `json:"excludeFromSitemap"`
	Updated            string `json:"updated"`
}

// PageContext is exposed to templates as `thisPage`.
type PageContext struct {
	PageBasicContext
	Blocks  contentdata.ContentData `json:"blocks"`
	Article string                  `json:"article"`
	Meta    map[string]any          `json:"meta,omitempty"`
}

// WithArticle returns a copy of the page context carrying the rendered article.
func (p PageContext) WithArticle(article string) PageContext {
	out := p
	out.Article = article
	return out
}

// WithMeta returns a copy of the page context carrying front matter values.
func (p PageContext) WithMeta(meta map[string]any) PageContext {
	out := p
	if len(meta) == 0 {
		out.Meta = nil
		return out
	}
	out.Meta = maps.Clone(meta)
	return out
}

// Page resolves a page link target by id.
func (s SiteContext) Page(id string) (PageBasicContext, bool) {
	page, ok := s.Pages[id]
	return page, ok
}

// TemplateData converts the site context into the map shape templates see.
func (s SiteContext) TemplateData() (map[string]any, error) {
	return toTemplateMap(s)
}

// TemplateData converts the page context into the map shape templates see.
func (p PageContext) TemplateData() (map[string]any, error) {
	return toTemplateMap(p)
}

func toTemplateMap(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("sitecontext: encode template data: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("sitecontext: decode template data: %w", err)
	}
	return out, nil
}
