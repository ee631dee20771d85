package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/contentdata"
)

// Site is the single site a store publishes. Schema declares the site-wide
// blocks; Styles, Scripts and BodyScripts are template sources rendered
// with the site context.
type Site struct {
	bun.BaseModel `bun:"table:sites,alias:s"`

	ID          uuid.UUID               `bun:",pk,type:uuid" json:"id"`
	Domain      string                  `bun:"domain,notnull,unique" json:"domain"`
	URL         string                  `bun:"url,notnull" json:"url"`
	Schema      *contentdata.Config     `bun:"schema,type:jsonb" json:"schema,omitempty"`
	Content     contentdata.ContentData `bun:"content,type:jsonb" json:"content"`
	Styles      string                  `bun:"styles" json:"styles,omitempty"`
	Scripts     string                  `bun:"scripts" json:"scripts,omitempty"`
	BodyScripts string                  `bun:"body_scripts" json:"body_scripts,omitempty"`
	CreatedAt   time.Time               `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time               `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Template holds the page layout sources and the block schema pages built
// from it must follow.
type Template struct {
	bun.BaseModel `bun:"table:templates,alias:tp"`

	ID        uuid.UUID           `bun:",pk,type:uuid" json:"id"`
	SiteID    uuid.UUID           `bun:"site_id,notnull,type:uuid" json:"site_id"`
	Name      string              `bun:"name,notnull" json:"name"`
	Slug      string              `bun:"slug,notnull,unique" json:"slug"`
	HTML      string              `bun:"html,notnull" json:"html"`
	Styles    string              `bun:"styles" json:"styles,omitempty"`
	Schema    *contentdata.Config `bun:"schema,type:jsonb" json:"schema,omitempty"`
	CreatedAt time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Page is an authored page. Route is stored normalized ("/", "/docs").
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID                 uuid.UUID               `bun:",pk,type:uuid" json:"id"`
	SiteID             uuid.UUID               `bun:"site_id,notnull,type:uuid" json:"site_id"`
	TemplateID         uuid.UUID               `bun:"template_id,notnull,type:uuid" json:"template_id"`
	Title              string                  `bun:"title,notnull" json:"title"`
	Slug               string                  `bun:"slug" json:"slug,omitempty"`
	Route              string                  `bun:"route,notnull,unique" json:"route"`
	Markdown           string                  `bun:"markdown" json:"markdown,omitempty"`
	Content            contentdata.ContentData `bun:"content,type:jsonb" json:"content"`
	ExcludeFromSitemap bool                    `bun:"exclude_from_sitemap,notnull,default:false" json:"exclude_from_sitemap"`
	CreatedAt          time.Time               `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time               `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Models lists the bun models for table creation.
func Models() []any {
	return []any{
		(*Site)(nil),
		(*Template)(nil),
		(*Page)(nil),
	}
}

func cloneSite(site *Site) *Site {
	if site == nil {
		return nil
	}
	out := *site
	out.Schema = cloneConfig(site.Schema)
	out.Content = site.Content.Clone()
	return &out
}

func cloneTemplate(tpl *Template) *Template {
	if tpl == nil {
		return nil
	}
	out := *tpl
	out.Schema = cloneConfig(tpl.Schema)
	return &out
}

func clonePage(page *Page) *Page {
	if page == nil {
		return nil
	}
	out := *page
	out.Content = page.Content.Clone()
	return &out
}

func cloneConfig(cfg *contentdata.Config) *contentdata.Config {
	if cfg == nil {
		return nil
	}
	out := contentdata.NewConfig()
	for _, key := range cfg.Keys() {
		block, _ := cfg.Block(key)
		out.With(key, block)
	}
	return out
}
