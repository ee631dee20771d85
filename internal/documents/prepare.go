package documents

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/identity"
	"github.com/goliatone/go-sitecms/internal/paths"
)

// IDs are derived from stable keys when missing so re-importing a project
// updates documents in place.

func prepareSite(site *Site, now time.Time) {
	site.Domain = strings.TrimSpace(site.Domain)
	site.URL = strings.TrimRight(strings.TrimSpace(site.URL), "/")
	if site.ID == uuid.Nil {
		site.ID = identity.SiteUUID(site.Domain)
	}
	stamp(&site.CreatedAt, &site.UpdatedAt, now)
}

func prepareTemplate(tpl *Template, now time.Time) {
	tpl.Slug = strings.TrimSpace(tpl.Slug)
	if tpl.ID == uuid.Nil {
		tpl.ID = identity.TemplateUUID(tpl.SiteID, tpl.Slug)
	}
	stamp(&tpl.CreatedAt, &tpl.UpdatedAt, now)
}

func preparePage(page *Page, now time.Time) {
	page.Route = paths.NormalizeRoute(page.Route)
	if page.ID == uuid.Nil {
		page.ID = identity.PageUUID(page.SiteID, page.Route)
	}
	stamp(&page.CreatedAt, &page.UpdatedAt, now)
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
