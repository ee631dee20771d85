package render

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecms/internal/sitecontext"
)

// PageRequest carries the template sources and contexts for one page render.
type PageRequest struct {
	Markdown        string                  `json:"markdown"`
	HTML            string                  `json:"html"`
	Styles          string                  `json:"styles"`
	SiteStyles      string                  `json:"siteStyles,omitempty"`
	SiteScripts     string                  `json:"siteScripts,omitempty"`
	SiteBodyScripts string                  `json:"siteBodyScripts,omitempty"`
	Page            sitecontext.PageContext `json:"thisPage"`
	Site            sitecontext.SiteContext `json:"site"`
}

// PreviewRequest is the input of Engine.Preview.
type PreviewRequest = PageRequest

// PublishRequest is the input of Engine.PublishPage. SiteScripts and
// SiteBodyScripts are embedded as supplied.
type PublishRequest = PageRequest

// Validate checks the inputs every page render needs.
func (r PageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.HTML, validation.By(notBlank("html template is required"))),
	)
}

// ValidateForPublish additionally requires a page id for the stylesheet path.
func (r PageRequest) ValidateForPublish() error {
	if err := r.Validate(); err != nil {
		return err
	}
	errs := validation.Errors{}
	if strings.TrimSpace(r.Page.ID) == "" {
		errs["thisPage.id"] = validation.NewError("render_page_id_required", "page id is required")
	}
	if strings.TrimSpace(r.Page.Route) == "" {
		errs["thisPage.route"] = validation.NewError("render_page_route_required", "page route is required")
	}
	return errs.Filter()
}

// SiteRequest carries the site-wide sources rendered once per publish.
type SiteRequest struct {
	Site            sitecontext.SiteContext `json:"site"`
	SiteStyles      string                  `json:"siteStyles,omitempty"`
	SiteScripts     string                  `json:"siteScripts,omitempty"`
	SiteBodyScripts string                  `json:"siteBodyScripts,omitempty"`
}

// Validate checks the site URL used for sitemap locations.
func (r SiteRequest) Validate() error {
	if strings.TrimSpace(r.Site.URL) == "" && len(r.Site.Pages) > 0 {
		return validation.Errors{
			"site.url": validation.NewError("render_site_url_required", "site url is required to build the sitemap"),
		}
	}
	return nil
}

// Artifact is one generated file.
type Artifact struct {
	Path        string
	ContentType string
	Body        string
}

// PageArtifacts is the output of PublishPage. Page carries the rendered article.
type PageArtifacts struct {
	HTML   Artifact
	Styles Artifact
	Page   sitecontext.PageContext
}

// Files lists the artifacts in write order.
func (a PageArtifacts) Files() []Artifact {
	return []Artifact{a.Styles, a.HTML}
}

// SiteArtifacts is the output of PublishSite. Scripts and BodyScripts are
// rendered once and fed to every PublishPage call.
type SiteArtifacts struct {
	Styles      Artifact
	Sitemap     Artifact
	Scripts     string
	BodyScripts string
}

// Files lists the artifacts in write order.
func (a SiteArtifacts) Files() []Artifact {
	return []Artifact{a.Styles, a.Sitemap}
}

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeCSS  = "text/css; charset=utf-8"
	contentTypeXML  = "application/xml; charset=utf-8"
)

func notBlank(message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("render_required", message)
		}
		return nil
	}
}
