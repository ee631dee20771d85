package render

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-sitecms/internal/paths"
	"github.com/goliatone/go-sitecms/internal/sitecontext"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap lists every page not excluded from the sitemap, sorted by
// location. Routes are normalized before joining them to the site url.
func BuildSitemap(site sitecontext.SiteContext) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(site.URL), "/")
	set := urlSet{Xmlns: sitemapNamespace, URLs: []sitemapURL{}}
	for _, page := range site.Pages {
		if page.ExcludeFromSitemap {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + paths.NormalizeRoute(page.Route),
			LastMod: strings.TrimSpace(page.Updated),
		})
	}
	sort.Slice(set.URLs, func(i, j int) bool {
		return set.URLs[i].Loc < set.URLs[j].Loc
	})

	raw, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode sitemap: %w", err)
	}
	return xml.Header + string(raw) + "\n", nil
}
