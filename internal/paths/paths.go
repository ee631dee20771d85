// Package paths maps page routes and site identity to artifact locations.
package paths

import (
	"path"
	"strings"
)

const (
	// GeneratedDir holds every stylesheet the publisher emits.
	GeneratedDir = "generated"
	// GlobalDir is the GeneratedDir subfolder for site-wide assets.
	GlobalDir = "global"
	// IndexName is the denormalized name of the root route.
	IndexName = "index"

	stylesFile  = "styles.css"
	sitemapFile = "sitemap.xml"
	htmlExt     = ".html"
)

// NormalizeRoute returns the user-facing form of a route: a leading slash,
// no trailing slash and no trailing "index" segment. The root route is "/".
func NormalizeRoute(route string) string {
	clean := FixIndexRoute(rooted(route))
	if clean == "" {
		return "/"
	}
	return "/" + clean
}

// DenormalizeRoute returns the storage form of a route: no leading or
// trailing slash, with the root route mapped to "index".
func DenormalizeRoute(route string) string {
	if clean := rooted(route); clean != "" {
		return clean
	}
	return IndexName
}

// rooted cleans route against the site root, so ".." never climbs above it,
// and returns it without surrounding slashes.
func rooted(route string) string {
	return strings.Trim(path.Clean("/"+strings.TrimSpace(route)), "/")
}

// FixIndexRoute strips a trailing "index" segment so "index" becomes "" and
// "docs/index" becomes "docs". Leading and trailing slashes are kept.
func FixIndexRoute(route string) string {
	trimmed := strings.TrimRight(route, "/")
	switch {
	case trimmed == IndexName || trimmed == "/"+IndexName:
		return strings.TrimSuffix(trimmed, IndexName)
	case strings.HasSuffix(trimmed, "/"+IndexName):
		return strings.TrimSuffix(trimmed, "/"+IndexName)
	default:
		return route
	}
}

// PageFilePath is the HTML file for a route, e.g. "/blog/post" -> "blog/post.html".
func PageFilePath(route string) string {
	return DenormalizeRoute(route) + htmlExt
}

// PageStylesPath is the stylesheet emitted for a single page.
func PageStylesPath(pageID string) string {
	return PageStylesPathIn(GeneratedDir, pageID)
}

// PageStylesPathIn is PageStylesPath under a custom generated directory.
func PageStylesPathIn(dir, pageID string) string {
	return path.Join(generatedDir(dir), strings.TrimSpace(pageID), stylesFile)
}

// SiteStylesPath is the stylesheet shared by every page.
func SiteStylesPath() string {
	return SiteStylesPathIn(GeneratedDir)
}

// SiteStylesPathIn is SiteStylesPath under a custom generated directory.
func SiteStylesPathIn(dir string) string {
	return path.Join(generatedDir(dir), GlobalDir, stylesFile)
}

// SitemapPath is fixed at the site root.
func SitemapPath() string {
	return sitemapFile
}

// Href turns an artifact path into an absolute site URL path.
func Href(artifact string) string {
	return "/" + strings.TrimLeft(artifact, "/")
}

func generatedDir(dir string) string {
	if dir = strings.Trim(strings.TrimSpace(dir), "/"); dir == "" {
		return GeneratedDir
	}
	return dir
}
