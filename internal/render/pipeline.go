package render

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-sitecms/internal/markdown"
	"github.com/goliatone/go-sitecms/internal/paths"
	"github.com/goliatone/go-sitecms/internal/sitecontext"
)

const (
	stageArticle     = "article"
	stageFrontMatter = "front matter"
	stageMarkdown    = "markdown"
	stagePageStyles  = "page styles"
	stageSiteStyles  = "site styles"
	stageSiteScripts = "site scripts"
	stageBodyScripts = "site body scripts"
	stageDocument    = "document"
	stageContext     = "context"
	stageSitemap     = "sitemap"
)

// runPreview executes the preview steps in order. Later steps see the
// article produced by the first one through the returned page context.
func (e *Engine) runPreview(ctx context.Context, req PreviewRequest) (string, error) {
	page, err := e.article(ctx, req.Markdown, req.Page, req.Site)
	if err != nil {
		return "", err
	}
	pageData, siteData, err := templateData(page, req.Site)
	if err != nil {
		return "", err
	}

	pageStyles, err := e.renderOptional(ctx, stagePageStyles, req.Styles, map[string]any{"thisPage": pageData, "site": siteData})
	if err != nil {
		return "", err
	}
	siteOnly := map[string]any{"site": siteData}
	siteStyles, err := e.renderOptional(ctx, stageSiteStyles, req.SiteStyles, siteOnly)
	if err != nil {
		return "", err
	}
	siteScripts, err := e.renderOptional(ctx, stageSiteScripts, req.SiteScripts, siteOnly)
	if err != nil {
		return "", err
	}
	bodyScripts, err := e.renderOptional(ctx, stageBodyScripts, req.SiteBodyScripts, siteOnly)
	if err != nil {
		return "", err
	}

	return e.renderDocument(ctx, req.HTML, map[string]any{
		"thisPage":    pageData,
		"site":        siteData,
		"styles":      composeStyleTag(siteStyles, pageStyles),
		"headScripts": e.previewHead(req.Site) + siteScripts,
		"bodyScripts": bodyScripts,
	})
}

func (e *Engine) runPublishPage(ctx context.Context, req PublishRequest) (PageArtifacts, error) {
	page, err := e.article(ctx, req.Markdown, req.Page, req.Site)
	if err != nil {
		return PageArtifacts{}, err
	}
	pageData, siteData, err := templateData(page, req.Site)
	if err != nil {
		return PageArtifacts{}, err
	}

	pageStyles, err := e.renderOptional(ctx, stagePageStyles, req.Styles, map[string]any{"thisPage": pageData, "site": siteData})
	if err != nil {
		return PageArtifacts{}, err
	}
	stylesPath := paths.PageStylesPathIn(e.generatedDir, page.ID)

	body, err := e.renderDocument(ctx, req.HTML, map[string]any{
		"thisPage":    pageData,
		"site":        siteData,
		"styles":      e.stylesheetLinks(req.SiteStyles, stylesPath),
		"headScripts": req.SiteScripts,
		"bodyScripts": req.SiteBodyScripts,
	})
	if err != nil {
		return PageArtifacts{}, err
	}

	return PageArtifacts{
		HTML:   Artifact{Path: paths.PageFilePath(page.Route), ContentType: contentTypeHTML, Body: body},
		Styles: Artifact{Path: stylesPath, ContentType: contentTypeCSS, Body: pageStyles},
		Page:   page,
	}, nil
}

func (e *Engine) runPublishSite(ctx context.Context, req SiteRequest) (SiteArtifacts, error) {
	siteData, err := req.Site.TemplateData()
	if err != nil {
		return SiteArtifacts{}, stageError(stageContext, err)
	}
	siteOnly := map[string]any{"site": siteData}

	styles, err := e.renderOptional(ctx, stageSiteStyles, req.SiteStyles, siteOnly)
	if err != nil {
		return SiteArtifacts{}, err
	}
	scripts, err := e.renderOptional(ctx, stageSiteScripts, req.SiteScripts, siteOnly)
	if err != nil {
		return SiteArtifacts{}, err
	}
	bodyScripts, err := e.renderOptional(ctx, stageBodyScripts, req.SiteBodyScripts, siteOnly)
	if err != nil {
		return SiteArtifacts{}, err
	}
	if err := ctx.Err(); err != nil {
		return SiteArtifacts{}, err
	}
	sitemap, err := BuildSitemap(req.Site)
	if err != nil {
		return SiteArtifacts{}, stageError(stageSitemap, err)
	}

	return SiteArtifacts{
		Styles:      Artifact{Path: paths.SiteStylesPathIn(e.generatedDir), ContentType: contentTypeCSS, Body: styles},
		Sitemap:     Artifact{Path: paths.SitemapPath(), ContentType: contentTypeXML, Body: sitemap},
		Scripts:     scripts,
		BodyScripts: bodyScripts,
	}, nil
}

// article renders markdown to HTML, then through the template engine, and
// returns a copy of page carrying the result. Front matter becomes
// thisPage.meta for the article template and every later step.
func (e *Engine) article(ctx context.Context, source string, page sitecontext.PageContext, site sitecontext.SiteContext) (sitecontext.PageContext, error) {
	if err := ctx.Err(); err != nil {
		return page, err
	}
	if strings.TrimSpace(source) == "" {
		return page.WithArticle(""), nil
	}

	meta, body, err := markdown.SplitFrontMatter([]byte(source))
	if err != nil {
		return page, stageError(stageFrontMatter, err)
	}
	if len(meta) > 0 {
		page = page.WithMeta(meta)
	}

	converted, err := e.markdown.Parse(body)
	if err != nil {
		return page, stageError(stageMarkdown, err)
	}

	pageData, siteData, err := templateData(page, site)
	if err != nil {
		return page, err
	}
	rendered, err := e.renderOptional(ctx, stageArticle, string(converted), map[string]any{"thisPage": pageData, "site": siteData})
	if err != nil {
		return page, err
	}
	return page.WithArticle(rendered), nil
}

func (e *Engine) renderOptional(ctx context.Context, stage, source string, data map[string]any) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := e.templates.RenderString(source, data)
	if err != nil {
		return "", stageError(stage, err)
	}
	return out, nil
}

func (e *Engine) renderDocument(ctx context.Context, source string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := e.templates.RenderString(source, data)
	if err != nil {
		return "", stageError(stageDocument, err)
	}
	return out, nil
}

func templateData(page sitecontext.PageContext, site sitecontext.SiteContext) (map[string]any, map[string]any, error) {
	pageData, err := page.TemplateData()
	if err != nil {
		return nil, nil, stageError(stageContext, err)
	}
	siteData, err := site.TemplateData()
	if err != nil {
		return nil, nil, stageError(stageContext, err)
	}
	return pageData, siteData, nil
}

// composeStyleTag places site styles before page styles so page rules win.
func composeStyleTag(siteStyles, pageStyles string) string {
	var b strings.Builder
	b.WriteString("<style>")
	if siteStyles != "" {
		b.WriteString(siteStyles)
		b.WriteString("\n")
	}
	b.WriteString(pageStyles)
	b.WriteString("</style>")
	return b.String()
}

// stylesheetLinks links the site stylesheet (when the site has one) ahead of
// the page stylesheet.
func (e *Engine) stylesheetLinks(siteStyles, pageStylesPath string) string {
	var b strings.Builder
	if strings.TrimSpace(siteStyles) != "" {
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, html.EscapeString(e.SiteStylesHref()))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, html.EscapeString(paths.Href(pageStylesPath)))
	return b.String()
}

func (e *Engine) previewHead(site sitecontext.SiteContext) string {
	var b strings.Builder
	base := e.previewBaseURL
	if base == "" {
		base = strings.TrimRight(site.URL, "/")
	}
	if base != "" {
		fmt.Fprintf(&b, `<base href="%s/">`, html.EscapeString(base))
	}
	if e.previewBaseTarget != "" {
		fmt.Fprintf(&b, `<base target="%s">`, html.EscapeString(e.previewBaseTarget))
	}
	return b.String()
}

func errorDocument(err error) string {
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>" +
		`<p style="color: red;">` + html.EscapeString(err.Error()) + "</p>" +
		"</body></html>"
}
