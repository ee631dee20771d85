package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	cms "github.com/goliatone/go-sitecms"
)

// Project is the YAML description of a site fed to publish and preview.
// Paths ending in _file are resolved against the project file's directory.
type Project struct {
	Site      ProjectSite       `yaml:"site"`
	Templates []ProjectTemplate `yaml:"templates"`
	Pages     []ProjectPage     `yaml:"pages"`

	dir string
	fs  afero.Fs
}

// ProjectSite describes the single site of a project.
type ProjectSite struct {
	Domain          string    `yaml:"domain"`
	URL             string    `yaml:"url"`
	Schema          yaml.Node `yaml:"schema"`
	SchemaFile      string    `yaml:"schema_file"`
	Content         yaml.Node `yaml:"content"`
	Styles          string    `yaml:"styles"`
	StylesFile      string    `yaml:"styles_file"`
	Scripts         string    `yaml:"scripts"`
	BodyScripts     string    `yaml:"body_scripts"`
	BodyScriptsFile string    `yaml:"body_scripts_file"`
}

// ProjectTemplate describes a page template.
type ProjectTemplate struct {
	Name       string    `yaml:"name"`
	Slug       string    `yaml:"slug"`
	HTML       string    `yaml:"html"`
	HTMLFile   string    `yaml:"html_file"`
	Styles     string    `yaml:"styles"`
	StylesFile string    `yaml:"styles_file"`
	Schema     yaml.Node `yaml:"schema"`
	SchemaFile string    `yaml:"schema_file"`
}

// ProjectPage describes a page. Template names a template slug.
type ProjectPage struct {
	Title              string    `yaml:"title"`
	Slug               string    `yaml:"slug"`
	Route              string    `yaml:"route"`
	Template           string    `yaml:"template"`
	Markdown           string    `yaml:"markdown"`
	MarkdownFile       string    `yaml:"markdown_file"`
	Content            yaml.Node `yaml:"content"`
	ExcludeFromSitemap bool      `yaml:"exclude_from_sitemap"`
}

// LoadProject reads and decodes a project file from fs.
func LoadProject(fs afero.Fs, path string) (*Project, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}
	project := &Project{}
	if err := yaml.Unmarshal(raw, project); err != nil {
		return nil, fmt.Errorf("project: parse %s: %w", path, err)
	}
	project.dir = filepath.Dir(path)
	project.fs = fs
	return project, nil
}

// Seed saves the site, templates and pages into store.
func (p *Project) Seed(ctx context.Context, store cms.Store) error {
	site, err := p.site()
	if err != nil {
		return err
	}
	saved, err := store.SaveSite(ctx, site)
	if err != nil {
		return fmt.Errorf("project: save site: %w", err)
	}

	templates := make(map[string]*cms.Template, len(p.Templates))
	for _, entry := range p.Templates {
		tpl, err := p.template(entry)
		if err != nil {
			return err
		}
		tpl.SiteID = saved.ID
		stored, err := store.SaveTemplate(ctx, tpl)
		if err != nil {
			return fmt.Errorf("project: save template %q: %w", entry.Slug, err)
		}
		templates[stored.Slug] = stored
	}

	for _, entry := range p.Pages {
		tpl, ok := templates[strings.TrimSpace(entry.Template)]
		if !ok {
			return fmt.Errorf("project: page %q references unknown template %q", entry.Route, entry.Template)
		}
		page, err := p.page(entry)
		if err != nil {
			return err
		}
		page.SiteID = saved.ID
		page.TemplateID = tpl.ID
		if _, err := store.SavePage(ctx, page); err != nil {
			return fmt.Errorf("project: save page %q: %w", entry.Route, err)
		}
	}
	return nil
}

func (p *Project) site() (*cms.Site, error) {
	s := p.Site
	schema, err := p.schema(&s.Schema, s.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("project: site schema: %w", err)
	}
	content, err := p.content(&s.Content)
	if err != nil {
		return nil, fmt.Errorf("project: site content: %w", err)
	}
	styles, err := p.text(s.Styles, s.StylesFile)
	if err != nil {
		return nil, err
	}
	bodyScripts, err := p.text(s.BodyScripts, s.BodyScriptsFile)
	if err != nil {
		return nil, err
	}
	return &cms.Site{
		Domain:      s.Domain,
		URL:         s.URL,
		Schema:      schema,
		Content:     content,
		Styles:      styles,
		Scripts:     s.Scripts,
		BodyScripts: bodyScripts,
	}, nil
}

func (p *Project) template(entry ProjectTemplate) (*cms.Template, error) {
	html, err := p.text(entry.HTML, entry.HTMLFile)
	if err != nil {
		return nil, err
	}
	styles, err := p.text(entry.Styles, entry.StylesFile)
	if err != nil {
		return nil, err
	}
	schema, err := p.schema(&entry.Schema, entry.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("project: template %q schema: %w", entry.Slug, err)
	}
	return &cms.Template{
		Name:   entry.Name,
		Slug:   entry.Slug,
		HTML:   html,
		Styles: styles,
		Schema: schema,
	}, nil
}

func (p *Project) page(entry ProjectPage) (*cms.Page, error) {
	markdown, err := p.text(entry.Markdown, entry.MarkdownFile)
	if err != nil {
		return nil, err
	}
	content, err := p.content(&entry.Content)
	if err != nil {
		return nil, fmt.Errorf("project: page %q content: %w", entry.Route, err)
	}
	return &cms.Page{
		Title:              entry.Title,
		Slug:               entry.Slug,
		Route:              entry.Route,
		Markdown:           markdown,
		Content:            content,
		ExcludeFromSitemap: entry.ExcludeFromSitemap,
	}, nil
}

// schema accepts an inline YAML mapping, an inline JSON string or a JSON file.
func (p *Project) schema(node *yaml.Node, file string) (*cms.Schema, error) {
	raw, err := p.jsonFrom(node, file)
	if err != nil || raw == nil {
		return nil, err
	}
	return cms.ParseSchema(raw)
}

func (p *Project) content(node *yaml.Node) (cms.ContentData, error) {
	raw, err := p.jsonFrom(node, "")
	if err != nil || raw == nil {
		return nil, err
	}
	return cms.ParseContent(raw)
}

func (p *Project) jsonFrom(node *yaml.Node, file string) ([]byte, error) {
	if file = strings.TrimSpace(file); file != "" {
		return afero.ReadFile(p.fs, p.resolve(file))
	}
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		return []byte(node.Value), nil
	}
	return nodeJSON(node)
}

func (p *Project) text(inline, file string) (string, error) {
	if file = strings.TrimSpace(file); file == "" {
		return inline, nil
	}
	raw, err := afero.ReadFile(p.fs, p.resolve(file))
	if err != nil {
		return "", fmt.Errorf("project: read %s: %w", file, err)
	}
	return string(raw), nil
}

func (p *Project) resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(p.dir, file)
}

// nodeJSON encodes a YAML node as JSON keeping mapping key order.
func nodeJSON(node *yaml.Node) ([]byte, error) {
	var buf strings.Builder
	if err := writeNodeJSON(&buf, node); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func writeNodeJSON(buf *strings.Builder, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNodeJSON(buf, node.Content[0])
	case yaml.AliasNode:
		return writeNodeJSON(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	}
}
