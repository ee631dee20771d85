package templates

import (
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func TestRenderStringResolvesNestedKeys(t *testing.T) {
	engine := NewEngine()
	data := map[string]any{
		"thisPage": map[string]any{"title": "Home", "article": "<p>hi</p>"},
		"site":     map[string]any{"url": "https://example.com"},
	}

	got, err := engine.RenderString(`<h1>{{ thisPage.title }}</h1>{{ thisPage.article }}<a href="{{ site.url }}/">x</a>`, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<h1>Home</h1><p>hi</p><a href="https://example.com/">x</a>`
	if got != want {
		t.Fatalf("unexpected output\nwant %s\ngot  %s", want, got)
	}
}

func TestRenderStringAutoescape(t *testing.T) {
	data := map[string]any{"value": "<b>x</b>"}

	raw, err := NewEngine().RenderString("{{ value }}", data)
	if err != nil || raw != "<b>x</b>" {
		t.Fatalf("expected raw output, got %q (%v)", raw, err)
	}
	escaped, err := NewEngine(WithAutoescape(true)).RenderString("{{ value }}", data)
	if err != nil || escaped != "&lt;b&gt;x&lt;/b&gt;" {
		t.Fatalf("expected escaped output, got %q (%v)", escaped, err)
	}
}

func TestRenderStringTruthiness(t *testing.T) {
	engine := NewEngine()
	source := `{% if value %}yes{% else %}no{% endif %}`
	tests := []struct {
		value any
		want  string
	}{
		{"", "no"},
		{0, "no"},
		{0.0, "no"},
		{nil, "no"},
		{[]any{}, "no"},
		{"text", "yes"},
		{1, "yes"},
	}
	for _, tt := range tests {
		got, err := engine.RenderString(source, map[string]any{"value": tt.value})
		if err != nil {
			t.Fatalf("render %v: %v", tt.value, err)
		}
		if got != tt.want {
			t.Fatalf("truthiness of %#v = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestRenderStringStructContext(t *testing.T) {
	type page struct {
		TemplateID string `json:"templateId"`
	}
	got, err := NewEngine().RenderString("{{ thisPage.templateId }}", struct {
		ThisPage page `json:"thisPage"`
	}{ThisPage: page{TemplateID: "tpl"}})
	if err != nil || got != "tpl" {
		t.Fatalf("expected struct context to use json keys, got %q (%v)", got, err)
	}
}

func TestRenderStringWritesToOutputs(t *testing.T) {
	var buf strings.Builder
	got, err := NewEngine().RenderString("a{{ b }}", map[string]any{"b": "c"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ac" || buf.String() != "ac" {
		t.Fatalf("unexpected outputs %q / %q", got, buf.String())
	}
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	engine := NewEngine()
	if _, err := engine.RenderString("{% if thisPage.title %}unterminated", nil); err == nil {
		t.Fatal("expected parse error")
	}
	if engine.CacheSize() != 0 {
		t.Fatal("expected failed compile to stay out of the cache")
	}
}

func TestCacheIsScopedToEngine(t *testing.T) {
	first := NewEngine()
	second := NewEngine()
	if _, err := first.RenderString("{{ a }}", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := first.RenderString("{{ a }}", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if first.CacheSize() != 1 {
		t.Fatalf("expected one cached template, got %d", first.CacheSize())
	}
	if second.CacheSize() != 0 {
		t.Fatal("expected caches not to be shared between engines")
	}

	uncached := NewEngine(WithCache(false))
	if _, err := uncached.RenderString("{{ a }}", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if uncached.CacheSize() != 0 {
		t.Fatal("expected disabled cache to stay empty")
	}
}

func TestGlobalsAreOverriddenByData(t *testing.T) {
	engine := NewEngine(WithGlobals(map[string]any{"name": "global", "other": "kept"}))
	got, err := engine.RenderString("{{ name }}-{{ other }}", map[string]any{"name": "local"})
	if err != nil || got != "local-kept" {
		t.Fatalf("unexpected output %q (%v)", got, err)
	}
}

func TestConcurrentRenders(t *testing.T) {
	engine := NewEngine()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.RenderString("{{ v }}", map[string]any{"v": "x"}); err != nil {
				t.Errorf("render: %v", err)
			}
		}()
	}
	wg.Wait()
	if engine.CacheSize() != 1 {
		t.Fatalf("expected single cache entry, got %d", engine.CacheSize())
	}
}

func TestFileTagsAreBannedWithoutIncludeRoot(t *testing.T) {
	engine := NewEngine()
	for _, source := range []string{
		`{% include "/etc/hostname" %}`,
		`{% ssi "/etc/passwd" %}`,
		`{% extends "/etc/hostname" %}`,
		`{% import "/etc/hostname" card %}`,
	} {
		if out, err := engine.RenderString(source, nil); err == nil {
			t.Fatalf("expected %s to be rejected, got %q", source, out)
		}
	}
}

func TestIncludeRootServesPartials(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/themes/partials/card.html", []byte("<b>{{ title }}</b>"), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	if err := afero.WriteFile(fsys, "/secret.txt", []byte("hidden"), 0o644); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	engine := NewEngine(WithIncludeRoot(fsys, "/themes"))

	got, err := engine.RenderString(`{% include "partials/card.html" %}`, map[string]any{"title": "Card"})
	if err != nil || got != "<b>Card</b>" {
		t.Fatalf("unexpected include output %q (%v)", got, err)
	}
	for _, source := range []string{
		`{% include "../secret.txt" %}`,
		`{% include "/secret.txt" %}`,
		`{% ssi "partials/card.html" %}`,
	} {
		if out, err := engine.RenderString(source, nil); err == nil {
			t.Fatalf("expected %s to be rejected, got %q", source, out)
		}
	}
}
