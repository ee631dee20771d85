// Package templates renders Django-syntax template source with pongo2. Each
// Engine owns its compiled-template cache.
package templates

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// ErrUnsupportedData is returned when a render context cannot be turned into a map.
var ErrUnsupportedData = errors.New("templates: context must encode to a JSON object")

var _ interfaces.TemplateRenderer = (*Engine)(nil)

// Engine compiles template sources once and reuses them for later renders.
// It is safe for concurrent use. The cache is additive and keyed by source
// digest, so changed source compiles as a new entry.
type Engine struct {
	set        *pongo2.TemplateSet
	includes   afero.Fs
	setErr     error
	autoescape bool
	caching    bool
	globals    pongo2.Context

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

// Option customises an Engine.
type Option func(*Engine)

// WithAutoescape toggles HTML escaping of `{{ }}` output. Off by default since
// field payloads such as rich text and rendered articles are HTML.
func WithAutoescape(enabled bool) Option {
	return func(e *Engine) {
		e.autoescape = enabled
	}
}

// WithCache toggles the compiled-template cache. On by default.
func WithCache(enabled bool) Option {
	return func(e *Engine) {
		e.caching = enabled
	}
}

// WithGlobals adds values visible to every render. Per-render data wins on
// key collisions.
func WithGlobals(globals map[string]any) Option {
	return func(e *Engine) {
		for key, value := range globals {
			e.globals[key] = value
		}
	}
}

// WithIncludeRoot lets include, import and extends load templates from dir
// on fsys. Names resolve inside dir only. Without it those tags are banned.
func WithIncludeRoot(fsys afero.Fs, dir string) Option {
	return func(e *Engine) {
		if fsys == nil || dir == "" {
			return
		}
		e.includes = afero.NewBasePathFs(fsys, dir)
	}
}

// fileTags read other templates through the set loader.
var fileTags = []string{"include", "import", "extends"}

// NewEngine constructs an Engine with its own pongo2 template set. The ssi
// tag is always banned since it reads files around the loader.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		caching: true,
		globals: pongo2.Context{},
		cache:   map[string]*pongo2.Template{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	banned := []string{"ssi"}
	source := e.includes
	if source == nil {
		source = afero.NewMemMapFs()
		banned = append(banned, fileTags...)
	}
	e.set = pongo2.NewSet("sitecms", pongo2.NewFSLoader(afero.NewIOFS(source)))
	for _, tag := range banned {
		if err := e.set.BanTag(tag); err != nil {
			e.setErr = errors.Join(e.setErr, err)
		}
	}
	return e
}

// RenderString parses source (or reuses its compiled form) and executes it
// against data. data may be a map or any value that encodes to a JSON object.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tpl, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	ctx, err := e.context(data)
	if err != nil {
		return "", err
	}
	rendered, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("templates: render: %w", err)
	}
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, err
		}
	}
	return rendered, nil
}

// Compile returns the compiled template for source.
func (e *Engine) Compile(source string) (*pongo2.Template, error) {
	if !e.caching {
		return e.parse(source)
	}
	key := digest(source)

	e.mu.RLock()
	tpl, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := e.parse(source)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if existing, ok := e.cache[key]; ok {
		tpl = existing
	} else {
		e.cache[key] = tpl
	}
	e.mu.Unlock()
	return tpl, nil
}

// CacheSize reports how many compiled templates the engine holds.
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Engine) parse(source string) (*pongo2.Template, error) {
	if e.setErr != nil {
		return nil, fmt.Errorf("templates: set: %w", e.setErr)
	}
	wrapped := "{% autoescape off %}" + source + "{% endautoescape %}"
	if e.autoescape {
		wrapped = "{% autoescape on %}" + source + "{% endautoescape %}"
	}
	tpl, err := e.set.FromString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	return tpl, nil
}

func (e *Engine) context(data any) (pongo2.Context, error) {
	ctx := make(pongo2.Context, len(e.globals))
	for key, value := range e.globals {
		ctx[key] = value
	}
	switch typed := data.(type) {
	case nil:
		return ctx, nil
	case pongo2.Context:
		return ctx.Update(typed), nil
	case map[string]any:
		return ctx.Update(typed), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("templates: encode context: %w", err)
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, ErrUnsupportedData
	}
	return ctx.Update(decoded), nil
}

func digest(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
