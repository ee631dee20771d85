// Package documents stores the site, templates and pages the publisher
// reads. It ships a memory store and a bun-backed store.
package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store is the document store contract consumed by the publisher. A store
// holds exactly one site.
type Store interface {
	GetSite(ctx context.Context) (*Site, error)
	SaveSite(ctx context.Context, site *Site) (*Site, error)

	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)
	ListTemplates(ctx context.Context) ([]*Template, error)
	SaveTemplate(ctx context.Context, tpl *Template) (*Template, error)

	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageByRoute(ctx context.Context, route string) (*Page, error)
	ListPages(ctx context.Context) ([]*Page, error)
	SavePage(ctx context.Context, page *Page) (*Page, error)
}

// ErrDocumentRequired is returned when a nil document is saved.
var ErrDocumentRequired = errors.New("documents: document required")

// NotFoundError is returned when a document is missing.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
