package publishcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/publisher"
)

const (
	publishSiteMessageType = "sitecms.publish.site"
	publishPageMessageType = "sitecms.publish.page"
	previewPageMessageType = "sitecms.preview.page"
	cleanSiteMessageType   = "sitecms.publish.clean"
)

// ResultCallback receives the build result of a site publish. It runs
// synchronously inside the handler, also when the build reported errors.
type ResultCallback func(*publisher.BuildResult)

// PublishSiteCommand publishes the whole site, or the listed pages only.
type PublishSiteCommand struct {
	PageIDs        []uuid.UUID    `json:"page_ids,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PublishSiteCommand) Type() string { return publishSiteMessageType }

// Validate rejects nil page identifiers.
func (m PublishSiteCommand) Validate() error {
	for _, id := range m.PageIDs {
		if id == uuid.Nil {
			return validation.Errors{
				"page_ids": validation.NewError("sitecms.publish.site.page_id_invalid", "page_ids must contain valid identifiers"),
			}
		}
	}
	return nil
}

// PublishPageCommand publishes a single page.
type PublishPageCommand struct {
	PageID uuid.UUID `json:"page_id"`
}

// Type implements command.Message.
func (PublishPageCommand) Type() string { return publishPageMessageType }

// Validate ensures a page is targeted.
func (m PublishPageCommand) Validate() error {
	return requirePageID(m.PageID, "sitecms.publish.page.page_id_required")
}

// PreviewPageCommand renders a page for preview and hands the document to Output.
type PreviewPageCommand struct {
	PageID uuid.UUID         `json:"page_id"`
	Output func(html string) `json:"-"`
}

// Type implements command.Message.
func (PreviewPageCommand) Type() string { return previewPageMessageType }

// Validate ensures a page is targeted.
func (m PreviewPageCommand) Validate() error {
	return requirePageID(m.PageID, "sitecms.preview.page.page_id_required")
}

// CleanSiteCommand removes every published artifact.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

func requirePageID(id uuid.UUID, code string) error {
	if id == uuid.Nil {
		return validation.Errors{
			"page_id": validation.NewError(code, "page_id is required"),
		}
	}
	return nil
}
