package publishcmd

import (
	"context"

	"github.com/goliatone/go-sitecms/internal/commands"
	"github.com/goliatone/go-sitecms/internal/publisher"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
	"github.com/google/uuid"
)

// PublishSiteHandler runs site builds through the shared command handler.
type PublishSiteHandler struct {
	inner *commands.Handler[PublishSiteCommand]
}

// NewPublishSiteHandler constructs a handler wired to the provided publisher.
func NewPublishSiteHandler(service publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishSiteCommand]) *PublishSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PublishSiteCommand) error {
		if service == nil {
			return publisher.ErrServiceDisabled
		}
		options := publisher.BuildOptions{DryRun: msg.DryRun}
		if len(msg.PageIDs) > 0 {
			options.PageIDs = append([]uuid.UUID(nil), msg.PageIDs...)
		}
		result, err := service.Build(ctx, options)
		if msg.ResultCallback != nil && result != nil {
			msg.ResultCallback(result)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishSiteCommand]{
		commands.WithLogger[PublishSiteCommand](baseLogger),
		commands.WithOperation[PublishSiteCommand]("publish.site"),
		commands.WithMessageFields(func(msg PublishSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.PageIDs) > 0 {
				fields["page_ids"] = len(msg.PageIDs)
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishSiteCommand].
func (h *PublishSiteHandler) Execute(ctx context.Context, msg PublishSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishPageHandler publishes one page.
type PublishPageHandler struct {
	inner *commands.Handler[PublishPageCommand]
}

// NewPublishPageHandler constructs a single page publish handler.
func NewPublishPageHandler(service publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishPageCommand]) *PublishPageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PublishPageCommand) error {
		if service == nil {
			return publisher.ErrServiceDisabled
		}
		return service.BuildPage(ctx, msg.PageID)
	}

	handlerOpts := []commands.HandlerOption[PublishPageCommand]{
		commands.WithLogger[PublishPageCommand](baseLogger),
		commands.WithOperation[PublishPageCommand]("publish.page"),
		commands.WithMessageFields(func(msg PublishPageCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishPageHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishPageCommand].
func (h *PublishPageHandler) Execute(ctx context.Context, msg PublishPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PreviewPageHandler renders previews.
type PreviewPageHandler struct {
	inner *commands.Handler[PreviewPageCommand]
}

// NewPreviewPageHandler constructs a preview handler. The rendered document
// goes to the command's Output callback.
func NewPreviewPageHandler(service publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PreviewPageCommand]) *PreviewPageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PreviewPageCommand) error {
		if service == nil {
			return publisher.ErrServiceDisabled
		}
		html, err := service.Preview(ctx, msg.PageID)
		if err != nil {
			return err
		}
		if msg.Output != nil {
			msg.Output(html)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PreviewPageCommand]{
		commands.WithLogger[PreviewPageCommand](baseLogger),
		commands.WithOperation[PreviewPageCommand]("preview.page"),
		commands.WithMessageFields(func(msg PreviewPageCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PreviewPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PreviewPageHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PreviewPageCommand].
func (h *PreviewPageHandler) Execute(ctx context.Context, msg PreviewPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears published artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans publisher output.
func NewCleanSiteHandler(service publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return publisher.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("publish.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
