package cms

import (
	"errors"

	"github.com/goliatone/go-sitecms/internal/commands"
	publishcmd "github.com/goliatone/go-sitecms/internal/commands/publish"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Command messages accepted by the publish handlers.
type (
	PublishSiteCommand = publishcmd.PublishSiteCommand
	PublishPageCommand = publishcmd.PublishPageCommand
	PreviewPageCommand = publishcmd.PreviewPageCommand
	CleanSiteCommand   = publishcmd.CleanSiteCommand
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CommandOptions configures RegisterCommands.
type CommandOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
}

// CommandSet holds the publish handlers built for a module.
type CommandSet struct {
	PublishSite   *publishcmd.PublishSiteHandler
	PublishPage   *publishcmd.PublishPageHandler
	PreviewPage   *publishcmd.PreviewPageHandler
	CleanSite     *publishcmd.CleanSiteHandler
	Subscriptions []CommandSubscription
}

// Handlers lists every handler in registration order.
func (s *CommandSet) Handlers() []any {
	if s == nil {
		return nil
	}
	return []any{s.PublishSite, s.PublishPage, s.PreviewPage, s.CleanSite}
}

// RegisterCommands builds the publish command handlers for m and registers
// them with the optional registry and dispatcher. Registration errors are
// joined; the handlers are returned regardless.
func RegisterCommands(m *Module, opts CommandOptions) (*CommandSet, error) {
	if m == nil || m.container == nil {
		return &CommandSet{}, nil
	}
	provider := opts.LoggerProvider
	if provider == nil {
		provider = m.container.LoggerProvider()
	}
	logger := commands.CommandLogger(provider, "publish")
	service := m.Publisher()

	set := &CommandSet{
		PublishSite: publishcmd.NewPublishSiteHandler(service, logger),
		PublishPage: publishcmd.NewPublishPageHandler(service, logger),
		PreviewPage: publishcmd.NewPreviewPageHandler(service, logger),
		CleanSite:   publishcmd.NewCleanSiteHandler(service, logger),
	}

	var errs error
	for _, handler := range set.Handlers() {
		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				set.Subscriptions = append(set.Subscriptions, subscription)
			}
		}
	}
	return set, errs
}
