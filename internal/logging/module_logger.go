package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

const (
	rootModule      = "sitecms"
	renderModule    = "sitecms.render"
	reconcileModule = "sitecms.reconcile"
	publishModule   = "sitecms.publish"
	storeModule     = "sitecms.store"
	// CommandsModule prefixes per-command module loggers.
	CommandsModule = "sitecms.commands"
)

const (
	fieldPageID   = "page_id"
	fieldRoute    = "route"
	fieldKind     = "render_kind"
	fieldArtifact = "artifact_path"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// RenderLogger returns the logger namespace reserved for the render engine.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// ReconcileLogger returns the logger namespace reserved for content reconciliation.
func ReconcileLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reconcileModule)
}

// PublishLogger returns the logger namespace reserved for the publisher.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// StoreLogger returns the logger namespace reserved for document stores.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, CommandsModule)
}

// WithPageContext enriches logger with page id, route, render kind and
// artifact path. Empty values are skipped.
func WithPageContext(logger interfaces.Logger, pageID, route, kind, artifact string) interfaces.Logger {
	fields := map[string]any{}
	for key, value := range map[string]string{
		fieldPageID:   pageID,
		fieldRoute:    route,
		fieldKind:     kind,
		fieldArtifact: artifact,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	return WithFields(logger, fields)
}

// WithFields returns logger with fields attached. nil loggers and empty
// maps pass through.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	return logger.WithFields(maps.Clone(fields))
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
