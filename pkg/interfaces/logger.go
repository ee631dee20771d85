// Package interfaces holds the contracts the site CMS runtime accepts from
// host applications: logging, markdown conversion and template rendering.
package interfaces

import "context"

// Logger is the structured, leveled logger used across the runtime. Its
// method set matches go-logger's glog loggers, so the gologger adapter is a
// thin wrapper.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	// WithFields returns a child logger that adds fields to every entry.
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by module name ("sitecms.render",
// "sitecms.publish", ...). A nil result means the module is silenced.
type LoggerProvider interface {
	GetLogger(name string) Logger
}
