package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// TelemetryStatus classifies how a command ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks once a command returns.
// Fields holds the command, operation and message fields; Logger already
// carries them.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry observes command outcomes.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one entry per command: info on success, error otherwise.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	base := EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(base, info.Fields)
		if info.Status == TelemetryStatusSuccess {
			entry.Info("command.completed", "duration_ms", info.Duration.Milliseconds())
			return
		}
		entry.Error("command."+string(info.Status),
			"duration_ms", info.Duration.Milliseconds(),
			"error", info.Error,
		)
	}
}

func statusFor(err error) TelemetryStatus {
	if err == nil {
		return TelemetryStatusSuccess
	}
	if isContextError(err) {
		return TelemetryStatusContextError
	}
	return TelemetryStatusFailed
}
