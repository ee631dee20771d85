package commands

import (
	"strings"

	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// CommandLogger scopes provider to "sitecms.commands.<group>", e.g.
// "sitecms.commands.publish". An empty group maps to "core".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.ToLower(strings.TrimSpace(group))
	if group == "" {
		group = "core"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, logging.CommandsModule+"."+group),
		map[string]any{"command_group": group},
	)
}
