// Command sitecms reconciles content, previews pages and publishes static
// sites from a YAML project file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global := &Global{Ctx: ctx, Stdout: os.Stdout, Stderr: os.Stderr, FS: afero.NewOsFs()}
	if err := run(os.Args[1:], global); err != nil {
		fmt.Fprintln(os.Stderr, "sitecms:", err)
		os.Exit(1)
	}
}

// Global carries process-level collaborators into every subcommand.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	FS     afero.Fs
}

func run(args []string, global *Global) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("sitecms"),
		kong.Description("Reconcile, preview and publish block-based sites."),
		kong.UsageOnError(),
		kong.Writers(global.Stdout, global.Stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(global, &cli)
}
