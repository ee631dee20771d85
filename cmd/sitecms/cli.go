package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	cms "github.com/goliatone/go-sitecms"
	"github.com/goliatone/go-sitecms/internal/paths"
	"github.com/goliatone/go-sitecms/internal/publisher"
)

// CLI is the kong grammar. Global flags apply to every subcommand.
type CLI struct {
	Config   string `short:"c" help:"Runtime configuration file (YAML)."`
	LogLevel string `name:"log-level" help:"Enable logging at the given level (trace, debug, info, warn, error)."`

	Reconcile ReconcileCmd `cmd:"" help:"Reconcile stored content against a block schema and print the result."`
	Publish   PublishCmd   `cmd:"" help:"Publish a project to a static output directory."`
	Preview   PreviewCmd   `cmd:"" help:"Print the preview document of one page."`
}

// runtimeConfig loads --config over the defaults and applies --log-level.
func (c *CLI) runtimeConfig() (cms.Config, error) {
	cfg := cms.DefaultConfig()
	if path := strings.TrimSpace(c.Config); path != "" {
		loaded, err := cms.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if level := strings.TrimSpace(c.LogLevel); level != "" {
		cfg.Features.Logger = true
		cfg.Logging.Level = level
	}
	return cfg, cfg.Validate()
}

// ReconcileCmd implements `sitecms reconcile`.
type ReconcileCmd struct {
	Schema    string `required:"" help:"Block schema JSON file."`
	Content   string `required:"" help:"Content JSON file."`
	SkipEmpty bool   `name:"skip-empty" help:"Leave out blocks that hold no value."`
	Compact   bool   `help:"Print compact JSON."`
}

func (r *ReconcileCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.runtimeConfig()
	if err != nil {
		return err
	}
	module, err := cms.New(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	rawSchema, err := readFile(g, r.Schema)
	if err != nil {
		return err
	}
	schema, err := cms.ParseSchema(rawSchema)
	if err != nil {
		return fmt.Errorf("schema %s: %w", r.Schema, err)
	}
	rawContent, err := readFile(g, r.Content)
	if err != nil {
		return err
	}
	content, err := cms.ParseContent(rawContent)
	if err != nil {
		return fmt.Errorf("content %s: %w", r.Content, err)
	}

	out := module.Reconcile(schema, content)
	if r.SkipEmpty {
		out = cms.WithoutEmptyBlocks(out)
	}

	encoder := json.NewEncoder(g.Stdout)
	if !r.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}

// PublishCmd implements `sitecms publish`.
type PublishCmd struct {
	Project string   `required:"" help:"Project file (YAML)."`
	Out     string   `short:"o" default:"public" help:"Output directory."`
	Page    []string `help:"Publish only these pages (id or route). Repeatable."`
	DryRun  bool     `name:"dry-run" help:"Render without writing artifacts."`
	Clean   bool     `help:"Remove the output directory before a full build."`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.runtimeConfig()
	if err != nil {
		return err
	}
	cfg.Generator.Enabled = true
	cfg.Generator.OutputDir = p.Out
	if p.Clean {
		cfg.Generator.CleanBuild = true
	}

	module, commands, err := openProject(g, cfg, p.Project, cms.WithWriter(publisher.NewFSWriter(g.FS, p.Out)))
	if err != nil {
		return err
	}
	defer module.Close()

	ids := make([]uuid.UUID, 0, len(p.Page))
	for _, ref := range p.Page {
		id, err := resolvePage(g, module, ref)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	return commands.PublishSite.Execute(g.Ctx, cms.PublishSiteCommand{
		PageIDs: ids,
		DryRun:  p.DryRun,
		ResultCallback: func(result *cms.BuildResult) {
			printBuildResult(g, p.Out, result)
		},
	})
}

// PreviewCmd implements `sitecms preview`.
type PreviewCmd struct {
	Project string `required:"" help:"Project file (YAML)."`
	Page    string `required:"" help:"Page id or route."`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.runtimeConfig()
	if err != nil {
		return err
	}
	cfg.Generator.Enabled = true

	module, commands, err := openProject(g, cfg, p.Project, cms.WithWriter(publisher.NoopWriter{}))
	if err != nil {
		return err
	}
	defer module.Close()

	id, err := resolvePage(g, module, p.Page)
	if err != nil {
		return err
	}
	return commands.PreviewPage.Execute(g.Ctx, cms.PreviewPageCommand{
		PageID: id,
		Output: func(html string) {
			fmt.Fprintln(g.Stdout, html)
		},
	})
}

func openProject(g *Global, cfg cms.Config, path string, opts ...cms.Option) (*cms.Module, *cms.CommandSet, error) {
	project, err := LoadProject(g.FS, path)
	if err != nil {
		return nil, nil, err
	}
	module, err := cms.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := project.Seed(g.Ctx, module.Store()); err != nil {
		module.Close()
		return nil, nil, err
	}
	commands, err := cms.RegisterCommands(module, cms.CommandOptions{})
	if err != nil {
		module.Close()
		return nil, nil, err
	}
	return module, commands, nil
}

func resolvePage(g *Global, module *cms.Module, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	page, err := module.Store().GetPageByRoute(g.Ctx, paths.NormalizeRoute(ref))
	if err != nil {
		return uuid.Nil, fmt.Errorf("page %q: %w", ref, err)
	}
	return page.ID, nil
}

func printBuildResult(g *Global, out string, result *cms.BuildResult) {
	if result == nil {
		return
	}
	verb := "published"
	if result.DryRun {
		verb = "rendered (dry run)"
	}
	fmt.Fprintf(g.Stdout, "%d pages %s, %d artifacts written to %s in %s\n",
		result.PagesBuilt, verb, result.ArtifactsWritten, out, result.Duration)
	for _, page := range result.Rendered {
		fmt.Fprintf(g.Stdout, "  %s -> %s\n", page.Route, page.Output)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(g.Stderr, "  error: %v\n", err)
	}
}

func readFile(g *Global, path string) ([]byte, error) {
	raw, err := afero.ReadFile(g.FS, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
