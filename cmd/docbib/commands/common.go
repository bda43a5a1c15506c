// Package commands implements the docbib subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docbib/internal/config"
)

// Global is shared state handed to every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// NewGlobal returns the default global state writing to stdout.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Out: os.Stdout}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docbib.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the site: populate publications, render content and direct templates"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
	List   ListCmd   `cmd:"" help:"List the configured publications and their tag groups"`
	Render RenderCmd `cmd:"" help:"Render one template with the populated context to stdout"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration named by the global flag. A non-empty
// output overrides the configured output directory.
func loadConfig(root *CLI, output string) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if output != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return nil, err
		}
		cfg.Site.OutputDir = abs
	}
	return cfg, nil
}
