package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docbib/internal/config"
	"git.home.luguber.info/inful/docbib/internal/logfields"
	"git.home.luguber.info/inful/docbib/internal/metrics"
	"git.home.luguber.info/inful/docbib/internal/site"
	"git.home.luguber.info/inful/docbib/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides site.output_dir)"`
	Watch       bool   `short:"w" help:"Rebuild when content, templates or bibliographies change"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file after each build" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, b.Output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	reg := prom.NewRegistry()
	if b.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	gen := site.New(cfg, site.WithRecorder(recorder), site.WithLogger(g.Logger))
	build := func(ctx context.Context) error {
		err := gen.Build(ctx)
		if b.MetricsFile != "" {
			if werr := metrics.WriteTextfile(reg, b.MetricsFile); werr != nil {
				g.Logger.Warn("Failed to write metrics", logfields.Path(b.MetricsFile), logfields.Error(werr))
			}
		}
		return err
	}

	err = build(ctx)
	if !b.Watch {
		return err
	}
	if err != nil {
		g.Logger.Warn("Initial build failed; watching for changes", logfields.Error(err))
	}

	w := watch.New(build, watch.WithIgnore(cfg.Site.OutputDir), watch.WithLogger(g.Logger))
	g.Logger.Info("Watching for changes", logfields.Path(cfg.Site.Root))
	return w.Run(ctx, watchPaths(cfg)...)
}

func watchPaths(cfg *config.Config) []string {
	paths := []string{cfg.Site.ContentDir, cfg.Site.TemplatesDir, cfg.Publications.PluginPath}
	for _, src := range cfg.Publications.Src {
		paths = append(paths, filepath.Clean(src))
	}
	return paths
}
