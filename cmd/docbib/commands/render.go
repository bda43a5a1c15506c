package commands

import (
	"git.home.luguber.info/inful/docbib/internal/site"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Template  string `arg:"" help:"Template name, looked up in templates_dir then the built-in set"`
	FilterTag string `name:"filter-tag" help:"Render only publications in this tag group"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, "")
	if err != nil {
		return err
	}
	gen := site.New(cfg, site.WithLogger(g.Logger))
	if err := gen.Init(); err != nil {
		return err
	}
	if r.FilterTag != "" {
		if err := gen.FilterTag(r.FilterTag); err != nil {
			return err
		}
	}
	return gen.Render(g.Out, r.Template, nil)
}
