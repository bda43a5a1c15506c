package commands

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/docbib/internal/publications"
	"git.home.luguber.info/inful/docbib/internal/site"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Tag string `help:"Only list entries in this tag group"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, "")
	if err != nil {
		return err
	}
	gen := site.New(cfg, site.WithLogger(g.Logger))
	if err := gen.Init(); err != nil {
		return err
	}
	if l.Tag != "" {
		if err := gen.FilterTag(l.Tag); err != nil {
			return err
		}
	}

	ctx := gen.Context()
	groups := groupsByKey(ctx.Lists())

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tTYPE\tYEAR\tGROUPS")
	for _, e := range ctx.Publications() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Type, e.Year, strings.Join(groups[e.Key], ", "))
	}
	return tw.Flush()
}

// groupsByKey inverts the tag groups into sorted group names per entry key.
func groupsByKey(lists publications.Groups) map[string][]string {
	out := map[string][]string{}
	for tag, entries := range lists {
		for _, e := range entries {
			out[e.Key] = append(out[e.Key], tag)
		}
	}
	for key := range out {
		slices.Sort(out[key])
	}
	return out
}
