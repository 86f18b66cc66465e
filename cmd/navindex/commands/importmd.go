package commands

import (
	"context"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/mdnav"
	"git.home.luguber.info/inful/navindex/internal/site"
)

// ImportMdCmd implements the 'import-md' command.
type ImportMdCmd struct {
	Dir    string `arg:"" optional:"" help:"Markdown directory (defaults to markdown.dir)" type:"path"`
	Page   string `help:"Page id to attach the tree as (defaults to markdown.page)"`
	Title  string `help:"Page title (defaults to markdown.title)"`
	Href   string `help:"Tree entry the pages hang under; a new entry is added when none matches" default:"pages.html"`
	DryRun bool   `help:"Show the resulting counts without writing"`
}

func (c *ImportMdCmd) Run(g *Global, root *CLI) error {
	cfg, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	dir := firstNonEmpty(c.Dir, cfg.Markdown.Dir)
	if dir == "" {
		return errors.ConfigError("no markdown directory given and markdown.dir is not set").Build()
	}
	page := firstNonEmpty(c.Page, cfg.Markdown.Page, "related_pages")
	title := firstNonEmpty(c.Title, cfg.Markdown.Title, "Related Pages")

	nodes, err := mdnav.Build(dir)
	if err != nil {
		return err
	}
	merged, err := site.WithPage(s, page, title, c.Href, nodes)
	if err != nil {
		return err
	}

	st := merged.Stats()
	if c.DryRun {
		printf(g, "would attach %d markdown nodes as %q: %d nodes, %d pages\n", len(nodes), page, st.Nodes, st.Pages)
		return nil
	}
	res, err := site.Write(s.Dir, merged, site.OptionsFromConfig(cfg.Site))
	if err != nil {
		return err
	}
	printf(g, "attached %d markdown nodes as %q, wrote %d files, removed %d\n", len(nodes), page, len(res.Files), len(res.Removed))
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
