package commands

import (
	"context"

	"git.home.luguber.info/inful/navindex/internal/symbols"
)

// SymbolsCmd implements the 'symbols' command.
type SymbolsCmd struct {
	Prefix string `arg:"" optional:"" help:"Case-insensitive name prefix"`
	File   string `help:"List the members of this file id instead"`
	Limit  int    `help:"Maximum results (0 for all)" default:"0"`
	JSON   bool   `help:"Print results as JSON"`
}

func (c *SymbolsCmd) Run(g *Global, root *CLI) error {
	_, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	if c.File != "" {
		members, err := s.Symbols.Members(c.File)
		if err != nil {
			return err
		}
		if c.JSON {
			return writeJSON(out(g), members)
		}
		printf(g, "%s\n", symbols.FileName(c.File))
		for _, m := range members {
			printf(g, "  %-40s %s\n", m.Name, m.Href)
		}
		return nil
	}

	found := s.Symbols.Search(c.Prefix, c.Limit)
	if c.JSON {
		if found == nil {
			found = []symbols.Symbol{}
		}
		return writeJSON(out(g), found)
	}
	for _, sym := range found {
		for _, t := range sym.Targets {
			printf(g, "%-40s %-30s %s\n", sym.Name, symbols.FileName(t.File), t.Href)
		}
	}
	return nil
}
