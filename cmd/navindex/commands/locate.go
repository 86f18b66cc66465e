package commands

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/navindex/internal/server/handlers"
)

// LocateCmd implements the 'locate' command.
type LocateCmd struct {
	URL string `arg:"" help:"Page URL, optionally with #anchor"`
}

func (c *LocateCmd) Run(g *Global, root *CLI) error {
	_, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	ix, err := s.CurrentIndex()
	if err != nil {
		return err
	}
	path, err := ix.Locate(c.URL)
	if err != nil {
		return err
	}
	trail, err := handlers.Trail(s, path)
	if err != nil {
		return err
	}
	printf(g, "%s  %s\n", path, strings.Join(trail, " > "))
	return nil
}
