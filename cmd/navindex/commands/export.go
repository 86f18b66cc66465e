package commands

import (
	"context"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/site"
	"git.home.luguber.info/inful/navindex/internal/store"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Out    string `short:"o" help:"Directory to write the scripts to" type:"path"`
	Format string `help:"Output format" enum:"scripts,json" default:"scripts"`
}

func (c *ExportCmd) Run(g *Global, root *CLI) error {
	cfg, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	switch c.Format {
	case "json":
		snap, err := store.NewSnapshot(s)
		if err != nil {
			return err
		}
		payload, err := snap.Decode()
		if err != nil {
			return err
		}
		return writeJSON(out(g), struct {
			Fingerprint string     `json:"fingerprint"`
			Stats       site.Stats `json:"stats"`
			*store.Payload
		}{snap.Fingerprint, snap.Stats, payload})
	default:
		if c.Out == "" {
			return errors.ValidationError("--out is required for script export").Build()
		}
		opts := site.OptionsFromConfig(cfg.Site)
		if s.Index != nil {
			// Keep the layout of the stored index.
			opts.ChunkSize = 0
		}
		res, err := site.Write(c.Out, s, opts)
		if err != nil {
			return err
		}
		printf(g, "exported %d files to %s\n", len(res.Files), c.Out)
		return nil
	}
}
