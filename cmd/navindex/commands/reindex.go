package commands

import (
	"context"

	"git.home.luguber.info/inful/navindex/internal/site"
)

// ReindexCmd implements the 'reindex' command.
type ReindexCmd struct {
	ChunkSize int  `help:"Entries per navtreeindex script (0 keeps the stored size, else site.chunk_size)"`
	DryRun    bool `name:"dry-run" help:"Report what would change without writing"`
}

func (c *ReindexCmd) Run(g *Global, root *CLI) error {
	cfg, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	opts := site.OptionsFromConfig(cfg.Site)
	switch {
	case c.ChunkSize > 0:
		opts.ChunkSize = c.ChunkSize
	case s.Index != nil:
		opts.ChunkSize = 0
	}

	if c.DryRun {
		fresh, err := s.Regenerate(opts.ChunkSize)
		if err != nil {
			return err
		}
		diffs, err := s.Drift()
		if err != nil {
			return err
		}
		for _, d := range diffs {
			printf(g, "%s %s: %s\n", d.Kind, d.URL, d.Detail)
		}
		printf(g, "would write %d entries in %d chunks\n", fresh.Len(), len(fresh.Chunks))
		return nil
	}

	res, err := site.Write(s.Dir, s, opts)
	if err != nil {
		return err
	}
	for _, name := range res.Removed {
		printf(g, "removed %s\n", name)
	}
	printf(g, "wrote %d files, %d entries in %d chunks\n", len(res.Files), res.Index.Len(), len(res.Index.Chunks))
	return nil
}
