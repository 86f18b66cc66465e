package commands

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/store"
)

// SnapshotCmd groups the snapshot subcommands.
type SnapshotCmd struct {
	Save SnapshotSaveCmd `cmd:"" help:"Store the current state of the site"`
	List SnapshotListCmd `cmd:"" help:"List stored snapshots of the site"`
}

// SnapshotSaveCmd implements 'snapshot save'.
type SnapshotSaveCmd struct{}

func (c *SnapshotSaveCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	cfg, s, err := root.LoadSite(ctx)
	if err != nil {
		return err
	}
	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore(g, st)

	snap, err := store.NewSnapshot(s)
	if err != nil {
		return err
	}
	id, created, err := st.Save(ctx, snap)
	if err != nil {
		return err
	}
	if created {
		printf(g, "saved snapshot %s (%s)\n", id, snap.Fingerprint)
	} else {
		printf(g, "unchanged, latest snapshot is %s\n", id)
	}
	return nil
}

// SnapshotListCmd implements 'snapshot list'.
type SnapshotListCmd struct {
	Limit int  `help:"Maximum snapshots to list" default:"20"`
	JSON  bool `help:"Print snapshots as JSON"`
}

func (c *SnapshotListCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore(g, st)

	// Snapshots are keyed by the directory a site was loaded from.
	snaps, err := st.List(ctx, filepath.Clean(cfg.Site.Dir), c.Limit)
	if err != nil {
		return err
	}
	if c.JSON {
		if snaps == nil {
			snaps = []*store.Snapshot{}
		}
		return writeJSON(out(g), snaps)
	}
	for _, sn := range snaps {
		printf(g, "%s  %s  %s  nodes=%d entries=%d\n",
			sn.ID, sn.CreatedAt.Format("2006-01-02 15:04:05"), sn.Fingerprint[:min(12, len(sn.Fingerprint))], sn.Stats.Nodes, sn.Stats.Entries)
	}
	return nil
}

func closeStore(g *Global, st store.Store) {
	if err := st.Close(); err != nil {
		g.Logger.Warn("Closing snapshot store failed", logfields.Error(err))
	}
}
