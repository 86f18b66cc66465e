package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/verify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	SkipIndex bool `help:"Do not check the URLs of the stored index"`
	NoPublish bool `help:"Do not publish broken hrefs even when NATS is configured"`
	JSON      bool `help:"Print the report as JSON"`
}

func (c *VerifyCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	cfg, s, err := root.LoadSite(ctx)
	if err != nil {
		return err
	}

	opts := verify.Options{
		CacheSize: cfg.Verify.CacheSize,
		SkipIndex: cfg.Verify.SkipIndex || c.SkipIndex,
	}
	if cfg.Verify.NATS.Enabled() && !c.NoPublish {
		client, err := verify.NewNATSClient(ctx, cfg.Verify.NATS)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				g.Logger.Warn("Closing NATS connection failed", logfields.Error(err))
			}
		}()
		opts.Publisher = client
	}

	v, err := verify.New(opts)
	if err != nil {
		return err
	}
	report, err := v.Verify(ctx, s)
	if err != nil {
		return err
	}

	if c.JSON {
		if err := writeJSON(out(g), report); err != nil {
			return err
		}
	} else {
		for _, b := range report.Broken {
			where := b.Path.String()
			if b.File != "" {
				where = b.File
			}
			printf(g, "%-8s %-10s %-24s %s\n", b.Source, b.Reason, where, b.Href)
		}
		printf(g, "checked %d hrefs across %d pages, %d broken (%s)\n",
			report.Checked, report.Pages, len(report.Broken), report.Duration)
	}
	if !report.OK() {
		return errors.ValidationError(fmt.Sprintf("%d broken hrefs", len(report.Broken))).Build()
	}
	return nil
}
