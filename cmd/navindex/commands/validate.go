package commands

import (
	"context"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	JSON bool `help:"Print the full report as JSON"`
}

type validateOutput struct {
	OK          bool                 `json:"ok"`
	Violations  []navmodel.Violation `json:"violations"`
	Index       navtree.Report       `json:"index"`
	Differences []navtree.Difference `json:"differences"`
}

func (c *ValidateCmd) Run(g *Global, root *CLI) error {
	_, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	v, err := s.Validate()
	if err != nil {
		return err
	}
	diffs, err := s.Drift()
	if err != nil {
		return err
	}
	ok := v.OK() && len(diffs) == 0

	if c.JSON {
		if err := writeJSON(out(g), validateOutput{OK: ok, Violations: v.Violations, Index: v.Index, Differences: diffs}); err != nil {
			return err
		}
	} else {
		for _, viol := range v.Violations {
			printf(g, "violation  %s\n", viol)
		}
		for _, p := range v.Index.Problems {
			printf(g, "index      %s: %s\n", p.Kind, p.Detail)
		}
		for _, d := range diffs {
			printf(g, "drift      %s %s: %s\n", d.Kind, d.URL, d.Detail)
		}
		printf(g, "%d nodes, %d index entries in %d chunks\n", v.Index.Nodes, v.Index.Entries, v.Index.Chunks)
	}
	if !ok {
		return errors.ValidationError("navigation data is inconsistent").
			WithContext("violations", len(v.Violations)).
			WithContext("index_problems", len(v.Index.Problems)).
			WithContext("drift", len(diffs)).
			Build()
	}
	if !c.JSON {
		printf(g, "OK\n")
	}
	return nil
}
