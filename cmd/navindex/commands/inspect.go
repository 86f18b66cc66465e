package commands

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/site"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	Depth int  `help:"Print the tree down to this depth (0 prints counts only)" default:"2"`
	JSON  bool `help:"Print counts as JSON"`
}

type inspectOutput struct {
	Site    string     `json:"site"`
	Stats   site.Stats `json:"stats"`
	Refs    []string   `json:"refs"`
	Missing []string   `json:"missing,omitempty"`
}

func (c *InspectCmd) Run(g *Global, root *CLI) error {
	_, s, err := root.LoadSite(context.Background())
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(out(g), inspectOutput{Site: s.Dir, Stats: s.Stats(), Refs: s.Tree.Refs(), Missing: s.Missing})
	}
	st := s.Stats()
	printf(g, "Site:      %s\n", s.Dir)
	printf(g, "Nodes:     %d (%d leaves, %d linked, depth %d)\n", st.Nodes, st.Leaves, st.Linked, st.Depth)
	printf(g, "Pages:     %d\n", st.Pages)
	printf(g, "Files:     %d (%d symbols)\n", st.Files, st.Symbols)
	printf(g, "Index:     %d entries in %d chunks\n", st.Entries, st.Chunks)
	if len(s.Missing) > 0 {
		printf(g, "Missing:   %s\n", strings.Join(s.Missing, ", "))
	}
	if c.Depth > 0 {
		printf(g, "\n")
		_ = navmodel.Walk(s.Tree.Nodes, func(n *navmodel.PageNode, p navmodel.Path) error {
			printf(g, "%s%s  %s  [%s]\n", strings.Repeat("  ", len(p)-1), n.Title, n.Href, p)
			if len(p) >= c.Depth {
				return navmodel.SkipChildren
			}
			return nil
		})
	}
	return nil
}
