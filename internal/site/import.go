package site

import (
	"time"

	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/pages"
)

// WithPage returns a new site with the page tree nodes registered under id and
// composed into the tree. An existing page with the same id is replaced. The
// stored index is dropped, so the result reports a regenerated index.
func WithPage(s *Site, id, title, href string, nodes []*navmodel.PageNode) (*Site, error) {
	reg := pages.NewRegistry()
	for _, p := range s.Pages.Pages() {
		if p.ID == id {
			continue
		}
		if err := reg.Register(p.ID, p.Title, p.Href, p.Nodes); err != nil {
			return nil, err
		}
	}
	if err := reg.Register(id, title, href, nodes); err != nil {
		return nil, err
	}

	only := pages.NewRegistry()
	if err := only.Register(id, title, href, nodes); err != nil {
		return nil, err
	}
	tree, err := navtree.Compose(s.Tree, only)
	if err != nil {
		return nil, err
	}

	return &Site{
		Dir:      s.Dir,
		Tree:     tree,
		Pages:    reg,
		Symbols:  s.Symbols,
		SyncOn:   s.SyncOn,
		SyncOff:  s.SyncOff,
		Missing:  s.Missing,
		LoadedAt: time.Now(),
	}, nil
}

// WithTree returns a new site sharing the registries of s around tree.
func WithTree(s *Site, tree *navtree.Tree) *Site {
	cp := *s
	cp.Tree = tree
	cp.Index = nil
	cp.LoadedAt = time.Now()
	return &cp
}
