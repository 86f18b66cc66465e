// Package navtree composes the top-level navigation tree (NAVTREE) and builds
// its flat, chunked URL index (NAVTREEINDEX).
package navtree

import (
	"fmt"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/pages"
)

// DefaultChunkSize is the number of index entries Doxygen writes per
// navtreeindex script.
const DefaultChunkSize = 250

// Tree is the NAVTREE value: an ordered list of top-level nodes, normally a
// single project root.
type Tree struct {
	Nodes []*navmodel.PageNode `json:"nodes"`
}

// New returns a tree with one root node holding children.
func New(title, href string, children []*navmodel.PageNode) *Tree {
	return &Tree{Nodes: []*navmodel.PageNode{{Title: title, Href: href, Children: children}}}
}

// FromNodes wraps an already decoded NAVTREE value.
func FromNodes(nodes []*navmodel.PageNode) *Tree {
	return &Tree{Nodes: nodes}
}

// Root returns the first top-level node, or nil for an empty tree.
func (t *Tree) Root() *navmodel.PageNode {
	if len(t.Nodes) == 0 {
		return nil
	}
	return t.Nodes[0]
}

// At resolves a node path.
func (t *Tree) At(path navmodel.Path) (*navmodel.PageNode, error) {
	node, err := navmodel.At(t.Nodes, path)
	if err != nil {
		return nil, errors.NotFoundError(fmt.Sprintf("no node at path %s", path)).
			WithContext("path", path.String()).
			Build()
	}
	return node, nil
}

// TreePath converts an index path, which is relative to the root node the way
// navtree.js reads it, into a path over Nodes.
func TreePath(indexPath navmodel.Path) navmodel.Path {
	out := make(navmodel.Path, 0, len(indexPath)+1)
	out = append(out, 0)
	return append(out, indexPath...)
}

// Node resolves an index path. The empty path is the root.
func (t *Tree) Node(indexPath navmodel.Path) (*navmodel.PageNode, error) {
	return t.At(TreePath(indexPath))
}

// Compose returns a copy of root with every registered page attached. A page
// is attached under the node whose children reference names it; a page no
// reference names is attached under the first childless node linking to the
// page's href, and otherwise appended to the first root node. Pages attached
// this way get a children reference so a split write reproduces them.
func Compose(root *Tree, registry *pages.Registry) (*Tree, error) {
	out := &Tree{Nodes: navmodel.Clone(root.Nodes)}
	used := make(map[string]bool)

	var attach func(nodes []*navmodel.PageNode, stack map[string]bool) error
	attach = func(nodes []*navmodel.PageNode, stack map[string]bool) error {
		for _, n := range nodes {
			if n.ChildrenRef != "" && registry.Has(n.ChildrenRef) {
				if stack[n.ChildrenRef] {
					return errors.ValidationError(fmt.Sprintf("page %q includes itself", n.ChildrenRef)).
						WithContext("page", n.ChildrenRef).
						Build()
				}
				page, _ := registry.Get(n.ChildrenRef)
				n.Children = navmodel.Clone(page.Nodes)
				used[n.ChildrenRef] = true
				stack[n.ChildrenRef] = true
				err := attach(n.Children, stack)
				delete(stack, n.ChildrenRef)
				if err != nil {
					return err
				}
				continue
			}
			if err := attach(n.Children, stack); err != nil {
				return err
			}
		}
		return nil
	}
	if err := attach(out.Nodes, map[string]bool{}); err != nil {
		return nil, err
	}

	for _, page := range registry.Pages() {
		if used[page.ID] {
			continue
		}
		target := findChildless(out.Nodes, page.Href)
		if target == nil {
			if len(out.Nodes) == 0 {
				return nil, errors.ValidationError("cannot attach pages to an empty tree").Build()
			}
			target = &navmodel.PageNode{Title: page.Title, Href: page.Href}
			out.Nodes[0].Children = append(out.Nodes[0].Children, target)
		}
		target.ChildrenRef = page.ID
		target.Children = navmodel.Clone(page.Nodes)
		used[page.ID] = true
		if err := attach(target.Children, map[string]bool{page.ID: true}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func findChildless(nodes []*navmodel.PageNode, href string) *navmodel.PageNode {
	if href == "" {
		return nil
	}
	var found *navmodel.PageNode
	_ = navmodel.Walk(nodes, func(n *navmodel.PageNode, _ navmodel.Path) error {
		if found != nil {
			return navmodel.SkipChildren
		}
		if n.Href == href && n.IsLeaf() {
			found = n
		}
		return nil
	})
	return found
}

// Refs returns the children references in traversal order, each once.
func (t *Tree) Refs() []string {
	seen := make(map[string]bool)
	var out []string
	_ = navmodel.Walk(t.Nodes, func(n *navmodel.PageNode, _ navmodel.Path) error {
		if n.ChildrenRef != "" && !seen[n.ChildrenRef] {
			seen[n.ChildrenRef] = true
			out = append(out, n.ChildrenRef)
		}
		return nil
	})
	return out
}

// Subtree returns the children attached under the first node referencing ref.
func (t *Tree) Subtree(ref string) ([]*navmodel.PageNode, bool) {
	var out []*navmodel.PageNode
	found := false
	_ = navmodel.Walk(t.Nodes, func(n *navmodel.PageNode, _ navmodel.Path) error {
		if found {
			return navmodel.SkipChildren
		}
		if n.ChildrenRef == ref {
			out, found = n.Children, true
			return navmodel.SkipChildren
		}
		return nil
	})
	return out, found
}
