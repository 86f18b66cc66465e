package navmodel

import "errors"

// SkipChildren can be returned by a WalkFunc to skip the node's subtree.
var SkipChildren = errors.New("skip children")

// ErrPathOutOfRange is returned by At for paths that do not address a node.
var ErrPathOutOfRange = errors.New("node path out of range")

// WalkFunc is called for every visited node with the node's path.
type WalkFunc func(node *PageNode, path Path) error

// Walk visits nodes pre-order in declaration order. The path passed to fn must
// not be retained across calls; copy it if needed.
func Walk(nodes []*PageNode, fn WalkFunc) error {
	path := make(Path, 0, 8)
	return walk(nodes, path, fn)
}

func walk(nodes []*PageNode, path Path, fn WalkFunc) error {
	for i, n := range nodes {
		p := append(path, i)
		err := fn(n, p)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(n.Children, p, fn); err != nil {
			return err
		}
	}
	return nil
}

// At resolves a path.
func At(nodes []*PageNode, path Path) (*PageNode, error) {
	if len(path) == 0 {
		return nil, ErrPathOutOfRange
	}
	var node *PageNode
	level := nodes
	for _, idx := range path {
		if idx < 0 || idx >= len(level) {
			return nil, ErrPathOutOfRange
		}
		node = level[idx]
		level = node.Children
	}
	return node, nil
}

// Count returns the number of nodes.
func Count(nodes []*PageNode) int {
	n := 0
	_ = Walk(nodes, func(*PageNode, Path) error { n++; return nil })
	return n
}

// LeafCount returns the number of nodes without children.
func LeafCount(nodes []*PageNode) int {
	n := 0
	_ = Walk(nodes, func(node *PageNode, _ Path) error {
		if len(node.Children) == 0 {
			n++
		}
		return nil
	})
	return n
}

// LinkedCount returns the number of nodes with a non-empty href.
func LinkedCount(nodes []*PageNode) int {
	n := 0
	_ = Walk(nodes, func(node *PageNode, _ Path) error {
		if node.Href != "" {
			n++
		}
		return nil
	})
	return n
}

// LinkedLeafCount returns the number of leaves with a non-empty href.
func LinkedLeafCount(nodes []*PageNode) int {
	n := 0
	_ = Walk(nodes, func(node *PageNode, _ Path) error {
		if len(node.Children) == 0 && node.Href != "" {
			n++
		}
		return nil
	})
	return n
}

// Hrefs returns every non-empty href in traversal order, duplicates included.
func Hrefs(nodes []*PageNode) []string {
	var out []string
	_ = Walk(nodes, func(node *PageNode, _ Path) error {
		if node.Href != "" {
			out = append(out, node.Href)
		}
		return nil
	})
	return out
}

// Depth returns the length of the longest path.
func Depth(nodes []*PageNode) int {
	depth := 0
	_ = Walk(nodes, func(_ *PageNode, p Path) error {
		if len(p) > depth {
			depth = len(p)
		}
		return nil
	})
	return depth
}
