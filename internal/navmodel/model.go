package navmodel

import (
	"strconv"
	"strings"
)

// PageNode is one entry of a documentation tree.
type PageNode struct {
	Title string `json:"title"`
	// Href is a page filename ("applications.html"), a page anchor
	// ("applications.html#coap") or an in-page anchor ("#coap").
	Href     string      `json:"href"`
	Children []*PageNode `json:"children,omitempty"`
	// ChildrenRef names the script that holds this node's children when the
	// tree is split across files. It is kept after the children are resolved.
	ChildrenRef string `json:"children_ref,omitempty"`
}

// IsLeaf reports whether the node has neither children nor a children reference.
func (n *PageNode) IsLeaf() bool {
	return len(n.Children) == 0 && n.ChildrenRef == ""
}

// SymbolEntry is one member of a per-file listing (function, macro, struct, enumerator).
type SymbolEntry struct {
	Name     string        `json:"name"`
	Href     string        `json:"href"`
	Children []SymbolEntry `json:"children,omitempty"`
}

// NavIndexEntry is one URL of the flat navigation index and the tree path it resolves to.
type NavIndexEntry struct {
	URL  string `json:"url"`
	Path Path   `json:"path"`
}

// Path addresses a node by child positions starting at the root list.
type Path []int

// String renders a path as dot separated indices ("0.3.1").
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two paths address the same node.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Child returns a new path extended by index i.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// ParsePath parses the dot separated form produced by String. The empty string is the root.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	out := make(Path, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, &PathError{Input: s}
		}
		out[i] = v
	}
	return out, nil
}

// PathError reports a malformed path string.
type PathError struct {
	Input string
}

func (e *PathError) Error() string { return "malformed node path " + strconv.Quote(e.Input) }

// ToPageNodes converts a symbol listing to the tree shape.
func ToPageNodes(entries []SymbolEntry) []*PageNode {
	out := make([]*PageNode, 0, len(entries))
	for _, e := range entries {
		out = append(out, &PageNode{Title: e.Name, Href: e.Href, Children: ToPageNodes(e.Children)})
	}
	return out
}

// FromPageNodes converts a tree to a symbol listing.
func FromPageNodes(nodes []*PageNode) []SymbolEntry {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]SymbolEntry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, SymbolEntry{Name: n.Title, Href: n.Href, Children: FromPageNodes(n.Children)})
	}
	return out
}

// Clone returns a deep copy of nodes.
func Clone(nodes []*PageNode) []*PageNode {
	if nodes == nil {
		return nil
	}
	out := make([]*PageNode, len(nodes))
	for i, n := range nodes {
		cp := *n
		cp.Children = Clone(n.Children)
		out[i] = &cp
	}
	return out
}
