package navtree

import (
	"fmt"

	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// Problem kinds reported by Check.
const (
	ProblemCount      = "count_mismatch"
	ProblemLeaves     = "leaf_count"
	ProblemChunks     = "chunk_count"
	ProblemChunkSize  = "chunk_size"
	ProblemHead       = "head_mismatch"
	ProblemUnsorted   = "unsorted"
	ProblemUnresolved = "unresolved_path"
	ProblemHref       = "href_mismatch"
)

// Problem is one structural inconsistency between a tree and an index.
type Problem struct {
	Kind   string        `json:"kind"`
	URL    string        `json:"url,omitempty"`
	Path   navmodel.Path `json:"path,omitempty"`
	Detail string        `json:"detail"`
}

// Report summarizes the consistency of a tree with an index.
type Report struct {
	Nodes        int       `json:"nodes"`
	Leaves       int       `json:"leaves"`
	Linked       int       `json:"linked"`
	LinkedLeaves int       `json:"linked_leaves"`
	Entries      int       `json:"entries"`
	Chunks       int       `json:"chunks"`
	Problems     []Problem `json:"problems"`
}

// OK reports whether no problem was found.
func (r Report) OK() bool { return len(r.Problems) == 0 }

// Check compares ix with the tree. Index paths are relative to the root node.
// The root page and every linked node below it are indexed exactly once, so
// those entries equal the linked node count of the root and are at least its
// linked leaf count; further empty-path entries are root aliases such as the
// related pages index. The head count is ceil(entries/chunk size); every
// entry resolves to a node with the same href; entries and heads are sorted.
func (t *Tree) Check(ix *Index) Report {
	var rooted []*navmodel.PageNode
	if len(t.Nodes) > 0 {
		rooted = t.Nodes[:1]
	}
	r := Report{
		Nodes:        navmodel.Count(t.Nodes),
		Leaves:       navmodel.LeafCount(t.Nodes),
		Linked:       navmodel.LinkedCount(rooted),
		LinkedLeaves: navmodel.LinkedLeafCount(rooted),
		Entries:      ix.Len(),
		Chunks:       len(ix.Chunks),
		Problems:     []Problem{},
	}
	add := func(p Problem) { r.Problems = append(r.Problems, p) }

	entries := ix.Entries()
	indexed, aliases, rootSeen := 0, 0, false
	for _, e := range entries {
		switch {
		case len(e.Path) > 0:
			indexed++
		case !rootSeen && rooted != nil && rooted[0].Href != "" && e.URL == rooted[0].Href:
			indexed++
			rootSeen = true
		default:
			aliases++
		}
	}
	if indexed != r.Linked {
		add(Problem{Kind: ProblemCount, Detail: fmt.Sprintf("index has %d node entries and %d root aliases, tree has %d linked nodes", indexed, aliases, r.Linked)})
	}
	if r.Entries < r.LinkedLeaves {
		add(Problem{Kind: ProblemLeaves, Detail: fmt.Sprintf("index has %d entries, fewer than %d linked leaves", r.Entries, r.LinkedLeaves)})
	}

	if ix.ChunkSize > 0 {
		want := (r.Entries + ix.ChunkSize - 1) / ix.ChunkSize
		if len(ix.Heads) != want {
			add(Problem{Kind: ProblemChunks, Detail: fmt.Sprintf("%d chunk heads, want %d for chunk size %d", len(ix.Heads), want, ix.ChunkSize)})
		}
		for i, c := range ix.Chunks {
			last := i == len(ix.Chunks)-1
			if len(c) > ix.ChunkSize || (!last && len(c) != ix.ChunkSize) || len(c) == 0 {
				add(Problem{Kind: ProblemChunkSize, Detail: fmt.Sprintf("chunk %d has %d entries", i, len(c))})
			}
		}
	}
	for i, c := range ix.Chunks {
		if len(c) == 0 {
			continue
		}
		if i >= len(ix.Heads) || ix.Heads[i] != c[0].URL {
			add(Problem{Kind: ProblemHead, URL: c[0].URL, Detail: fmt.Sprintf("chunk %d does not start with its head", i)})
		}
	}
	for i := 1; i < len(ix.Heads); i++ {
		if urlLess(ix.Heads[i], ix.Heads[i-1]) {
			add(Problem{Kind: ProblemUnsorted, URL: ix.Heads[i], Detail: fmt.Sprintf("head %d sorts before head %d", i, i-1)})
		}
	}

	for i, e := range entries {
		if i > 0 && urlLess(e.URL, entries[i-1].URL) {
			add(Problem{Kind: ProblemUnsorted, URL: e.URL, Path: e.Path, Detail: fmt.Sprintf("entry %d sorts before entry %d", i, i-1)})
		}
		node, err := t.Node(e.Path)
		if err != nil {
			add(Problem{Kind: ProblemUnresolved, URL: e.URL, Path: e.Path, Detail: "path does not address a node"})
			continue
		}
		if len(e.Path) > 0 && node.Href != e.URL {
			add(Problem{Kind: ProblemHref, URL: e.URL, Path: e.Path, Detail: fmt.Sprintf("node href is %q", node.Href)})
		}
	}
	return r
}

// Validation combines node violations with the index report.
type Validation struct {
	Violations []navmodel.Violation `json:"violations"`
	Index      Report               `json:"index"`
}

// OK reports whether the tree and index are both clean.
func (v Validation) OK() bool { return len(v.Violations) == 0 && v.Index.OK() }

// Validate checks every node and the consistency of ix with the tree.
func (t *Tree) Validate(ix *Index) Validation {
	v := Validation{Violations: navmodel.Validate(t.Nodes), Index: t.Check(ix)}
	if v.Violations == nil {
		v.Violations = []navmodel.Violation{}
	}
	return v
}
