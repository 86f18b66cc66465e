package navtree

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// Index is the flat URL index split into loadable chunks. Heads holds the
// NAVTREEINDEX array; for a generated index it is the first URL of each chunk.
type Index struct {
	ChunkSize int                        `json:"chunk_size"`
	Heads     []string                   `json:"heads"`
	Chunks    [][]navmodel.NavIndexEntry `json:"chunks"`
}

// urlLess orders URLs ascending with empty URLs last.
func urlLess(a, b string) bool {
	return a != "" && (b == "" || a < b)
}

// RelatedPagesURL is the related pages index. Doxygen lists it with an empty
// path next to the root page whether or not the tree links it.
const RelatedPagesURL = "pages.html"

// BuildIndex collects the root and every linked node under it in traversal
// order, stable-sorts the entries by URL and partitions them into chunks of
// chunkSize. Paths are relative to the root: the root page and the related
// pages alias get the empty path and a top-level child gets [i].
func (t *Tree) BuildIndex(chunkSize int) (*Index, error) {
	if chunkSize <= 0 {
		return nil, errors.ValidationError(fmt.Sprintf("chunk size must be positive, got %d", chunkSize)).Build()
	}
	var entries []navmodel.NavIndexEntry
	if root := t.Root(); root != nil {
		if root.Href != "" {
			entries = append(entries, navmodel.NavIndexEntry{URL: root.Href, Path: navmodel.Path{}})
		}
		if root.Href != RelatedPagesURL {
			entries = append(entries, navmodel.NavIndexEntry{URL: RelatedPagesURL, Path: navmodel.Path{}})
		}
		_ = navmodel.Walk(root.Children, func(n *navmodel.PageNode, p navmodel.Path) error {
			if n.Href != "" {
				entries = append(entries, navmodel.NavIndexEntry{URL: n.Href, Path: append(navmodel.Path{}, p...)})
			}
			return nil
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return urlLess(entries[i].URL, entries[j].URL)
	})

	ix := &Index{ChunkSize: chunkSize, Heads: []string{}, Chunks: [][]navmodel.NavIndexEntry{}}
	for start := 0; start < len(entries); start += chunkSize {
		end := min(start+chunkSize, len(entries))
		chunk := entries[start:end:end]
		ix.Chunks = append(ix.Chunks, chunk)
		ix.Heads = append(ix.Heads, chunk[0].URL)
	}
	return ix, nil
}

// Entries returns all entries in index order.
func (ix *Index) Entries() []navmodel.NavIndexEntry {
	var out []navmodel.NavIndexEntry
	for _, c := range ix.Chunks {
		out = append(out, c...)
	}
	return out
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	n := 0
	for _, c := range ix.Chunks {
		n += len(c)
	}
	return n
}

// Chunk returns chunk n.
func (ix *Index) Chunk(n int) ([]navmodel.NavIndexEntry, error) {
	if n < 0 || n >= len(ix.Chunks) {
		return nil, errors.NotFoundError(fmt.Sprintf("index chunk %d not found", n)).
			WithContext("chunk", n).
			Build()
	}
	return ix.Chunks[n], nil
}

// Locate returns the index path of url. When url carries an anchor that is not
// indexed, the page without the anchor is tried. Among entries sharing a URL
// the first one addressing a node below the root wins.
func (ix *Index) Locate(url string) (navmodel.Path, error) {
	entries := ix.Entries()
	if p, ok := search(entries, url); ok {
		return p, nil
	}
	if page, anchor := navmodel.SplitHref(url); anchor != "" && page != "" {
		if p, ok := search(entries, page); ok {
			return p, nil
		}
	}
	return nil, errors.NotFoundError(fmt.Sprintf("url %q is not indexed", url)).
		WithContext("url", url).
		Build()
}

func search(entries []navmodel.NavIndexEntry, url string) (navmodel.Path, bool) {
	if url == "" {
		return nil, false
	}
	i := sort.Search(len(entries), func(i int) bool {
		return !urlLess(entries[i].URL, url)
	})
	if i >= len(entries) || entries[i].URL != url {
		return nil, false
	}
	best := entries[i].Path
	for j := i; j < len(entries) && entries[j].URL == url; j++ {
		if len(entries[j].Path) > 0 {
			best = entries[j].Path
			break
		}
	}
	return append(navmodel.Path{}, best...), true
}

// Difference is one way a stored index differs from a regenerated one.
type Difference struct {
	Kind   string `json:"kind"`
	URL    string `json:"url,omitempty"`
	Detail string `json:"detail"`
}

// Diff compares a stored index with a regenerated one. Entries are matched by
// URL and path; chunk boundaries only matter through Heads.
func Diff(stored, fresh *Index) []Difference {
	var out []Difference
	if len(stored.Heads) != len(fresh.Heads) {
		out = append(out, Difference{Kind: "heads", Detail: fmt.Sprintf("%d chunk heads stored, %d expected", len(stored.Heads), len(fresh.Heads))})
	} else {
		for i := range stored.Heads {
			if stored.Heads[i] != fresh.Heads[i] {
				out = append(out, Difference{Kind: "heads", URL: fresh.Heads[i], Detail: fmt.Sprintf("chunk %d head is %q", i, stored.Heads[i])})
			}
		}
	}

	want := make(map[string][]navmodel.Path)
	for _, e := range fresh.Entries() {
		want[e.URL] = append(want[e.URL], e.Path)
	}
	have := make(map[string][]navmodel.Path)
	var order []string
	for _, e := range stored.Entries() {
		if _, ok := have[e.URL]; !ok {
			order = append(order, e.URL)
		}
		have[e.URL] = append(have[e.URL], e.Path)
	}
	for _, url := range order {
		paths, ok := want[url]
		switch {
		case !ok:
			out = append(out, Difference{Kind: "stale", URL: url, Detail: "url no longer in tree"})
		case !containsPath(paths, have[url][0]):
			out = append(out, Difference{Kind: "moved", URL: url, Detail: fmt.Sprintf("stored path %s, tree path %s", have[url][0], paths[0])})
		}
	}
	for _, e := range fresh.Entries() {
		if _, ok := have[e.URL]; !ok {
			out = append(out, Difference{Kind: "missing", URL: e.URL, Detail: "url not in stored index"})
			have[e.URL] = nil
		}
	}
	return out
}

func containsPath(paths []navmodel.Path, p navmodel.Path) bool {
	for _, q := range paths {
		if q.Equal(p) {
			return true
		}
	}
	return false
}
