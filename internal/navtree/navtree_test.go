package navtree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/pages"
)

func skeleton() *Tree {
	return New("DA16200 SDK", "index.html", []*navmodel.PageNode{
		{Title: "Applications", Href: "applications.html", ChildrenRef: "applications"},
		{Title: "Utilities", Href: "utilities.html", ChildrenRef: "utilities"},
		{Title: "Files", Href: "files.html"},
	})
}

func registry(t *testing.T) *pages.Registry {
	t.Helper()
	r := pages.NewRegistry()
	require.NoError(t, r.Register("applications", "Applications", "applications.html", []*navmodel.PageNode{
		{Title: "CoAP Client", Href: "applications.html#coap_client"},
		{Title: "HTTP Client", Href: "applications.html#http_client"},
	}))
	require.NoError(t, r.Register("utilities", "Utilities", "utilities.html", []*navmodel.PageNode{
		{Title: "Ping", Href: "utilities.html#ptim"},
	}))
	require.NoError(t, r.Register("files_dup", "File List", "files.html", []*navmodel.PageNode{
		{Title: "coap_server.h", Href: "coap__server_8h.html"},
	}))
	require.NoError(t, r.Register("related_pages", "Related Pages", "pages.html", []*navmodel.PageNode{
		{Title: "Getting Started", Href: "getting_started.html"},
	}))
	return r
}

func composed(t *testing.T) *Tree {
	t.Helper()
	tree, err := Compose(skeleton(), registry(t))
	require.NoError(t, err)
	return tree
}

func TestComposeAttachesPagesInOrder(t *testing.T) {
	base := skeleton()
	tree, err := Compose(base, registry(t))
	require.NoError(t, err)

	var titles []string
	require.NoError(t, navmodel.Walk(tree.Nodes, func(n *navmodel.PageNode, _ navmodel.Path) error {
		titles = append(titles, n.Title)
		return nil
	}))
	require.Equal(t, []string{
		"DA16200 SDK",
		"Applications", "CoAP Client", "HTTP Client",
		"Utilities", "Ping",
		"Files", "coap_server.h",
		"Related Pages", "Getting Started",
	}, titles)

	files, err := tree.At(navmodel.Path{0, 2})
	require.NoError(t, err)
	require.Equal(t, "files_dup", files.ChildrenRef)
	require.Equal(t, []string{"applications", "utilities", "files_dup", "related_pages"}, tree.Refs())

	// the input tree is not modified
	require.Empty(t, base.Nodes[0].Children[0].Children)

	sub, ok := tree.Subtree("utilities")
	require.True(t, ok)
	require.Equal(t, "Ping", sub[0].Title)
}

func TestComposeDetectsSelfInclusion(t *testing.T) {
	r := pages.NewRegistry()
	require.NoError(t, r.Register("loop", "Loop", "loop.html", []*navmodel.PageNode{
		{Title: "Again", Href: "loop.html#again", ChildrenRef: "loop"},
	}))
	_, err := Compose(New("Root", "index.html", []*navmodel.PageNode{{Title: "Loop", Href: "loop.html", ChildrenRef: "loop"}}), r)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestBuildIndexSortsAndChunks(t *testing.T) {
	tree := composed(t)
	ix, err := tree.BuildIndex(3)
	require.NoError(t, err)

	var urls []string
	for _, e := range ix.Entries() {
		urls = append(urls, e.URL)
	}
	require.Equal(t, []string{
		"applications.html",
		"applications.html#coap_client",
		"applications.html#http_client",
		"coap__server_8h.html",
		"files.html",
		"getting_started.html",
		"index.html",
		"pages.html",
		"pages.html",
		"utilities.html",
		"utilities.html#ptim",
	}, urls)
	require.Equal(t, []string{"applications.html", "coap__server_8h.html", "index.html", "utilities.html"}, ix.Heads)
	require.Len(t, ix.Chunks, 4)
	require.Len(t, ix.Chunks[3], 2)

	chunk, err := ix.Chunk(1)
	require.NoError(t, err)
	require.Equal(t, navmodel.Path{2, 0}, chunk[0].Path)
	_, err = ix.Chunk(4)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	_, err = tree.BuildIndex(0)
	require.Error(t, err)
}

func TestBuildIndexKeepsTraversalOrderForDuplicates(t *testing.T) {
	tree := New("Root", "index.html", []*navmodel.PageNode{
		{Title: "Group", Href: ""},
		{Title: "First", Href: "a.html"},
		{Title: "Second", Href: "a.html"},
	})
	ix, err := tree.BuildIndex(DefaultChunkSize)
	require.NoError(t, err)
	entries := ix.Entries()
	require.Len(t, entries, 4)
	require.Equal(t, navmodel.Path{1}, entries[0].Path)
	require.Equal(t, navmodel.Path{2}, entries[1].Path)
	require.Equal(t, "index.html", entries[2].URL)
	require.Equal(t, "pages.html", entries[3].URL)
}

func TestBuildIndexUsesRootRelativePaths(t *testing.T) {
	tree := New("SDK", "index.html", []*navmodel.PageNode{
		{Title: "Applications", Href: "applications.html"},
		{Title: "Utilities", Href: "utilities.html", Children: []*navmodel.PageNode{
			{Title: "Ping", Href: "utilities.html#ptim"},
		}},
	})
	ix, err := tree.BuildIndex(DefaultChunkSize)
	require.NoError(t, err)

	got := map[string]string{}
	for _, e := range ix.Entries() {
		got[e.URL] = fmt.Sprint([]int(e.Path))
	}
	require.Equal(t, map[string]string{
		"index.html":          "[]",
		"pages.html":          "[]",
		"applications.html":   "[0]",
		"utilities.html":      "[1]",
		"utilities.html#ptim": "[1 0]",
	}, got)
	require.True(t, tree.Check(ix).OK())

	root, err := tree.Node(navmodel.Path{})
	require.NoError(t, err)
	require.Equal(t, "SDK", root.Title)
	ping, err := tree.Node(navmodel.Path{1, 0})
	require.NoError(t, err)
	require.Equal(t, "Ping", ping.Title)
}

func TestCheckAcceptsDoxygenIndex(t *testing.T) {
	tree := New("SDK", "index.html", []*navmodel.PageNode{
		{Title: "Applications", Href: "applications.html"},
		{Title: "Utilities", Href: "utilities.html"},
	})
	ix := &Index{
		ChunkSize: DefaultChunkSize,
		Heads:     []string{"applications.html"},
		Chunks: [][]navmodel.NavIndexEntry{{
			{URL: "applications.html", Path: navmodel.Path{0}},
			{URL: "index.html", Path: navmodel.Path{}},
			{URL: "pages.html", Path: navmodel.Path{}},
			{URL: "utilities.html", Path: navmodel.Path{1}},
		}},
	}
	report := tree.Check(ix)
	require.True(t, report.OK(), "%+v", report.Problems)
	require.Equal(t, 3, report.Linked)

	p, err := ix.Locate("utilities.html")
	require.NoError(t, err)
	require.Equal(t, navmodel.Path{1}, p)

	// absolute paths are one level too deep
	ix.Chunks[0][0].Path = navmodel.Path{0, 0}
	require.False(t, tree.Check(ix).OK())
}

func TestIndexLengthMatchesLinkedNodes(t *testing.T) {
	tree := composed(t)
	for _, size := range []int{1, 2, 3, 7, DefaultChunkSize} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			ix, err := tree.BuildIndex(size)
			require.NoError(t, err)
			// plus the pages.html alias
			require.Equal(t, navmodel.LinkedCount(tree.Nodes)+1, ix.Len())
			require.GreaterOrEqual(t, ix.Len(), navmodel.LinkedLeafCount(tree.Nodes))
			require.Equal(t, (ix.Len()+size-1)/size, len(ix.Heads))
			report := tree.Check(ix)
			require.True(t, report.OK(), "%+v", report.Problems)
		})
	}
}

func TestLocate(t *testing.T) {
	tree := composed(t)
	ix, err := tree.BuildIndex(4)
	require.NoError(t, err)

	p, err := ix.Locate("utilities.html#ptim")
	require.NoError(t, err)
	require.Equal(t, navmodel.Path{1, 0}, p)

	p, err = ix.Locate("files.html#unknown_anchor")
	require.NoError(t, err)
	require.Equal(t, navmodel.Path{2}, p)

	p, err = ix.Locate("index.html")
	require.NoError(t, err)
	require.Empty(t, p)

	// the linked node wins over the empty-path alias
	p, err = ix.Locate("pages.html")
	require.NoError(t, err)
	require.Equal(t, navmodel.Path{3}, p)

	_, err = ix.Locate("missing.html")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	_, err = ix.Locate("")
	require.Error(t, err)
}

func TestCheckReportsProblems(t *testing.T) {
	tree := composed(t)
	ix, err := tree.BuildIndex(4)
	require.NoError(t, err)

	ix.Chunks[0][1].Path = navmodel.Path{0, 9}
	ix.Chunks[1] = ix.Chunks[1][:2]
	ix.Heads[2] = "aaa.html"

	kinds := map[string]bool{}
	for _, p := range tree.Check(ix).Problems {
		kinds[p.Kind] = true
	}
	require.True(t, kinds[ProblemUnresolved])
	require.True(t, kinds[ProblemCount])
	require.True(t, kinds[ProblemChunkSize])
	require.True(t, kinds[ProblemHead])
	require.True(t, kinds[ProblemUnsorted])
}

func TestValidateCombinesViolations(t *testing.T) {
	tree := New("Root", "index.html", []*navmodel.PageNode{
		{Title: "Deprecated List", Href: ""},
		{Title: "Bad", Href: "page two.html"},
	})
	ix, err := tree.BuildIndex(DefaultChunkSize)
	require.NoError(t, err)
	v := tree.Validate(ix)
	require.False(t, v.OK())
	require.Len(t, v.Violations, 2)
	require.Equal(t, navmodel.ReasonEmptyHref, v.Violations[0].Reason)
	require.True(t, v.Index.OK())
}

func TestDiff(t *testing.T) {
	tree := composed(t)
	stored, err := tree.BuildIndex(4)
	require.NoError(t, err)
	fresh, err := tree.BuildIndex(4)
	require.NoError(t, err)
	require.Empty(t, Diff(stored, fresh))

	moved := composed(t)
	moved.Nodes[0].Children[0].Children[0].Href = "applications.html#coap_server"
	changed, err := moved.BuildIndex(4)
	require.NoError(t, err)

	kinds := map[string]string{}
	for _, d := range Diff(stored, changed) {
		kinds[d.URL] = d.Kind
	}
	require.Equal(t, "stale", kinds["applications.html#coap_client"])
	require.Equal(t, "missing", kinds["applications.html#coap_server"])
}
