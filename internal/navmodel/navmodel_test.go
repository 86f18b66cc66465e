package navmodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTree() []*PageNode {
	return []*PageNode{
		{Title: "Applications", Href: "applications.html", Children: []*PageNode{
			{Title: "CoAP", Href: "applications.html#coap", Children: []*PageNode{
				{Title: "CoAP Server", Href: "coap__server_8h.html"},
			}},
			{Title: "MQTT", Href: "applications.html#mqtt"},
			{Title: "OTA Update", Href: "applications.html#ota"},
		}},
		{Title: "Utilities", Href: "utilities.html", Children: []*PageNode{
			{Title: "PTIM", Href: "utilities.html#ptim"},
			{Title: "mDNS", Href: "utilities.html#mdns"},
		}},
	}
}

func TestWalkPreservesDeclarationOrder(t *testing.T) {
	var titles []string
	var paths []string
	err := Walk(sampleTree(), func(n *PageNode, p Path) error {
		titles = append(titles, n.Title)
		paths = append(paths, p.String())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Applications", "CoAP", "CoAP Server", "MQTT", "OTA Update", "Utilities", "PTIM", "mDNS"}, titles)
	require.Equal(t, []string{"0", "0.0", "0.0.0", "0.1", "0.2", "1", "1.0", "1.1"}, paths)
}

func TestWalkIsStableAcrossRuns(t *testing.T) {
	tree := sampleTree()
	first := Hrefs(tree)
	for range 5 {
		require.Equal(t, first, Hrefs(tree))
	}
}

func TestWalkSkipAndStop(t *testing.T) {
	var seen []string
	err := Walk(sampleTree(), func(n *PageNode, _ Path) error {
		seen = append(seen, n.Title)
		if n.Title == "Applications" {
			return SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Applications", "Utilities", "PTIM", "mDNS"}, seen)

	stop := errors.New("stop")
	err = Walk(sampleTree(), func(n *PageNode, _ Path) error {
		if n.Title == "MQTT" {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
}

func TestCounts(t *testing.T) {
	tree := sampleTree()
	require.Equal(t, 8, Count(tree))
	require.Equal(t, 5, LeafCount(tree))
	require.Equal(t, 8, LinkedCount(tree))
	require.Equal(t, 3, Depth(tree))

	tree[1].Children[0].Href = ""
	require.Equal(t, 7, LinkedCount(tree))
	require.Equal(t, 4, LinkedLeafCount(tree))
}

func TestAt(t *testing.T) {
	tree := sampleTree()
	n, err := At(tree, Path{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, "CoAP Server", n.Title)

	for _, p := range []Path{{}, {2}, {0, 5}, {0, 0, 0, 0}, {-1}} {
		_, err := At(tree, p)
		require.ErrorIs(t, err, ErrPathOutOfRange, "path %v", p)
	}
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("0.12.3")
	require.NoError(t, err)
	require.True(t, p.Equal(Path{0, 12, 3}))

	root, err := ParsePath("")
	require.NoError(t, err)
	require.Empty(t, root)

	_, err = ParsePath("0.x")
	var pe *PathError
	require.ErrorAs(t, err, &pe)
}

func TestValidateHref(t *testing.T) {
	cases := map[string]string{
		"applications.html":        "",
		"applications.html#coap":   "",
		"#coap":                    "",
		"coap__server_8h.html#a1b": "",
		"":                         ReasonEmptyHref,
		"applications.html#":       ReasonEmptyAnchor,
		"d5/d1a/structfoo.html":    "",
		"d5/d1a/structfoo.html#a1": "",
		"../applications.html":     ReasonOutsideSite,
		"d5/../../x.html":          ReasonOutsideSite,
		"/usr/share/doc/x.html":    ReasonOutsideSite,
		`d5\structfoo.html`:        ReasonOutsideSite,
		"https://example.com/x":    ReasonExternalScheme,
		"mailto:dev@example.com":   ReasonExternalScheme,
		"applications.md":          ReasonNotHTML,
		"two words.html":           ReasonWhitespace,
	}
	for href, want := range cases {
		require.Equal(t, want, ValidateHref(href), "href %q", href)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	tree := sampleTree()
	tree[0].Children[1].Href = ""
	tree[1].Children[1].Title = " "
	tree[1].Children[1].Href = "utilities.html#"

	violations := Validate(tree)
	require.Len(t, violations, 3)
	require.Equal(t, "0.1", violations[0].Path.String())
	require.Equal(t, ReasonEmptyHref, violations[0].Reason)
	require.Equal(t, "1.1", violations[1].Path.String())
	require.Equal(t, ReasonEmptyAnchor, violations[1].Reason)
	require.Equal(t, "empty title", violations[2].Reason)
}

func TestSymbolConversionAndClone(t *testing.T) {
	entries := []SymbolEntry{
		{Name: "HTTPC_DEF_TIMEOUT", Href: "user__http__client_8h.html#a1"},
		{Name: "http_client_conf", Href: "structhttp__client__conf.html", Children: []SymbolEntry{
			{Name: "sni", Href: "structhttp__client__conf.html#a2"},
		}},
	}
	nodes := ToPageNodes(entries)
	require.Equal(t, entries, FromPageNodes(nodes))

	clone := Clone(nodes)
	clone[1].Children[0].Title = "changed"
	require.Equal(t, "sni", nodes[1].Children[0].Title)
	require.Empty(t, ValidateSymbols(entries))
}
