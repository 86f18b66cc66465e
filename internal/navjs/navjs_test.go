package navjs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

const navtreedata = `/*
 @licstart  The following is the entire license notice for the JavaScript code in this file.

 Copyright (C) 1997-2020 by Dimitri van Heesch
 @licend  The above is the entire license notice for the JavaScript code in this file
*/
var NAVTREE =
[
  [ "DA16200 SDK", "index.html", [
    [ "Applications", "applications.html", "applications" ],
    [ "Utilities", "utilities.html", "utilities" ],
    [ "Files", "files.html", [
      [ "File List", "files.html", "files_dup" ],
      [ "Globals", "globals.html", null ]
    ] ]
  ] ]
];

var NAVTREEINDEX =
[
"annotated.html",
"utilities.html#ptim"
];

var SYNCONMSG = 'click to disable panel synchronisation';
var SYNCOFFMSG = 'click to enable panel synchronisation';
`

func TestParseNavtreeData(t *testing.T) {
	script, err := Parse([]byte(navtreedata))
	require.NoError(t, err)
	require.Equal(t, []string{"NAVTREE", "NAVTREEINDEX", "SYNCONMSG", "SYNCOFFMSG"}, script.Names())

	raw, ok := script.Lookup("NAVTREE")
	require.True(t, ok)
	tree, err := DecodeTree(raw)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	root := tree[0]
	require.Equal(t, "DA16200 SDK", root.Title)
	require.Equal(t, "index.html", root.Href)
	require.Len(t, root.Children, 3)
	require.Equal(t, "applications", root.Children[0].ChildrenRef)
	require.Empty(t, root.Children[0].Children)
	require.Equal(t, "Globals", root.Children[2].Children[1].Title)
	require.True(t, root.Children[2].Children[1].IsLeaf())

	raw, _ = script.Lookup("NAVTREEINDEX")
	heads, err := DecodeStringList(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"annotated.html", "utilities.html#ptim"}, heads)

	raw, _ = script.Lookup("SYNCONMSG")
	msg, err := DecodeString(raw)
	require.NoError(t, err)
	require.Equal(t, "click to disable panel synchronisation", msg)
}

func TestDecodeTreeNullHrefAndExtraMembers(t *testing.T) {
	tree, err := DecodeTree([]byte(`[
    [ "Deprecated List", null, null ],
    [ "coap_server_start", "coap__server_8h.html#a1f", null, "extra" ],
    [ "Escaped \"title\"", "a.html#b", [] ]
]`))
	require.NoError(t, err)
	require.Len(t, tree, 3)
	require.Empty(t, tree[0].Href)
	require.Equal(t, "coap__server_8h.html#a1f", tree[1].Href)
	require.Equal(t, `Escaped "title"`, tree[2].Title)
	require.Empty(t, tree[2].Children)
}

func TestDecodeTreeErrors(t *testing.T) {
	for name, raw := range map[string]string{
		"not array":        `{"a":1}`,
		"node not array":   `[ "title" ]`,
		"too short":        `[ [ "only title" ] ]`,
		"numeric title":    `[ [ 1, "a.html", null ] ]`,
		"bad children":     `[ [ "a", "a.html", 5 ] ]`,
		"nested malformed": `[ [ "a", "a.html", [ [ "b" ] ] ] ]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTree([]byte(raw))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategorySyntax), "got %v", err)
		})
	}
}

func TestDecodeIndexChunkKeepsOrder(t *testing.T) {
	script, err := Parse([]byte(`var NAVTREEINDEX0 =
{
"utilities.html#ptim":[0,1,0],
"annotated.html":[2,0],
"applications.html":[0,0],
"index.html":[]
};
`))
	require.NoError(t, err)
	raw, _ := script.Lookup("NAVTREEINDEX0")
	entries, err := DecodeIndexChunk(raw)
	require.NoError(t, err)
	require.Equal(t, []navmodel.NavIndexEntry{
		{URL: "utilities.html#ptim", Path: navmodel.Path{0, 1, 0}},
		{URL: "annotated.html", Path: navmodel.Path{2, 0}},
		{URL: "applications.html", Path: navmodel.Path{0, 0}},
		{URL: "index.html", Path: navmodel.Path{}},
	}, entries)

	_, err = DecodeIndexChunk([]byte(`{"a.html":["x"]}`))
	require.Error(t, err)
	_, err = DecodeIndexChunk([]byte(`{"a.html":[-1]}`))
	require.Error(t, err)
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"unterminated comment": "/* never closed",
		"missing equals":       "var NAVTREE [ ];",
		"unbalanced":           "var NAVTREE = [ ] ];",
		"unterminated array":   "var NAVTREE = [ [ \"a\", null, null ]",
		"unterminated string":  "var X = \"abc;",
		"not a var":            "function f() {}",
		"missing value":        "var X = ;",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
			c, ok := errors.AsClassified(err)
			require.True(t, ok)
			require.Equal(t, errors.CategorySyntax, c.Category())
			_, hasLine := c.Context().Get("line")
			require.True(t, hasLine)
		})
	}
}

func TestParseToleratesCommentsAndMissingSemicolon(t *testing.T) {
	script, err := Parse([]byte("// generated\nvar a = [ /* inline; comment */ [ \"x;y\", \"x.html\", null ] ]\n"))
	require.NoError(t, err)
	raw, ok := script.Lookup("a")
	require.True(t, ok)
	require.Contains(t, string(raw), `"x;y"`)
}

func TestDecodeStringQuotes(t *testing.T) {
	s, err := DecodeString([]byte(`'it\'s "quoted"'`))
	require.NoError(t, err)
	require.Equal(t, `it's "quoted"`, s)

	s, err = DecodeString([]byte(`"tab\there"`))
	require.NoError(t, err)
	require.Equal(t, "tab\there", s)

	_, err = DecodeString([]byte(`'open`))
	require.Error(t, err)
}

func TestWriterRoundTrip(t *testing.T) {
	tree := []*navmodel.PageNode{
		{Title: "DA16200 SDK", Href: "index.html", Children: []*navmodel.PageNode{
			{Title: "Applications", Href: "applications.html", ChildrenRef: "applications", Children: []*navmodel.PageNode{
				{Title: "CoAP", Href: "applications.html#coap"},
			}},
			{Title: "Module <b>", Href: ""},
		}},
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, "generated by navindex")
	w.Tree("NAVTREE", tree, SplitRefs)
	w.StringList("NAVTREEINDEX", []string{"applications.html", "index.html"})
	w.String("SYNCONMSG", "click to disable panel synchronisation")
	w.String("SYNCOFFMSG", "it's on")
	w.IndexChunk("NAVTREEINDEX0", []navmodel.NavIndexEntry{{URL: "index.html", Path: navmodel.Path{0}}})
	require.NoError(t, w.Flush())

	out := buf.String()
	require.Contains(t, out, `[ "Applications", "applications.html", "applications" ]`)
	require.Contains(t, out, `[ "Module <b>", null, null ]`)
	require.Contains(t, out, "var SYNCONMSG = 'click to disable panel synchronisation';\nvar SYNCOFFMSG = 'it\\'s on';\n")

	script, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{"NAVTREE", "NAVTREEINDEX", "SYNCONMSG", "SYNCOFFMSG", "NAVTREEINDEX0"}, script.Names())

	raw, _ := script.Lookup("NAVTREE")
	decoded, err := DecodeTree(raw)
	require.NoError(t, err)
	require.Equal(t, "applications", decoded[0].Children[0].ChildrenRef)
	require.Empty(t, decoded[0].Children[0].Children)

	raw, _ = script.Lookup("SYNCOFFMSG")
	msg, err := DecodeString(raw)
	require.NoError(t, err)
	require.Equal(t, "it's on", msg)

	inline, err := DecodeTree(EncodeTree(tree, Inline))
	require.NoError(t, err)
	require.Equal(t, "CoAP", inline[0].Children[0].Children[0].Title)
	require.Empty(t, inline[0].Children[0].ChildrenRef)
}

func TestStandaloneEncodersDecode(t *testing.T) {
	list, err := DecodeStringList(EncodeStringList([]string{"annotated.html", "coap__server_8h.html#a1f0c"}))
	require.NoError(t, err)
	require.Equal(t, []string{"annotated.html", "coap__server_8h.html#a1f0c"}, list)

	empty, err := DecodeStringList(EncodeStringList(nil))
	require.NoError(t, err)
	require.Empty(t, empty)

	entries := []navmodel.NavIndexEntry{
		{URL: "utilities.html#ptim", Path: navmodel.Path{0, 1, 0}},
		{URL: "applications.html", Path: navmodel.Path{0, 0}},
	}
	decoded, err := DecodeIndexChunk(EncodeIndexChunk(entries))
	require.NoError(t, err)
	require.Equal(t, entries, decoded)

	msg, err := DecodeString(EncodeString(`don't "sync"`))
	require.NoError(t, err)
	require.Equal(t, `don't "sync"`, msg)
}
