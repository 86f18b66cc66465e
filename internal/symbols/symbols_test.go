package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

func coapServer() []navmodel.SymbolEntry {
	return []navmodel.SymbolEntry{
		{Name: "coap_server_start", Href: "coap__server_8h.html#a1f0c"},
		{Name: "COAP_MAX", Href: "coap__server_8h.html#a77aa"},
		{Name: "coap_method_t", Href: "coap__server_8h.html#a9b1e", Children: []navmodel.SymbolEntry{
			{Name: "COAP_GET", Href: "coap__server_8h.html#a9b1ea1"},
		}},
	}
}

func httpClient() []navmodel.SymbolEntry {
	return []navmodel.SymbolEntry{
		{Name: "HTTPC_TIMEOUT", Href: "user__http__client_8h.html#a2e1f"},
		{Name: "http_client_conf", Href: "user__http__client_8h.html#a0d3c"},
		{Name: "COAP_MAX", Href: "user__http__client_8h.html#a5150"},
	}
}

func TestLookupAcrossFiles(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.AddFile("coap__server_8h", coapServer()))
	require.NoError(t, x.AddFile("user__http__client_8h", httpClient()))

	targets, err := x.Lookup("COAP_MAX")
	require.NoError(t, err)
	require.Equal(t, []Target{
		{File: "coap__server_8h", Href: "coap__server_8h.html#a77aa", Path: navmodel.Path{1}},
		{File: "user__http__client_8h", Href: "user__http__client_8h.html#a5150", Path: navmodel.Path{2}},
	}, targets)

	targets, err = x.Lookup("COAP_GET")
	require.NoError(t, err)
	require.Equal(t, navmodel.Path{2, 0}, targets[0].Path)

	_, err = x.Lookup("nope")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	require.Equal(t, 6, x.Len())
}

func TestAddFileReplacesListing(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.AddFile("coap__server_8h", coapServer()))
	require.NoError(t, x.AddFile("user__http__client_8h", httpClient()))
	require.NoError(t, x.AddFile("coap__server_8h", []navmodel.SymbolEntry{{Name: "coap_server_stop", Href: "coap__server_8h.html#b"}}))

	require.Equal(t, []string{"coap__server_8h", "user__http__client_8h"}, x.Files())
	_, err := x.Lookup("coap_server_start")
	require.Error(t, err)
	members, err := x.Members("coap__server_8h")
	require.NoError(t, err)
	require.Len(t, members, 1)

	_, err = x.Members("missing_8h")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	require.Error(t, x.AddFile(" ", nil))
}

func TestAlphabeticalAndSearch(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.AddFile("user__http__client_8h", httpClient()))
	require.NoError(t, x.AddFile("coap__server_8h", coapServer()))

	var names []string
	for _, s := range x.Alphabetical() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{
		"COAP_GET", "COAP_MAX", "coap_method_t", "coap_server_start",
		"http_client_conf", "HTTPC_TIMEOUT",
	}, names)

	hits := x.Search("coap_", 2)
	require.Len(t, hits, 2)
	require.Equal(t, "COAP_GET", hits[0].Name)

	hits = x.Search("HTTP", 0)
	require.Len(t, hits, 2)
	require.Empty(t, x.Search("zz", 5))
}

func TestAlphabeticalKeepsFirstSeenOrderForEqualNames(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.AddFile("a_8h", []navmodel.SymbolEntry{{Name: "wifi_init", Href: "a_8h.html#x"}}))
	require.NoError(t, x.AddFile("b_8h", []navmodel.SymbolEntry{{Name: "WIFI_INIT", Href: "b_8h.html#y"}}))

	all := x.Alphabetical()
	require.Equal(t, "wifi_init", all[0].Name)
	require.Equal(t, "WIFI_INIT", all[1].Name)
}

func TestFileName(t *testing.T) {
	for id, want := range map[string]string{
		"coap__server_8h":       "coap_server.h",
		"user__http__client_8h": "user_http_client.h",
		"da16x__system_8c":      "da16x_system.c",
		"_w_i_f_i_8h":           "WIFI.h",
		"dir_2file_8hpp":        "dir/file.hpp",
		"plain":                 "plain",
	} {
		require.Equal(t, want, FileName(id), id)
	}
	require.True(t, IsFileID("coap__server_8h"))
	require.True(t, IsFileID("main_8c"))
	require.False(t, IsFileID("applications"))
	require.False(t, IsFileID("_8h"))
}
