package mdnav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	helpers "git.home.luguber.info/inful/navindex/internal/testutil/testutils"
)

func TestParsePageNestsHeadings(t *testing.T) {
	page := ParsePage("wifi_setup", "wifi-setup", []byte(`# Wi-Fi Setup

Intro text.

## Station mode

### Scan

## Soft AP mode

#### Deep heading
`))
	require.Equal(t, "Wi-Fi Setup", page.Title)
	require.Equal(t, "wifi_setup.html", page.Href)
	require.Len(t, page.Children, 2)

	station := page.Children[0]
	require.Equal(t, "Station mode", station.Title)
	require.Equal(t, "wifi_setup.html#station-mode", station.Href)
	require.Equal(t, "Scan", station.Children[0].Title)

	ap := page.Children[1]
	require.Equal(t, "Deep heading", ap.Children[0].Title)
	require.Empty(t, navmodel.Validate([]*navmodel.PageNode{page}))
}

func TestParsePageFallbackTitle(t *testing.T) {
	page := ParsePage("notes", "notes", []byte("Some `code` text\n\n## First *emphasis*\n"))
	require.Equal(t, "notes", page.Title)
	require.Equal(t, "First emphasis", page.Children[0].Title)
}

func TestSlug(t *testing.T) {
	require.Equal(t, "guides_wifi_setup", Slug("guides/wifi-setup.md"))
	require.Equal(t, "readme", Slug("README.md"))
}

func TestBuildOrdersEntries(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteFile(t, dir, "zeta.md", "# Zeta\n")
	helpers.WriteFile(t, dir, "alpha.md", "# Alpha\n")
	helpers.WriteFile(t, dir, "README.md", "# Related Pages\n")
	helpers.WriteFile(t, dir, "notes.txt", "ignored")
	helpers.WriteFile(t, dir, "guides/index.md", "# Guides\n\n## Overview\n")
	helpers.WriteFile(t, dir, "guides/ota.md", "# OTA Update\n")
	helpers.WriteFile(t, dir, "samples/mqtt.md", "# MQTT Client\n")
	helpers.WriteFile(t, dir, ".hidden/skip.md", "# Skip\n")

	nodes, err := Build(dir)
	require.NoError(t, err)

	var titles []string
	for _, n := range nodes {
		titles = append(titles, n.Title)
	}
	require.Equal(t, []string{"Related Pages", "Alpha", "Guides", "samples", "Zeta"}, titles)

	guides := nodes[2]
	require.Equal(t, "guides_index.html", guides.Href)
	require.Equal(t, []string{"Overview", "OTA Update"}, []string{guides.Children[0].Title, guides.Children[1].Title})

	samples := nodes[3]
	require.Equal(t, "samples_mqtt.html", samples.Href)
	require.Len(t, samples.Children, 1)
}

func TestBuildMissingDir(t *testing.T) {
	_, err := Build(t.TempDir() + "/nope")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}
