package verify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/site"
	helpers "git.home.luguber.info/inful/navindex/internal/testutil/testutils"
)

type recordingPublisher struct {
	mu        sync.Mutex
	events    []*BrokenHrefEvent
	summaries []*Summary
}

func (p *recordingPublisher) PublishBrokenHref(_ context.Context, ev *BrokenHrefEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) PutSummary(_ context.Context, s *Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, s)
	return nil
}

func load(t *testing.T, dir string) *site.Site {
	t.Helper()
	s, err := site.Load(context.Background(), dir, site.Options{})
	require.NoError(t, err)
	return s
}

func TestExtractAnchors(t *testing.T) {
	set, err := ExtractAnchors(strings.NewReader(`<html><body>
<h1 id="top">Top</h1><a name="legacy"></a><div name="not-an-anchor"></div><a id="">x</a>
</body></html>`))
	require.NoError(t, err)
	require.Contains(t, set, "top")
	require.Contains(t, set, "legacy")
	require.NotContains(t, set, "not-an-anchor")
	require.Len(t, set, 2)
}

func TestVerifyCleanFixture(t *testing.T) {
	dir := helpers.WriteDoxygenSite(t, t.TempDir())
	v, err := New(Options{})
	require.NoError(t, err)

	report, err := v.Verify(context.Background(), load(t, dir))
	require.NoError(t, err)
	require.True(t, report.OK(), "%+v", report.Broken)
	require.Equal(t, helpers.FixtureLinked+helpers.FixtureEntries, report.Checked)
	require.Equal(t, 8, report.Pages)
	require.Equal(t, 8, v.CachedPages())
}

func TestVerifyReportsBrokenHrefs(t *testing.T) {
	dir := helpers.WriteDoxygenSite(t, t.TempDir())
	require.NoError(t, os.Remove(filepath.Join(dir, "globals.html")))
	helpers.WriteFile(t, dir, "user__http__client_8h.html", `<html><body><a id="a2e1f"></a></body></html>`)

	pub := &recordingPublisher{}
	v, err := New(Options{Publisher: pub})
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), load(t, dir))
	require.NoError(t, err)

	bySource := map[string][]BrokenHref{}
	for _, b := range report.Broken {
		bySource[b.Source] = append(bySource[b.Source], b)
	}
	require.Len(t, bySource[SourceTree], 1)
	require.Equal(t, "globals.html", bySource[SourceTree][0].Href)
	require.Equal(t, ReasonMissingPage, bySource[SourceTree][0].Reason)
	require.Equal(t, navmodel.Path{0, 2, 1}, bySource[SourceTree][0].Path)

	require.Len(t, bySource[SourceSymbols], 1)
	sym := bySource[SourceSymbols][0]
	require.Equal(t, ReasonMissingAnchor, sym.Reason)
	require.Equal(t, "user__http__client_8h", sym.File)
	require.Equal(t, "http_client_conf", sym.Title)

	require.Len(t, bySource[SourceIndex], 2)
	require.Equal(t, 1, bySource[SourceIndex][0].Chunk)

	require.Len(t, pub.events, 4)
	require.Len(t, pub.summaries, 1)
	require.Equal(t, 2, pub.summaries[0].ByReason[ReasonMissingPage])
	require.Equal(t, 2, pub.summaries[0].ByReason[ReasonMissingAnchor])
}

func TestVerifyInPageAnchorsAndInvalidHrefs(t *testing.T) {
	dir := helpers.WriteDoxygenSite(t, t.TempDir())
	tree := navtree.New("Root", "applications.html", []*navmodel.PageNode{
		{Title: "CoAP", Href: "#coap_client"},
		{Title: "Missing", Href: "#nope"},
		{Title: "Spaces", Href: "bad page.html"},
	})
	v, err := New(Options{SkipIndex: true})
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), site.New(dir, tree))
	require.NoError(t, err)

	require.Len(t, report.Broken, 2)
	require.Equal(t, ReasonMissingAnchor, report.Broken[0].Reason)
	require.Equal(t, "#nope", report.Broken[0].Href)
	require.Equal(t, ReasonInvalidHref, report.Broken[1].Reason)
}

func TestVerifyResolvesSubdirectoryPages(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteFile(t, dir, "index.html", `<html><body></body></html>`)
	helpers.WriteFile(t, dir, "d5/d1a/structfoo.html", `<html><body><a id="a1"></a></body></html>`)
	tree := navtree.New("Root", "index.html", []*navmodel.PageNode{
		{Title: "foo", Href: "d5/d1a/structfoo.html", Children: []*navmodel.PageNode{
			{Title: "bar", Href: "#a1"},
		}},
		{Title: "Escape", Href: "../outside.html"},
	})
	v, err := New(Options{SkipIndex: true})
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), site.New(dir, tree))
	require.NoError(t, err)

	require.Len(t, report.Broken, 1)
	require.Equal(t, ReasonInvalidHref, report.Broken[0].Reason)
	require.Equal(t, navmodel.ReasonOutsideSite, report.Broken[0].Detail)
	require.Empty(t, navmodel.Validate(tree.Root().Children[:1]))
}

func TestVerifyHonoursCancellation(t *testing.T) {
	dir := helpers.WriteDoxygenSite(t, t.TempDir())
	v, err := New(Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Verify(ctx, load(t, dir))
	require.ErrorIs(t, err, context.Canceled)
}

func TestNATSClientRequiresURL(t *testing.T) {
	_, err := NewNATSClient(context.Background(), &config.NATSConfig{})
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Equal(t, "summary.._site_html", SummaryKey("./site/html"))
}
