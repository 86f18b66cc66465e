package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/metrics"
	"git.home.luguber.info/inful/navindex/internal/server/events"
	"git.home.luguber.info/inful/navindex/internal/site"
	helpers "git.home.luguber.info/inful/navindex/internal/testutil/testutils"
)

type staticSource struct{ s *site.Site }

func (src staticSource) Current() *site.Site { return src.s }

func newTestServer(t *testing.T) (*Server, *events.Hub) {
	t.Helper()
	dir := helpers.WriteDoxygenSite(t, t.TempDir())
	s, err := site.Load(context.Background(), dir, site.Options{})
	require.NoError(t, err)

	reg := prom.NewRegistry()
	hub := events.NewHub(nil)
	srv := New("127.0.0.1:0", Options{
		Source:   staticSource{s},
		Hub:      hub,
		Recorder: metrics.NewPrometheusRecorder(reg),
		Registry: reg,
	})
	return srv, hub
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, target := range []string{
		"/healthz",
		"/api/tree",
		"/api/tree/node?path=2",
		"/api/pages",
		"/api/pages/utilities",
		"/api/symbols?q=http",
		"/api/symbols/coap_server_start",
		"/api/files/coap__server_8h",
		"/api/index",
		"/api/index/chunks/0",
		"/api/locate?url=globals.html",
		"/api/validation",
	} {
		w := get(t, h, target)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", target, w.Body.String())
	}
}

func TestUnknownEndpointIsJSON404(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(t, srv.Handler(), "/api/unknown")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
	require.Contains(t, w.Body.String(), `"code":"not_found"`)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	get(t, h, "/api/pages/utilities")
	get(t, h, "/api/pages/applications")

	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "navindex_http_requests_total")
	require.Contains(t, body, `route="/api/pages/{id}"`)
}

func TestStartServesAndStops(t *testing.T) {
	srv, hub := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"status":"ok"`)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, events.TypeConnected, ev.Type)

	hub.Publish(events.Event{Type: events.TypeReloaded, SnapshotID: "snap-1"})
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, events.TypeReloaded, ev.Type)
	require.Equal(t, "snap-1", ev.SnapshotID)
}

func TestStartReportsBindFailure(t *testing.T) {
	first, _ := newTestServer(t)
	require.NoError(t, first.Start(context.Background()))
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := New(first.Addr(), Options{Source: staticSource{}})
	err := second.Start(context.Background())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "bind"), err.Error())
}
