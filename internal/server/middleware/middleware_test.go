package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/metrics"
)

type recordedRequest struct {
	route  string
	status int
}

type fakeRecorder struct {
	metrics.NoopRecorder
	requests []recordedRequest
}

func (f *fakeRecorder) ObserveHTTPRequest(route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{route: route, status: status})
}

func newRouter(t *testing.T, logs *bytes.Buffer, rec metrics.Recorder) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(logs, nil))
	r := chi.NewRouter()
	r.Use(Chain(logger, errors.NewHTTPErrorAdapter(logger), rec))
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
	return r
}

func TestChainLogsAndRecordsRoutePattern(t *testing.T) {
	var logs bytes.Buffer
	rec := &fakeRecorder{}
	r := newRouter(t, &logs, rec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, []recordedRequest{{route: "/items/{id}", status: http.StatusTeapot}}, rec.requests)
	require.Contains(t, logs.String(), "HTTP request")
	require.Contains(t, logs.String(), "status=418")
	require.Contains(t, logs.String(), "path=/items/42")
}

func TestChainRecoversPanics(t *testing.T) {
	var logs bytes.Buffer
	rec := &fakeRecorder{}
	r := newRouter(t, &logs, rec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body errors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "internal server error", body.Error)
	require.Equal(t, "/boom", body.Details["path"])
	require.Contains(t, logs.String(), "HTTP handler panic")
	require.Len(t, rec.requests, 1)
	require.Equal(t, http.StatusInternalServerError, rec.requests[0].status)
}

func TestChainUnmatchedRoute(t *testing.T) {
	var logs bytes.Buffer
	rec := &fakeRecorder{}
	r := newRouter(t, &logs, rec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, rec.requests, 1)
	require.Equal(t, "unmatched", rec.requests[0].route)
}
