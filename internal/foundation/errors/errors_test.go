package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategorySyntax, "unterminated string").
			WithSeverity(SeverityFatal).
			WithContext("file", "navtreedata.js").
			Build()

		if err.Category() != CategorySyntax {
			t.Errorf("expected category %s, got %s", CategorySyntax, err.Category())
		}
		if !err.IsFatal() {
			t.Error("expected fatal severity")
		}
		file, ok := err.Context().GetString("file")
		if !ok || file != "navtreedata.js" {
			t.Errorf("expected context file=navtreedata.js, got %v", file)
		}
	})

	t.Run("Wrapped error is found through fmt wrapping", func(t *testing.T) {
		root := stderrors.New("connection refused")
		err := fmt.Errorf("sync: %w", NetworkError("nats unavailable").WithContext("url", "nats://localhost").Build())
		wrapped := WrapError(root, CategoryGit, "clone failed").Build()

		if !HasCategory(err, CategoryNetwork) {
			t.Error("expected network category through wrapping")
		}
		if !IsRetryable(err) {
			t.Error("network errors should be retryable")
		}
		if !stderrors.Is(wrapped, root) {
			t.Error("expected wrapped cause to be reachable")
		}
		if GetCategory(root) != CategoryInternal {
			t.Error("unclassified errors should report internal")
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := NotFoundError("symbol not found").Build()
		derived := base.WithContext("name", "coap_server_start")
		if _, ok := base.Context().Get("name"); ok {
			t.Error("base context must not be mutated")
		}
		if v, _ := derived.Context().GetString("name"); v != "coap_server_start" {
			t.Errorf("unexpected derived context %q", v)
		}
	})
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("empty href").Build(), 2},
		{"not found", NotFoundError("page").Build(), 3},
		{"syntax", SyntaxError("bad script").Build(), 4},
		{"config", ConfigError("missing site dir").Build(), 7},
		{"store", StoreError("insert").Build(), 11},
		{"unclassified", stderrors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out

	code := adapter.Report(ConfigError("site.dir is required").Build())
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
	if out.String() != "site.dir is required\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestHTTPErrorAdapter(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	if got := adapter.StatusCodeFor(NotFoundError("x").Build()); got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
	if got := adapter.StatusCodeFor(stderrors.New("x")); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/symbols/nope", nil)
	adapter.WriteErrorResponse(rec, req, NotFoundError("symbol not found").WithContext("name", "nope").Build())

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"code":"not_found"`)) {
		t.Errorf("body missing code: %s", rec.Body.String())
	}
}
