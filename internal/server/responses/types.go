// Package responses defines API response types used by the navindex HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/site"
	"git.home.luguber.info/inful/navindex/internal/symbols"
)

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Site      string    `json:"site,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitzero"`
}

// TreeResponse carries the navigation tree, optionally pruned to a depth.
type TreeResponse struct {
	Site  string               `json:"site"`
	Depth int                  `json:"depth,omitempty"`
	Stats site.Stats           `json:"stats"`
	Nodes []*navmodel.PageNode `json:"nodes"`
}

// NodeResponse is a single node addressed by its path.
type NodeResponse struct {
	Path string             `json:"path"`
	Node *navmodel.PageNode `json:"node"`
}

// PageSummary is one entry of the page listing.
type PageSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Href  string `json:"href"`
	Nodes int    `json:"nodes"`
}

// PageResponse is a registered page with its nodes and distinct anchors.
type PageResponse struct {
	ID      string               `json:"id"`
	Title   string               `json:"title"`
	Href    string               `json:"href"`
	Anchors []string             `json:"anchors"`
	Nodes   []*navmodel.PageNode `json:"nodes"`
}

// SymbolsResponse is the result of a symbol search.
type SymbolsResponse struct {
	Query   string           `json:"query"`
	Symbols []symbols.Symbol `json:"symbols"`
}

// SymbolResponse lists every definition of one symbol.
type SymbolResponse struct {
	Name    string           `json:"name"`
	Targets []symbols.Target `json:"targets"`
}

// FileResponse is a file's member listing.
type FileResponse struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Members []navmodel.SymbolEntry `json:"members"`
}

// IndexResponse describes the navigation index layout.
type IndexResponse struct {
	ChunkSize int      `json:"chunk_size"`
	Heads     []string `json:"heads"`
	Entries   int      `json:"entries"`
	Chunks    int      `json:"chunks"`
	Stored    bool     `json:"stored"`
}

// ChunkResponse is one index chunk.
type ChunkResponse struct {
	Chunk   int                      `json:"chunk"`
	Entries []navmodel.NavIndexEntry `json:"entries"`
}

// LocateResponse maps a URL to the node path that shows it.
type LocateResponse struct {
	URL   string   `json:"url"`
	Path  string   `json:"path"`
	Trail []string `json:"trail"`
}

// ValidationResponse reports tree violations, index consistency and drift.
type ValidationResponse struct {
	OK          bool                 `json:"ok"`
	Violations  []navmodel.Violation `json:"violations"`
	Index       navtree.Report       `json:"index"`
	Differences []navtree.Difference `json:"differences,omitempty"`
}
