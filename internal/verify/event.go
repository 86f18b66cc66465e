package verify

import (
	"time"

	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// Reasons a href is broken.
const (
	ReasonMissingPage   = "missing_page"
	ReasonMissingAnchor = "missing_anchor"
	ReasonInvalidHref   = "invalid_href"
)

// Source kinds.
const (
	SourceTree    = "tree"
	SourceSymbols = "symbols"
	SourceIndex   = "index"
)

// BrokenHref is one href that does not resolve in the site directory.
type BrokenHref struct {
	Href   string `json:"href"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`

	Source string        `json:"source"`
	Path   navmodel.Path `json:"path,omitempty"`
	File   string        `json:"file,omitempty"`  // symbol file id for SourceSymbols
	Chunk  int           `json:"chunk,omitempty"` // index chunk for SourceIndex
	Title  string        `json:"title,omitempty"`
}

// BrokenHrefEvent is published for every broken href found by a run.
type BrokenHrefEvent struct {
	BrokenHref
	Site      string    `json:"site"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the stored outcome of the last run for a site.
type Summary struct {
	Site      string         `json:"site"`
	Checked   int            `json:"checked"`
	Pages     int            `json:"pages"`
	Broken    int            `json:"broken"`
	ByReason  map[string]int `json:"by_reason"`
	CheckedAt time.Time      `json:"checked_at"`
}
