package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/server/responses"
	"git.home.luguber.info/inful/navindex/internal/site"
	"git.home.luguber.info/inful/navindex/internal/symbols"
	"git.home.luguber.info/inful/navindex/internal/version"
)

// DefaultSymbolLimit caps symbol search results when no limit is given.
const DefaultSymbolLimit = 50

// SiteSource provides the currently loaded site. Current returns nil until
// the first load succeeds.
type SiteSource interface {
	Current() *site.Site
}

// NavHandlers serves the navigation data of the current site.
type NavHandlers struct {
	source       SiteSource
	errorAdapter *errors.HTTPErrorAdapter
	started      time.Time
}

// NewNavHandlers creates handlers reading from source.
func NewNavHandlers(source SiteSource, adapter *errors.HTTPErrorAdapter) *NavHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(slog.Default())
	}
	return &NavHandlers{source: source, errorAdapter: adapter, started: time.Now()}
}

func (h *NavHandlers) current() (*site.Site, error) {
	s := h.source.Current()
	if s == nil {
		return nil, errors.NewError(errors.CategoryRuntime, "no site loaded yet").Retryable().Build()
	}
	return s, nil
}

func (h *NavHandlers) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if werr := writeJSONPretty(w, r, http.StatusOK, v); werr != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(werr, errors.CategoryInternal, "failed to encode response").Build())
	}
}

// HandleHealth reports liveness. It answers 200 before the first load so
// orchestrators do not restart a daemon that is still reading a large site.
func (h *NavHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := &responses.HealthResponse{
		Status:    "starting",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.started).Seconds(),
	}
	if s := h.source.Current(); s != nil {
		resp.Status = "ok"
		resp.Site = s.Dir
		resp.LoadedAt = s.LoadedAt
	}
	h.respond(w, r, resp, nil)
}

// HandleTree returns the navigation tree. ?depth=n keeps n levels.
func (h *NavHandlers) HandleTree(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	depth, err := queryInt(r, "depth", 0)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	nodes := s.Tree.Nodes
	if depth > 0 {
		nodes = prune(nodes, depth)
	}
	h.respond(w, r, &responses.TreeResponse{
		Site:  s.Dir,
		Depth: depth,
		Stats: s.Stats(),
		Nodes: nodes,
	}, nil)
}

// prune copies nodes down to depth levels.
func prune(nodes []*navmodel.PageNode, depth int) []*navmodel.PageNode {
	if len(nodes) == 0 {
		return nodes
	}
	out := make([]*navmodel.PageNode, len(nodes))
	for i, n := range nodes {
		c := &navmodel.PageNode{Title: n.Title, Href: n.Href, ChildrenRef: n.ChildrenRef}
		if depth > 1 {
			c.Children = prune(n.Children, depth-1)
		}
		out[i] = c
	}
	return out
}

// HandleNode returns the node at ?path=1.2, a path relative to the root
// like the index paths. An empty path is the root.
func (h *NavHandlers) HandleNode(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	raw := r.URL.Query().Get("path")
	path, err := navmodel.ParsePath(raw)
	if err != nil {
		h.respond(w, r, nil, errors.WrapError(err, errors.CategoryValidation, "invalid node path").
			WithContext("path", raw).
			Build())
		return
	}
	node, err := s.Tree.Node(path)
	h.respond(w, r, &responses.NodeResponse{Path: path.String(), Node: node}, err)
}

// HandlePages lists registered pages in registration order.
func (h *NavHandlers) HandlePages(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	out := make([]responses.PageSummary, 0, s.Pages.Len())
	for _, p := range s.Pages.Pages() {
		out = append(out, responses.PageSummary{
			ID:    p.ID,
			Title: p.Title,
			Href:  p.Href,
			Nodes: navmodel.Count(p.Nodes),
		})
	}
	h.respond(w, r, out, nil)
}

// HandlePage returns one page by id.
func (h *NavHandlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	id := chi.URLParam(r, "id")
	page, err := s.Pages.Get(id)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	anchors, err := s.Pages.Anchors(id)
	h.respond(w, r, &responses.PageResponse{
		ID:      page.ID,
		Title:   page.Title,
		Href:    page.Href,
		Anchors: anchors,
		Nodes:   page.Nodes,
	}, err)
}

// HandleSymbols searches symbols by ?q= prefix.
func (h *NavHandlers) HandleSymbols(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	limit, err := queryInt(r, "limit", DefaultSymbolLimit)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	q := r.URL.Query().Get("q")
	found := s.Symbols.Search(q, limit)
	if found == nil {
		found = []symbols.Symbol{}
	}
	h.respond(w, r, &responses.SymbolsResponse{Query: q, Symbols: found}, nil)
}

// HandleSymbol lists every definition of {name}.
func (h *NavHandlers) HandleSymbol(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	name := chi.URLParam(r, "name")
	targets, err := s.Symbols.Lookup(name)
	h.respond(w, r, &responses.SymbolResponse{Name: name, Targets: targets}, err)
}

// HandleFile returns the member listing of file {id}.
func (h *NavHandlers) HandleFile(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	id := chi.URLParam(r, "id")
	members, err := s.Symbols.Members(id)
	h.respond(w, r, &responses.FileResponse{ID: id, Name: symbols.FileName(id), Members: members}, err)
}

// HandleIndex describes the stored index, or a regenerated one for sites
// built in memory.
func (h *NavHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	ix, err := s.CurrentIndex()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	h.respond(w, r, &responses.IndexResponse{
		ChunkSize: ix.ChunkSize,
		Heads:     ix.Heads,
		Entries:   ix.Len(),
		Chunks:    len(ix.Chunks),
		Stored:    s.Index != nil,
	}, nil)
}

// HandleChunk returns index chunk {n}.
func (h *NavHandlers) HandleChunk(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	raw := chi.URLParam(r, "n")
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.respond(w, r, nil, errors.ValidationError("chunk number must be an integer").
			WithContext("chunk", raw).
			Build())
		return
	}
	ix, err := s.CurrentIndex()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	entries, err := ix.Chunk(n)
	h.respond(w, r, &responses.ChunkResponse{Chunk: n, Entries: entries}, err)
}

// HandleLocate maps ?url= to the tree path that displays it, with the
// titles along the way.
func (h *NavHandlers) HandleLocate(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		h.respond(w, r, nil, errors.ValidationError("query parameter url is required").Build())
		return
	}
	ix, err := s.CurrentIndex()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	path, err := ix.Locate(url)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	trail, err := Trail(s, path)
	h.respond(w, r, &responses.LocateResponse{URL: url, Path: path.String(), Trail: trail}, err)
}

// Trail returns the titles of the nodes from the root down to the index path.
func Trail(s *site.Site, path navmodel.Path) ([]string, error) {
	full := navtree.TreePath(path)
	trail := make([]string, 0, len(full))
	for i := 1; i <= len(full); i++ {
		n, err := s.Tree.At(full[:i])
		if err != nil {
			return nil, err
		}
		trail = append(trail, n.Title)
	}
	return trail, nil
}

// HandleValidation validates the tree and index and reports drift between
// the stored and a regenerated index.
func (h *NavHandlers) HandleValidation(w http.ResponseWriter, r *http.Request) {
	s, err := h.current()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	v, err := s.Validate()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	diffs, err := s.Drift()
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	violations := v.Violations
	if violations == nil {
		violations = []navmodel.Violation{}
	}
	h.respond(w, r, &responses.ValidationResponse{
		OK:          v.OK() && len(diffs) == 0,
		Violations:  violations,
		Index:       v.Index,
		Differences: diffs,
	}, nil)
}
