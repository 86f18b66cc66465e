// Package verify checks that navigation hrefs resolve to pages and anchors in
// the site directory.
package verify

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/site"
	"git.home.luguber.info/inful/navindex/internal/symbols"
)

// Options configure a Verifier.
type Options struct {
	CacheSize int
	// SkipIndex disables checking the stored index URLs.
	SkipIndex bool
	Publisher Publisher
}

// Report is the outcome of one run.
type Report struct {
	Site      string        `json:"site"`
	Checked   int           `json:"checked"`
	Pages     int           `json:"pages"`
	Broken    []BrokenHref  `json:"broken"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether every href resolved.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// Summary condenses the report.
func (r *Report) Summary() *Summary {
	s := &Summary{
		Site:      r.Site,
		Checked:   r.Checked,
		Pages:     r.Pages,
		Broken:    len(r.Broken),
		ByReason:  map[string]int{},
		CheckedAt: r.StartedAt,
	}
	for _, b := range r.Broken {
		s.ByReason[b.Reason]++
	}
	return s
}

// Verifier checks sites. Parsed pages are cached across runs; a Verifier is
// safe for use by one run at a time.
type Verifier struct {
	cache     *pageCache
	skipIndex bool
	publisher Publisher
}

// New returns a Verifier.
func New(opts Options) (*Verifier, error) {
	cache, err := newPageCache(opts.CacheSize)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "create page cache").Build()
	}
	return &Verifier{cache: cache, skipIndex: opts.SkipIndex, publisher: opts.Publisher}, nil
}

type run struct {
	ctx     context.Context
	v       *Verifier
	dir     string
	report  *Report
	results map[string]BrokenHref // href -> result, empty Reason when fine
	pages   map[string]struct{}
}

// Verify checks every tree href and, unless disabled, every stored index URL.
// In-page anchors ("#id") resolve against the nearest ancestor's page.
func (v *Verifier) Verify(ctx context.Context, s *site.Site) (*Report, error) {
	r := &run{
		ctx:     ctx,
		v:       v,
		dir:     s.Dir,
		report:  &Report{Site: s.Dir, StartedAt: time.Now(), Broken: []BrokenHref{}},
		results: make(map[string]BrokenHref),
		pages:   make(map[string]struct{}),
	}

	if err := r.nodes(s.Tree.Nodes, nil, "", ""); err != nil {
		return nil, err
	}
	if !v.skipIndex && s.Index != nil {
		for i, chunk := range s.Index.Chunks {
			for _, e := range chunk {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				b := r.check(e.URL, "")
				if b.Reason != "" {
					b.Source, b.Chunk, b.Path = SourceIndex, i, e.Path
					r.report.Broken = append(r.report.Broken, b)
				}
			}
		}
	}
	r.report.Pages = len(r.pages)
	r.report.Duration = time.Since(r.report.StartedAt)

	slog.Info("Verified navigation hrefs",
		logfields.Site(s.Dir),
		logfields.Count(r.report.Checked),
		slog.Int("broken", len(r.report.Broken)),
		logfields.DurationMS(float64(r.report.Duration.Microseconds())/1000))

	if v.publisher != nil {
		v.publish(ctx, r.report)
	}
	return r.report, nil
}

func (r *run) nodes(nodes []*navmodel.PageNode, path navmodel.Path, page, file string) error {
	for i, n := range nodes {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		p := path.Child(i)
		nodePage := page
		if pg, _ := navmodel.SplitHref(n.Href); pg != "" {
			nodePage = pg
		}
		if n.Href != "" {
			b := r.check(n.Href, page)
			if b.Reason != "" {
				b.Source, b.Path, b.Title = SourceTree, p, n.Title
				if file != "" {
					b.Source, b.File = SourceSymbols, file
				}
				r.report.Broken = append(r.report.Broken, b)
			}
		}
		childFile := file
		if symbols.IsFileID(n.ChildrenRef) {
			childFile = n.ChildrenRef
		}
		if err := r.nodes(n.Children, p, nodePage, childFile); err != nil {
			return err
		}
	}
	return nil
}

// check resolves href. The returned value has an empty Reason when it resolves.
func (r *run) check(href, contextPage string) BrokenHref {
	r.report.Checked++
	key := contextPage + "|" + href
	if b, ok := r.results[key]; ok {
		return b
	}
	b := r.resolve(href, contextPage)
	r.results[key] = b
	return b
}

func (r *run) resolve(href, contextPage string) BrokenHref {
	b := BrokenHref{Href: href}
	if reason := navmodel.ValidateHref(href); reason != "" {
		b.Reason, b.Detail = ReasonInvalidHref, reason
		return b
	}
	page, anchor := navmodel.SplitHref(href)
	if page == "" {
		page = contextPage
	}
	if page == "" {
		b.Reason, b.Detail = ReasonMissingPage, "in-page anchor without an enclosing page"
		return b
	}
	r.pages[page] = struct{}{}
	set, err := r.v.cache.anchors(filepath.Join(r.dir, page))
	if err != nil {
		b.Reason = ReasonMissingPage
		if !stderrors.Is(err, fs.ErrNotExist) {
			b.Detail = err.Error()
		}
		return b
	}
	if anchor == "" {
		return b
	}
	if _, ok := set[anchor]; !ok {
		b.Reason, b.Detail = ReasonMissingAnchor, fmt.Sprintf("%s declares no anchor %q", page, anchor)
	}
	return b
}

func (v *Verifier) publish(ctx context.Context, report *Report) {
	now := time.Now()
	for _, b := range report.Broken {
		ev := &BrokenHrefEvent{BrokenHref: b, Site: report.Site, Timestamp: now}
		if err := v.publisher.PublishBrokenHref(ctx, ev); err != nil {
			slog.Warn("Failed to publish broken href", logfields.Href(b.Href), logfields.Error(err))
		}
	}
	if err := v.publisher.PutSummary(ctx, report.Summary()); err != nil {
		slog.Warn("Failed to store verification summary", logfields.Site(report.Site), logfields.Error(err))
	}
}

// CachedPages returns the number of parsed pages held in the cache.
func (v *Verifier) CachedPages() int { return v.cache.len() }
