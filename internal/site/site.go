// Package site loads and writes the navigation data of a Doxygen HTML output
// directory.
package site

import (
	"time"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/pages"
	"git.home.luguber.info/inful/navindex/internal/symbols"
)

// Script names used by Doxygen.
const (
	DataScript  = "navtreedata.js"
	indexPrefix = "navtreeindex"

	DefaultSyncOn  = "click to disable panel synchronisation"
	DefaultSyncOff = "click to enable panel synchronisation"
)

// Options control loading and writing.
type Options struct {
	MissingScripts config.MissingScriptPolicy
	ChunkSize      int
	Header         string
}

// OptionsFromConfig maps the site section of the configuration.
func OptionsFromConfig(c config.SiteConfig) Options {
	return Options{MissingScripts: c.MissingScripts, ChunkSize: c.ChunkSize, Header: c.Header}
}

func (o Options) chunkSize(fallback *navtree.Index) int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	if fallback != nil && fallback.ChunkSize > 0 {
		return fallback.ChunkSize
	}
	return navtree.DefaultChunkSize
}

// Site is a loaded navigation data set. Values are not modified after Load;
// callers build a new Site instead.
type Site struct {
	Dir     string
	Tree    *navtree.Tree
	Pages   *pages.Registry
	Symbols *symbols.Index
	// Index is the index as stored on disk. It is nil for sites built in memory.
	Index   *navtree.Index
	SyncOn  string
	SyncOff string
	// Missing lists children references whose script was absent.
	Missing  []string
	LoadedAt time.Time
}

// New returns an in-memory site around tree.
func New(dir string, tree *navtree.Tree) *Site {
	return &Site{
		Dir:      dir,
		Tree:     tree,
		Pages:    pages.NewRegistry(),
		Symbols:  symbols.NewIndex(),
		SyncOn:   DefaultSyncOn,
		SyncOff:  DefaultSyncOff,
		LoadedAt: time.Now(),
	}
}

// Stats are the headline counts of a site.
type Stats struct {
	Nodes        int `json:"nodes"`
	Leaves       int `json:"leaves"`
	Linked       int `json:"linked"`
	LinkedLeaves int `json:"linked_leaves"`
	Depth        int `json:"depth"`
	Pages        int `json:"pages"`
	Files        int `json:"files"`
	Symbols      int `json:"symbols"`
	Entries      int `json:"entries"`
	Chunks       int `json:"chunks"`
	Missing      int `json:"missing"`
}

// Stats computes the site's counts.
func (s *Site) Stats() Stats {
	st := Stats{
		Nodes:        navmodel.Count(s.Tree.Nodes),
		Leaves:       navmodel.LeafCount(s.Tree.Nodes),
		Linked:       navmodel.LinkedCount(s.Tree.Nodes),
		LinkedLeaves: navmodel.LinkedLeafCount(s.Tree.Nodes),
		Depth:        navmodel.Depth(s.Tree.Nodes),
		Pages:        s.Pages.Len(),
		Files:        len(s.Symbols.Files()),
		Symbols:      s.Symbols.Len(),
		Missing:      len(s.Missing),
	}
	if s.Index != nil {
		st.Entries = s.Index.Len()
		st.Chunks = len(s.Index.Chunks)
	}
	return st
}

// Regenerate builds a fresh index from the tree.
func (s *Site) Regenerate(chunkSize int) (*navtree.Index, error) {
	return s.Tree.BuildIndex(Options{ChunkSize: chunkSize}.chunkSize(s.Index))
}

// CurrentIndex returns the stored index, or a regenerated one for in-memory sites.
func (s *Site) CurrentIndex() (*navtree.Index, error) {
	if s.Index != nil {
		return s.Index, nil
	}
	return s.Regenerate(0)
}

// Validate checks the tree, including attached member listings, and the
// stored index.
func (s *Site) Validate() (navtree.Validation, error) {
	ix, err := s.CurrentIndex()
	if err != nil {
		return navtree.Validation{}, err
	}
	return s.Tree.Validate(ix), nil
}

// Drift compares the stored index with one regenerated from the tree using
// the stored chunk size.
func (s *Site) Drift() ([]navtree.Difference, error) {
	fresh, err := s.Regenerate(0)
	if err != nil {
		return nil, err
	}
	if s.Index == nil {
		return []navtree.Difference{}, nil
	}
	diffs := navtree.Diff(s.Index, fresh)
	if diffs == nil {
		diffs = []navtree.Difference{}
	}
	return diffs, nil
}
