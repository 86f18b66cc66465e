// Package symbols holds the SymbolIndex built from Doxygen's per-file member
// listings.
package symbols

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// Target is one declaration of a symbol.
type Target struct {
	File string        `json:"file"`
	Href string        `json:"href"`
	Path navmodel.Path `json:"path"`
}

// Symbol is a name and every place it is declared.
type Symbol struct {
	Name    string   `json:"name"`
	Targets []Target `json:"targets"`
}

// Index maps symbol names to their declarations. Reads are safe for
// concurrent use.
type Index struct {
	mu       sync.RWMutex
	files    []string
	listings map[string][]navmodel.SymbolEntry

	byName map[string][]Target
	names  []string // first-seen order
	dirty  bool
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{listings: make(map[string][]navmodel.SymbolEntry)}
}

// AddFile records the member listing of fileID, replacing an earlier listing
// for the same file. The file keeps its original position.
func (x *Index) AddFile(fileID string, entries []navmodel.SymbolEntry) error {
	if strings.TrimSpace(fileID) == "" {
		return errors.ValidationError("symbol file id must not be empty").Build()
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.listings[fileID]; !ok {
		x.files = append(x.files, fileID)
	}
	x.listings[fileID] = entries
	x.dirty = true
	return nil
}

// Files returns file ids in registration order.
func (x *Index) Files() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.files...)
}

// Members returns the listing of fileID in declaration order.
func (x *Index) Members(fileID string) ([]navmodel.SymbolEntry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries, ok := x.listings[fileID]
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("symbol file %q not found", fileID)).
			WithContext("path", fileID).
			Build()
	}
	return entries, nil
}

// Lookup returns every declaration of name in file registration order.
func (x *Index) Lookup(name string) ([]Target, error) {
	x.ensure()
	x.mu.RLock()
	defer x.mu.RUnlock()
	targets, ok := x.byName[name]
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("symbol %q not found", name)).
			WithContext("symbol", name).
			Build()
	}
	return append([]Target(nil), targets...), nil
}

// Len returns the number of distinct symbol names.
func (x *Index) Len() int {
	x.ensure()
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.names)
}

// Alphabetical returns every symbol ordered by a case-insensitive collation.
// Names that collate equal keep their first-seen order.
func (x *Index) Alphabetical() []Symbol {
	x.ensure()
	x.mu.RLock()
	defer x.mu.RUnlock()
	names := append([]string(nil), x.names...)
	col := collate.New(language.Und, collate.Loose, collate.IgnoreCase)
	sort.SliceStable(names, func(i, j int) bool {
		return col.CompareString(names[i], names[j]) < 0
	})
	out := make([]Symbol, 0, len(names))
	for _, n := range names {
		out = append(out, Symbol{Name: n, Targets: append([]Target(nil), x.byName[n]...)})
	}
	return out
}

// Search returns symbols whose name starts with prefix, ignoring case, in
// alphabetical order. A limit of zero or less returns every match.
func (x *Index) Search(prefix string, limit int) []Symbol {
	prefix = strings.ToLower(prefix)
	var out []Symbol
	for _, s := range x.Alphabetical() {
		if !strings.HasPrefix(strings.ToLower(s.Name), prefix) {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (x *Index) ensure() {
	x.mu.RLock()
	dirty := x.dirty || x.byName == nil
	x.mu.RUnlock()
	if !dirty {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	byName := make(map[string][]Target)
	var names []string
	for _, file := range x.files {
		nodes := navmodel.ToPageNodes(x.listings[file])
		_ = navmodel.Walk(nodes, func(n *navmodel.PageNode, p navmodel.Path) error {
			if n.Title == "" {
				return nil
			}
			if _, seen := byName[n.Title]; !seen {
				names = append(names, n.Title)
			}
			byName[n.Title] = append(byName[n.Title], Target{
				File: file,
				Href: n.Href,
				Path: append(navmodel.Path(nil), p...),
			})
			return nil
		})
	}
	x.byName = byName
	x.names = names
	x.dirty = false
}
