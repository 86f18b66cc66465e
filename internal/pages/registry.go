// Package pages holds the PageRegistry: the documentation page trees keyed by
// the name of the script that declares them.
package pages

import (
	"fmt"
	"regexp"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidID reports whether id can name a navigation script variable.
func ValidID(id string) bool {
	return identRe.MatchString(id)
}

// Page is one registered page tree.
type Page struct {
	ID    string               `json:"id"`
	Title string               `json:"title"`
	Href  string               `json:"href"`
	Nodes []*navmodel.PageNode `json:"nodes"`
}

type location struct {
	id   string
	path navmodel.Path
}

// Registry is an ordered set of pages. It is not safe for concurrent
// registration; once populated it is read-only.
type Registry struct {
	order []string
	pages map[string]*Page
	hrefs map[string]location
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pages: make(map[string]*Page),
		hrefs: make(map[string]location),
	}
}

// Register adds a page tree under id.
func (r *Registry) Register(id, title, href string, nodes []*navmodel.PageNode) error {
	if !ValidID(id) {
		return errors.ValidationError(fmt.Sprintf("invalid page id %q", id)).
			WithContext("page", id).
			Build()
	}
	if _, exists := r.pages[id]; exists {
		return errors.NewError(errors.CategoryAlreadyExists, fmt.Sprintf("page %q already registered", id)).
			WithContext("page", id).
			Build()
	}
	page := &Page{ID: id, Title: title, Href: href, Nodes: nodes}
	r.pages[id] = page
	r.order = append(r.order, id)
	_ = navmodel.Walk(nodes, func(n *navmodel.PageNode, p navmodel.Path) error {
		if n.Href == "" {
			return nil
		}
		if _, seen := r.hrefs[n.Href]; !seen {
			r.hrefs[n.Href] = location{id: id, path: append(navmodel.Path(nil), p...)}
		}
		return nil
	})
	return nil
}

// Get returns the page registered under id.
func (r *Registry) Get(id string) (*Page, error) {
	page, ok := r.pages[id]
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("page %q not found", id)).
			WithContext("page", id).
			Build()
	}
	return page, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.pages[id]
	return ok
}

// IDs returns page ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Pages returns the pages in registration order.
func (r *Registry) Pages() []*Page {
	out := make([]*Page, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.pages[id])
	}
	return out
}

// Len returns the number of registered pages.
func (r *Registry) Len() int { return len(r.order) }

// Anchors returns the anchors referenced by a page tree in traversal order,
// without duplicates.
func (r *Registry) Anchors(id string) ([]string, error) {
	page, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	anchors := make([]string, 0)
	_ = navmodel.Walk(page.Nodes, func(n *navmodel.PageNode, _ navmodel.Path) error {
		_, anchor := navmodel.SplitHref(n.Href)
		if anchor == "" {
			return nil
		}
		if _, dup := seen[anchor]; dup {
			return nil
		}
		seen[anchor] = struct{}{}
		anchors = append(anchors, anchor)
		return nil
	})
	return anchors, nil
}

// Lookup returns the page and the path within it of the first node declaring
// href. Pages are searched in registration order.
func (r *Registry) Lookup(href string) (string, navmodel.Path, error) {
	loc, ok := r.hrefs[href]
	if !ok {
		return "", nil, errors.NotFoundError(fmt.Sprintf("no page declares %q", href)).
			WithContext("href", href).
			Build()
	}
	return loc.id, append(navmodel.Path(nil), loc.path...), nil
}
