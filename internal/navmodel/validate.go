package navmodel

import (
	"fmt"
	"strings"
	"unicode"
)

// Violation describes one node that breaks an invariant.
type Violation struct {
	Path   Path   `json:"path"`
	Title  string `json:"title"`
	Href   string `json:"href"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %q: %s", v.Path, v.Title, v.Reason)
}

// Reasons reported by ValidateHref.
const (
	ReasonEmptyHref      = "empty href"
	ReasonWhitespace     = "href contains whitespace"
	ReasonNotHTML        = "href does not name an .html page or anchor"
	ReasonEmptyAnchor    = "href has an empty anchor"
	ReasonOutsideSite    = "href leaves the site directory"
	ReasonExternalScheme = "href uses a URL scheme"
)

// ValidateHref returns an empty string when href is an anchor or a page
// relative to the site directory, such as "d5/d1a/structfoo.html" under
// CREATE_SUBDIRS, otherwise the reason it is not.
func ValidateHref(href string) string {
	if href == "" {
		return ReasonEmptyHref
	}
	if strings.IndexFunc(href, unicode.IsSpace) >= 0 {
		return ReasonWhitespace
	}
	page, anchor, hasAnchor := strings.Cut(href, "#")
	if hasAnchor && anchor == "" {
		return ReasonEmptyAnchor
	}
	if page == "" {
		return ""
	}
	if strings.Contains(page, ":") {
		return ReasonExternalScheme
	}
	if strings.HasPrefix(page, "/") || strings.Contains(page, `\`) {
		return ReasonOutsideSite
	}
	for _, seg := range strings.Split(page, "/") {
		if seg == "" || seg == ".." {
			return ReasonOutsideSite
		}
	}
	if !strings.HasSuffix(page, ".html") || page == ".html" {
		return ReasonNotHTML
	}
	return ""
}

// SplitHref returns the page and anchor parts of href. Either may be empty.
func SplitHref(href string) (page, anchor string) {
	page, anchor, _ = strings.Cut(href, "#")
	return page, anchor
}

// Validate checks every node and returns all violations in traversal order.
func Validate(nodes []*PageNode) []Violation {
	var out []Violation
	_ = Walk(nodes, func(n *PageNode, p Path) error {
		if reason := ValidateHref(n.Href); reason != "" {
			out = append(out, Violation{Path: append(Path(nil), p...), Title: n.Title, Href: n.Href, Reason: reason})
		}
		if strings.TrimSpace(n.Title) == "" {
			out = append(out, Violation{Path: append(Path(nil), p...), Href: n.Href, Reason: "empty title"})
		}
		return nil
	})
	return out
}

// ValidateSymbols checks a member listing.
func ValidateSymbols(entries []SymbolEntry) []Violation {
	return Validate(ToPageNodes(entries))
}
