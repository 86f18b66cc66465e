// Package mdnav builds navigation trees from a directory of Markdown pages.
package mdnav

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// ParsePage turns one Markdown document into a page node. The first level one
// heading names the page; when there is none, fallback does. Every other
// heading becomes an anchor node nested by level.
func ParsePage(slug, fallback string, body []byte) *navmodel.PageNode {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	root := md.Parser().Parse(text.NewReader(body))

	href := slug + ".html"
	page := &navmodel.PageNode{Title: fallback, Href: href}

	type frame struct {
		level int
		node  *navmodel.PageNode
	}
	stack := []frame{{level: 0, node: page}}
	titled := false

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*gmast.Heading)
		if !ok {
			continue
		}
		title := plainText(h, body)
		if h.Level == 1 && !titled {
			titled = true
			if title != "" {
				page.Title = title
			}
			continue
		}
		id, _ := h.AttributeString("id")
		anchor, _ := id.([]byte)
		node := &navmodel.PageNode{Title: title, Href: href + "#" + string(anchor)}
		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, frame{level: h.Level, node: node})
	}
	return page
}

func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// Slug turns a path relative to the import root into a page name:
// "guides/wifi-setup.md" becomes "guides_wifi_setup".
func Slug(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	var b strings.Builder
	for _, r := range strings.ToLower(rel) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isIndex(name string) bool {
	lower := strings.ToLower(name)
	return lower == "index.md" || lower == "readme.md"
}

// Build walks dir and returns one node per Markdown file. Entries are sorted
// lexically with index.md and README.md first; a subdirectory becomes a node
// holding its pages and linking to its index page, or to its first page when
// it has none.
func Build(dir string) ([]*navmodel.PageNode, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError(fmt.Sprintf("markdown directory %s not found", dir)).
				WithContext("path", dir).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "stat markdown directory").
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.ValidationError(fmt.Sprintf("%s is not a directory", dir)).Build()
	}
	nodes, _, err := buildDir(dir, "")
	return nodes, err
}

// buildDir also reports whether the first node is the directory's index page.
func buildDir(root, rel string) ([]*navmodel.PageNode, bool, error) {
	full := filepath.Join(root, rel)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryFileSystem, "read markdown directory").
			WithContext("path", full).
			Build()
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Name(), entries[j].Name()
		if isIndex(a) != isIndex(b) {
			return isIndex(a)
		}
		return a < b
	})

	nodes := make([]*navmodel.PageNode, 0, len(entries))
	hasIndex := false
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		childRel := filepath.Join(rel, name)
		if e.IsDir() {
			children, indexed, err := buildDir(root, childRel)
			if err != nil {
				return nil, false, err
			}
			if len(children) == 0 {
				continue
			}
			nodes = append(nodes, directoryNode(name, children, indexed))
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(root, childRel))
		if err != nil {
			return nil, false, errors.WrapError(err, errors.CategoryFileSystem, "read markdown page").
				WithContext("path", childRel).
				Build()
		}
		if len(nodes) == 0 && isIndex(name) {
			hasIndex = true
		}
		fallback := strings.TrimSuffix(name, filepath.Ext(name))
		nodes = append(nodes, ParsePage(Slug(childRel), fallback, body))
	}
	return nodes, hasIndex, nil
}

// directoryNode folds a directory's index page into the directory node itself.
func directoryNode(name string, children []*navmodel.PageNode, indexed bool) *navmodel.PageNode {
	first := children[0]
	if indexed {
		return &navmodel.PageNode{
			Title:    first.Title,
			Href:     first.Href,
			Children: append(first.Children, children[1:]...),
		}
	}
	return &navmodel.PageNode{Title: name, Href: first.Href, Children: children}
}
