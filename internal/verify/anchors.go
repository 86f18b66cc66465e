package verify

import (
	"io"

	"golang.org/x/net/html"
)

// anchorSet holds the fragment targets declared by a page.
type anchorSet map[string]struct{}

// ExtractAnchors returns every id attribute and every name attribute of an
// <a> element in the document.
func ExtractAnchors(r io.Reader) (map[string]struct{}, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	set := make(anchorSet)
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				switch {
				case a.Key == "id" && a.Val != "":
					set[a.Val] = struct{}{}
				case a.Key == "name" && n.Data == "a" && a.Val != "":
					set[a.Val] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return set, nil
}
