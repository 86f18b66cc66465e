package site

import (
	"fmt"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/navindex/internal/navjs"
)

// Fingerprint returns a content fingerprint of the canonical encoding of s
// and of its stored index as loaded. Headers, the site directory and load
// time do not contribute.
func Fingerprint(s *Site) (string, error) {
	files, _, err := Render(s, Options{})
	if err != nil {
		return "", err
	}
	st := s.Stats()
	summary := fmt.Sprintf("nodes: %d\nlinked: %d\npages: %d\nsymbols: %d", st.Nodes, st.Linked, st.Pages, st.Symbols)

	var body strings.Builder
	for _, f := range files {
		body.WriteString("// ")
		body.WriteString(f.Name)
		body.WriteString("\n")
		body.Write(f.Data)
	}
	body.WriteString("// stored index\n")
	if s.Index != nil {
		fmt.Fprintf(&body, "chunk size %d\n", s.Index.ChunkSize)
		body.Write(navjs.EncodeStringList(s.Index.Heads))
		for _, c := range s.Index.Chunks {
			body.WriteString("\n")
			body.Write(navjs.EncodeIndexChunk(c))
		}
	}
	return mdfp.CalculateFingerprintFromParts(summary, body.String()), nil
}
