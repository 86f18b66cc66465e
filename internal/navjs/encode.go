package navjs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

// TreeMode selects how children references are written.
type TreeMode int

const (
	// SplitRefs writes a node's ChildrenRef instead of its children, so the
	// children must be written to their own script.
	SplitRefs TreeMode = iota
	// Inline writes every subtree in place and drops references.
	Inline
)

// Writer emits navigation scripts in Doxygen's layout. Errors are sticky and
// reported by Err.
type Writer struct {
	w          *bufio.Writer
	err        error
	first      bool
	lastString bool
}

// NewWriter returns a Writer. A non-empty header is written as a block comment.
func NewWriter(w io.Writer, header string) *Writer {
	nw := &Writer{w: bufio.NewWriter(w), first: true}
	if header != "" {
		nw.write("/*\n")
		for _, line := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
			nw.write(" " + strings.ReplaceAll(line, "*/", "* /") + "\n")
		}
		nw.write("*/\n")
	}
	return nw
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func (w *Writer) sep() {
	if !w.first {
		w.write("\n")
	}
	w.first = false
	w.lastString = false
}

// Tree writes `var name = [...];`.
func (w *Writer) Tree(name string, nodes []*navmodel.PageNode, mode TreeMode) {
	w.sep()
	w.write("var " + name + " =\n")
	w.write(string(EncodeTree(nodes, mode)))
	w.write(";\n")
}

// StringList writes `var name = ["a", ...];` one value per line.
func (w *Writer) StringList(name string, values []string) {
	w.sep()
	w.write("var " + name + " =\n")
	w.write(string(EncodeStringList(values)))
	w.write(";\n")
}

// IndexChunk writes `var name = { "url":[0,1], ... };`.
func (w *Writer) IndexChunk(name string, entries []navmodel.NavIndexEntry) {
	w.sep()
	w.write("var " + name + " =\n")
	w.write(string(EncodeIndexChunk(entries)))
	w.write(";\n")
}

// String writes `var name = 'value';`.
func (w *Writer) String(name, value string) {
	if !w.lastString {
		w.sep()
	}
	w.write("var " + name + " = " + string(EncodeString(value)) + ";\n")
	w.lastString = true
}

// Flush writes buffered output and returns the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// EncodeTree renders the value literal of a tree.
func EncodeTree(nodes []*navmodel.PageNode, mode TreeMode) []byte {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	encodeNodes(&buf, nodes, mode, 1)
	buf.WriteString("]")
	return buf.Bytes()
}

// EncodeStringList renders a string array literal, one value per line.
func EncodeStringList(values []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, v := range values {
		buf.WriteString(quote(v))
		if i < len(values)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]")
	return buf.Bytes()
}

// EncodeIndexChunk renders an index chunk object literal in entry order.
func EncodeIndexChunk(entries []navmodel.NavIndexEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, e := range entries {
		buf.WriteString(quote(e.URL))
		buf.WriteString(":")
		buf.WriteString(encodePath(e.Path))
		if i < len(entries)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.Bytes()
}

// EncodeString renders a single quoted string literal, the form Doxygen uses
// for SYNCONMSG.
func EncodeString(value string) []byte {
	return []byte(singleQuote(value))
}

func encodeNodes(buf *bytes.Buffer, nodes []*navmodel.PageNode, mode TreeMode, depth int) {
	indent := strings.Repeat("  ", depth)
	for i, n := range nodes {
		buf.WriteString(indent)
		buf.WriteString("[ ")
		buf.WriteString(quote(n.Title))
		buf.WriteString(", ")
		if n.Href == "" {
			buf.WriteString("null")
		} else {
			buf.WriteString(quote(n.Href))
		}
		buf.WriteString(", ")
		switch {
		case mode == SplitRefs && n.ChildrenRef != "":
			buf.WriteString(quote(n.ChildrenRef))
			buf.WriteString(" ]")
		case len(n.Children) > 0:
			buf.WriteString("[\n")
			encodeNodes(buf, n.Children, mode, depth+1)
			buf.WriteString(indent)
			buf.WriteString("] ]")
		default:
			buf.WriteString("null ]")
		}
		if i < len(nodes)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
}

func encodePath(p navmodel.Path) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// quote renders s as a double quoted JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func singleQuote(s string) string {
	inner := quote(s)
	inner = inner[1 : len(inner)-1]
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, `'`, `\'`)
	return "'" + inner + "'"
}
