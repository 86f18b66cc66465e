package navjs

import (
	"bytes"
	"fmt"

	"github.com/buger/jsonparser"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
)

func decodeErr(what string, cause error) error {
	return errors.WrapError(cause, errors.CategorySyntax, "malformed "+what).Build()
}

func expectKind(raw []byte, open byte, what string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != open {
		return errors.SyntaxError(fmt.Sprintf("%s must start with %q", what, open)).Build()
	}
	return nil
}

// DecodeTree decodes `[ [title, href, children], ... ]`. The children element is
// null, a nested array, or the name of the script holding the children.
func DecodeTree(raw []byte) ([]*navmodel.PageNode, error) {
	if err := expectKind(raw, '[', "tree"); err != nil {
		return nil, err
	}
	return decodeNodes(raw, nil)
}

func decodeNodes(raw []byte, path navmodel.Path) ([]*navmodel.PageNode, error) {
	nodes := make([]*navmodel.PageNode, 0)
	var firstErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		p := path.Child(len(nodes))
		if dataType != jsonparser.Array {
			firstErr = fmt.Errorf("node %s: expected array, got %v", p, dataType)
			return
		}
		node, err := decodeNode(value, p)
		if err != nil {
			firstErr = err
			return
		}
		nodes = append(nodes, node)
	})
	if err == nil {
		err = firstErr
	}
	if err != nil {
		return nil, decodeErr("tree", err)
	}
	return nodes, nil
}

func decodeNode(raw []byte, path navmodel.Path) (*navmodel.PageNode, error) {
	node := &navmodel.PageNode{}
	idx := 0
	var firstErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		defer func() { idx++ }()
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		switch idx {
		case 0:
			node.Title, firstErr = stringOrNull(value, dataType)
		case 1:
			node.Href, firstErr = stringOrNull(value, dataType)
		case 2:
			switch dataType {
			case jsonparser.Null:
			case jsonparser.String:
				node.ChildrenRef, firstErr = jsonparser.ParseString(value)
			case jsonparser.Array:
				node.Children, firstErr = decodeNodes(value, path)
			default:
				firstErr = fmt.Errorf("node %s: unexpected children type %v", path, dataType)
			}
		default:
			// Newer Doxygen versions append extra members; they carry no navigation data.
		}
	})
	if err == nil {
		err = firstErr
	}
	if err != nil {
		return nil, err
	}
	if idx < 2 {
		return nil, fmt.Errorf("node %s: expected at least 2 elements, got %d", path, idx)
	}
	return node, nil
}

func stringOrNull(value []byte, dataType jsonparser.ValueType) (string, error) {
	switch dataType {
	case jsonparser.Null:
		return "", nil
	case jsonparser.String:
		return jsonparser.ParseString(value)
	default:
		return "", fmt.Errorf("expected string or null, got %v", dataType)
	}
}

// DecodeSymbols decodes a per-file member listing.
func DecodeSymbols(raw []byte) ([]navmodel.SymbolEntry, error) {
	nodes, err := DecodeTree(raw)
	if err != nil {
		return nil, err
	}
	return navmodel.FromPageNodes(nodes), nil
}

// DecodeIndexChunk decodes `{ "url": [0,1,2], ... }` in key order.
func DecodeIndexChunk(raw []byte) ([]navmodel.NavIndexEntry, error) {
	if err := expectKind(raw, '{', "index chunk"); err != nil {
		return nil, err
	}
	var entries []navmodel.NavIndexEntry
	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		url, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		if dataType != jsonparser.Array {
			return fmt.Errorf("index entry %q: expected array, got %v", url, dataType)
		}
		path := navmodel.Path{}
		var inner error
		_, err = jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, e error) {
			if inner != nil {
				return
			}
			if e != nil {
				inner = e
				return
			}
			if t != jsonparser.Number {
				inner = fmt.Errorf("index entry %q: path element is %v", url, t)
				return
			}
			n, perr := jsonparser.ParseInt(v)
			if perr != nil || n < 0 {
				inner = fmt.Errorf("index entry %q: invalid path element %s", url, v)
				return
			}
			path = append(path, int(n))
		})
		if err == nil {
			err = inner
		}
		if err != nil {
			return err
		}
		entries = append(entries, navmodel.NavIndexEntry{URL: url, Path: path})
		return nil
	})
	if err != nil {
		return nil, decodeErr("index chunk", err)
	}
	return entries, nil
}

// DecodeStringList decodes `["a", "b"]`.
func DecodeStringList(raw []byte) ([]string, error) {
	if err := expectKind(raw, '[', "string list"); err != nil {
		return nil, err
	}
	out := make([]string, 0)
	var firstErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		s, serr := stringOrNull(value, dataType)
		if serr != nil {
			firstErr = serr
			return
		}
		out = append(out, s)
	})
	if err == nil {
		err = firstErr
	}
	if err != nil {
		return nil, decodeErr("string list", err)
	}
	return out, nil
}

// DecodeString decodes a single or double quoted string literal.
func DecodeString(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != raw[len(raw)-1] || (raw[0] != '"' && raw[0] != '\'') {
		return "", errors.SyntaxError("expected quoted string").Build()
	}
	inner := raw[1 : len(raw)-1]
	if raw[0] == '\'' {
		inner = bytes.ReplaceAll(inner, []byte(`\'`), []byte(`'`))
		inner = escapeBareQuotes(inner)
	}
	s, err := jsonparser.ParseString(inner)
	if err != nil {
		return "", decodeErr("string", err)
	}
	return s, nil
}

// escapeBareQuotes escapes double quotes that are not already escaped so a
// single-quoted JS string body can be read as a JSON string body.
func escapeBareQuotes(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			out.WriteByte(b[i])
			if i+1 < len(b) {
				i++
				out.WriteByte(b[i])
			}
		case '"':
			out.WriteString(`\"`)
		default:
			out.WriteByte(b[i])
		}
	}
	return out.Bytes()
}
