package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/navjs"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/navtree"
	"git.home.luguber.info/inful/navindex/internal/symbols"
)

// Load reads navtreedata.js from dir, resolves every children reference
// depth-first, and reads the stored navtreeindex chunks.
func Load(ctx context.Context, dir string, opts Options) (*Site, error) {
	start := time.Now()
	script, err := readScript(dir, DataScript)
	if err != nil {
		return nil, err
	}

	raw, ok := script.Lookup("NAVTREE")
	if !ok {
		return nil, errors.SyntaxError("navtreedata.js does not define NAVTREE").
			WithContext("script", DataScript).
			Build()
	}
	nodes, err := navjs.DecodeTree(raw)
	if err != nil {
		return nil, withScript(err, DataScript)
	}

	s := New(dir, navtree.FromNodes(nodes))
	if raw, ok := script.Lookup("SYNCONMSG"); ok {
		if s.SyncOn, err = navjs.DecodeString(raw); err != nil {
			return nil, withScript(err, DataScript)
		}
	}
	if raw, ok := script.Lookup("SYNCOFFMSG"); ok {
		if s.SyncOff, err = navjs.DecodeString(raw); err != nil {
			return nil, withScript(err, DataScript)
		}
	}

	l := &loader{
		ctx:    ctx,
		dir:    dir,
		opts:   opts,
		site:   s,
		loaded: make(map[string][]*navmodel.PageNode),
		stack:  make(map[string]bool),
	}
	if err := l.resolve(nodes); err != nil {
		return nil, err
	}

	if raw, ok := script.Lookup("NAVTREEINDEX"); ok {
		heads, err := navjs.DecodeStringList(raw)
		if err != nil {
			return nil, withScript(err, DataScript)
		}
		if s.Index, err = l.index(heads); err != nil {
			return nil, err
		}
	}

	slog.Debug("Loaded navigation data",
		logfields.Site(dir),
		logfields.Count(navmodel.Count(nodes)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return s, nil
}

type loader struct {
	ctx    context.Context
	dir    string
	opts   Options
	site   *Site
	loaded map[string][]*navmodel.PageNode
	stack  map[string]bool
}

func (l *loader) resolve(nodes []*navmodel.PageNode) error {
	for _, n := range nodes {
		if err := l.ctx.Err(); err != nil {
			return err
		}
		ref := n.ChildrenRef
		if ref == "" || len(n.Children) > 0 {
			if err := l.resolve(n.Children); err != nil {
				return err
			}
			continue
		}
		if l.stack[ref] {
			return errors.SyntaxError(fmt.Sprintf("children reference %q includes itself", ref)).
				WithContext("script", ref+".js").
				Build()
		}
		if children, ok := l.loaded[ref]; ok {
			n.Children = navmodel.Clone(children)
			continue
		}
		children, err := l.children(n)
		if err != nil {
			return err
		}
		if children == nil {
			continue
		}
		l.loaded[ref] = children
		n.Children = children
		l.stack[ref] = true
		err = l.resolve(children)
		delete(l.stack, ref)
		if err != nil {
			return err
		}
	}
	return nil
}

// children loads the script named by n's children reference and records it
// in the page registry or the symbol index. A nil result means the script was
// missing and the policy allowed it.
func (l *loader) children(n *navmodel.PageNode) ([]*navmodel.PageNode, error) {
	ref := n.ChildrenRef
	name := ref + ".js"
	script, err := readScript(l.dir, name)
	if err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) && l.opts.MissingScripts == config.MissingScriptWarn {
			slog.Warn("Children script missing", logfields.Script(name), logfields.Page(ref))
			l.site.Missing = append(l.site.Missing, ref)
			return nil, nil
		}
		return nil, err
	}
	raw, ok := script.Lookup(ref)
	if !ok {
		return nil, errors.SyntaxError(fmt.Sprintf("%s does not define %s", name, ref)).
			WithContext("script", name).
			Build()
	}
	children, err := navjs.DecodeTree(raw)
	if err != nil {
		return nil, withScript(err, name)
	}

	if symbols.IsFileID(ref) {
		err = l.site.Symbols.AddFile(ref, navmodel.FromPageNodes(children))
	} else {
		err = l.site.Pages.Register(ref, n.Title, n.Href, children)
	}
	if err != nil {
		return nil, err
	}
	return children, nil
}

func (l *loader) index(heads []string) (*navtree.Index, error) {
	ix := &navtree.Index{Heads: heads, Chunks: [][]navmodel.NavIndexEntry{}}
	for i := range heads {
		if err := l.ctx.Err(); err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s%d.js", indexPrefix, i)
		script, err := readScript(l.dir, name)
		if err != nil {
			if errors.HasCategory(err, errors.CategoryNotFound) && l.opts.MissingScripts == config.MissingScriptWarn {
				slog.Warn("Index chunk missing", logfields.Script(name), logfields.Chunk(i))
				l.site.Missing = append(l.site.Missing, fmt.Sprintf("%s%d", indexPrefix, i))
				ix.Chunks = append(ix.Chunks, []navmodel.NavIndexEntry{})
				continue
			}
			return nil, err
		}
		varName := fmt.Sprintf("NAVTREEINDEX%d", i)
		raw, ok := script.Lookup(varName)
		if !ok {
			return nil, errors.SyntaxError(fmt.Sprintf("%s does not define %s", name, varName)).
				WithContext("script", name).
				Build()
		}
		entries, err := navjs.DecodeIndexChunk(raw)
		if err != nil {
			return nil, withScript(err, name)
		}
		ix.Chunks = append(ix.Chunks, entries)
	}

	// Every chunk but the last is full, so a multi-chunk index records its
	// own size. The configured size only applies to single chunk indexes.
	switch {
	case len(ix.Chunks) > 1 && len(ix.Chunks[0]) > 0:
		ix.ChunkSize = len(ix.Chunks[0])
	case l.opts.ChunkSize > 0:
		ix.ChunkSize = l.opts.ChunkSize
	default:
		ix.ChunkSize = navtree.DefaultChunkSize
	}
	return ix, nil
}

func readScript(dir, name string) (*navjs.Script, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError(fmt.Sprintf("script %s not found", name)).
				WithContext("script", name).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read "+name).
			WithContext("path", path).
			Build()
	}
	script, err := navjs.Parse(data)
	if err != nil {
		return nil, withScript(err, name)
	}
	return script, nil
}

func withScript(err error, name string) error {
	if c, ok := errors.AsClassified(err); ok {
		return c.WithContext("script", name)
	}
	return err
}
