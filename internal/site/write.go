package site

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/navjs"
	"git.home.luguber.info/inful/navindex/internal/navtree"
)

// File is one generated script.
type File struct {
	Name string
	Data []byte
}

// Render generates every navigation script of s with a freshly built index.
// Children references listed in s.Missing are not rendered.
func Render(s *Site, opts Options) ([]File, *navtree.Index, error) {
	ix, err := s.Tree.BuildIndex(opts.chunkSize(s.Index))
	if err != nil {
		return nil, nil, err
	}
	missing := make(map[string]bool, len(s.Missing))
	for _, m := range s.Missing {
		missing[m] = true
	}

	var files []File
	render := func(name string, fn func(w *navjs.Writer)) error {
		var buf bytes.Buffer
		w := navjs.NewWriter(&buf, opts.Header)
		fn(w)
		if err := w.Flush(); err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "render "+name).Build()
		}
		files = append(files, File{Name: name, Data: buf.Bytes()})
		return nil
	}

	syncOn, syncOff := s.SyncOn, s.SyncOff
	if syncOn == "" {
		syncOn = DefaultSyncOn
	}
	if syncOff == "" {
		syncOff = DefaultSyncOff
	}
	if err := render(DataScript, func(w *navjs.Writer) {
		w.Tree("NAVTREE", s.Tree.Nodes, navjs.SplitRefs)
		w.StringList("NAVTREEINDEX", ix.Heads)
		w.String("SYNCONMSG", syncOn)
		w.String("SYNCOFFMSG", syncOff)
	}); err != nil {
		return nil, nil, err
	}

	for _, ref := range s.Tree.Refs() {
		if missing[ref] {
			continue
		}
		nodes, _ := s.Tree.Subtree(ref)
		if err := render(ref+".js", func(w *navjs.Writer) {
			w.Tree(ref, nodes, navjs.SplitRefs)
		}); err != nil {
			return nil, nil, err
		}
	}

	for i, chunk := range ix.Chunks {
		if err := render(fmt.Sprintf("%s%d.js", indexPrefix, i), func(w *navjs.Writer) {
			w.IndexChunk(fmt.Sprintf("NAVTREEINDEX%d", i), chunk)
		}); err != nil {
			return nil, nil, err
		}
	}
	return files, ix, nil
}

// WriteResult describes a completed write.
type WriteResult struct {
	Files   []string
	Removed []string
	Index   *navtree.Index
}

var chunkFileRe = regexp.MustCompile(`^navtreeindex(\d+)\.js$`)

// Write renders s into dir. Each file is written to a temporary name and
// renamed into place; index chunks beyond the new chunk count are removed.
func Write(dir string, s *Site, opts Options) (*WriteResult, error) {
	files, ix, err := Render(s, opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create site directory").
			WithContext("path", dir).
			Build()
	}

	res := &WriteResult{Index: ix}
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(dir, f.Name), f.Data); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f.Name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "list site directory").
			WithContext("path", dir).
			Build()
	}
	for _, e := range entries {
		m := chunkFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n < len(ix.Chunks) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "remove stale index chunk").
				WithContext("path", e.Name()).
				Build()
		}
		res.Removed = append(res.Removed, e.Name())
	}

	slog.Info("Wrote navigation data",
		logfields.Site(dir),
		logfields.Count(len(res.Files)),
		slog.Int("removed", len(res.Removed)))
	return res, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write temporary file").
			WithContext("path", tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "rename into place").
			WithContext("path", path).
			Build()
	}
	return nil
}
