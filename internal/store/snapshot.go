// Package store persists snapshots of loaded navigation data in SQLite.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/navmodel"
	"git.home.luguber.info/inful/navindex/internal/site"
)

// Snapshot is one stored state of a site.
type Snapshot struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Fingerprint string     `json:"fingerprint"`
	Stats       site.Stats `json:"stats"`
	CreatedAt   time.Time  `json:"created_at"`
	Payload     []byte     `json:"-"`
}

// Payload is the JSON document stored with a snapshot.
type Payload struct {
	Tree    []*navmodel.PageNode `json:"tree"`
	Heads   []string             `json:"heads"`
	Pages   []string             `json:"pages"`
	Files   []string             `json:"files"`
	Missing []string             `json:"missing,omitempty"`
}

// Store persists snapshots.
type Store interface {
	// Save stores snap unless the latest snapshot of the same source has the
	// same fingerprint. It returns the id of the stored or existing snapshot
	// and whether a row was written.
	Save(ctx context.Context, snap *Snapshot) (string, bool, error)
	Latest(ctx context.Context, source string) (*Snapshot, error)
	List(ctx context.Context, source string, limit int) ([]*Snapshot, error)
	Get(ctx context.Context, id string) (*Snapshot, error)
	Close() error
}

// NewSnapshot captures s. The id is assigned on save.
func NewSnapshot(s *site.Site) (*Snapshot, error) {
	fp, err := site.Fingerprint(s)
	if err != nil {
		return nil, err
	}
	ix, err := s.CurrentIndex()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(Payload{
		Tree:    s.Tree.Nodes,
		Heads:   ix.Heads,
		Pages:   s.Pages.IDs(),
		Files:   s.Symbols.Files(),
		Missing: s.Missing,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "marshal snapshot payload").Build()
	}
	return &Snapshot{
		Source:      s.Dir,
		Fingerprint: fp,
		Stats:       s.Stats(),
		CreatedAt:   time.Now().UTC(),
		Payload:     payload,
	}, nil
}

// Decode unmarshals the payload.
func (s *Snapshot) Decode() (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(s.Payload, &p); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "decode snapshot payload").
			WithContext("snapshot_id", s.ID).
			Build()
	}
	return &p, nil
}

func newID() string { return uuid.NewString() }
