// Package source loads the inputs of a build: the spreadsheet rows of the
// current ontology and the dependency and derived terms that surround it.
//
// Spreadsheet rows come from CSV, TSV or JSON files ([ReadRows]). Dependency
// and derived terms arrive pre-resolved as a [Snapshot] from a [TermSource]:
//
//   - [FileSource]: JSON or YAML snapshot files
//   - [HTTPSource]: a term-lookup service, cached and deduplicated
//   - [MongoSource]: a MongoDB collection of stored terms
//   - [StaticSource]: a snapshot already in memory, e.g. from an API request
//
// Sources may return more terms than a diagram needs; the pruner removes
// whatever has no path to the current sheet.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/observability"
)

// ErrNotFound is returned when a source has no data for a request.
var ErrNotFound = errors.New("not found")

// Snapshot is the dependency and derived term data of one build.
type Snapshot struct {
	Dependencies []term.Term `json:"dependencies,omitempty" yaml:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Derived      []term.Term `json:"derived,omitempty" yaml:"derived,omitempty" bson:"derived,omitempty"`
}

// Len returns the number of terms in both lists.
func (s Snapshot) Len() int { return len(s.Dependencies) + len(s.Derived) }

// Merge appends the terms of o that s does not already hold. Terms are
// matched by id, or by label when the id is empty.
func (s Snapshot) Merge(o Snapshot) Snapshot {
	return Snapshot{
		Dependencies: appendNew(s.Dependencies, o.Dependencies),
		Derived:      appendNew(s.Derived, o.Derived),
	}
}

func termKey(t term.Term) string {
	if t.ID != "" {
		return "id:" + t.ID
	}
	return "label:" + t.Label
}

func appendNew(dst, src []term.Term) []term.Term {
	seen := make(map[string]bool, len(dst))
	for _, t := range dst {
		seen[termKey(t)] = true
	}
	for _, t := range src {
		if k := termKey(t); !seen[k] {
			seen[k] = true
			dst = append(dst, t)
		}
	}
	return dst
}

// TermSource supplies dependency and derived terms for the labels of a sheet.
// labels lists every term and parent label the sheet mentions; sources that
// cannot filter return everything they have.
type TermSource interface {
	// Name is the kind of source, used in logs and error messages.
	Name() string
	// Key identifies the data behind the source. Two sources with the same
	// key return the same snapshot for the same labels, so fetched snapshots
	// are cached under it.
	Key() string
	Fetch(ctx context.Context, labels []string) (Snapshot, error)
}

// identity builds a source key from its kind and the parts that locate its
// data. The parts are hashed so credentials in them never reach a cache key.
func identity(name string, parts ...string) string {
	data, _ := json.Marshal(parts)
	return name + ":" + cache.Hash(data)[:16]
}

// StaticSource returns a fixed snapshot.
type StaticSource struct {
	Snapshot Snapshot
}

// Name returns "static".
func (StaticSource) Name() string { return "static" }

// Key hashes the snapshot content.
func (s StaticSource) Key() string {
	data, _ := json.Marshal(s.Snapshot)
	return identity("static", string(data))
}

// Fetch returns the snapshot regardless of labels.
func (s StaticSource) Fetch(context.Context, []string) (Snapshot, error) { return s.Snapshot, nil }

// Multi queries several sources in order and merges their snapshots. Earlier
// sources win when two return the same term.
type Multi []TermSource

// Name returns "multi".
func (m Multi) Name() string { return "multi" }

// Key combines the keys of every source in order.
func (m Multi) Key() string {
	keys := make([]string, len(m))
	for i, s := range m {
		keys[i] = s.Key()
	}
	return identity("multi", keys...)
}

// Fetch merges the snapshots of every source, stopping at the first error.
func (m Multi) Fetch(ctx context.Context, labels []string) (Snapshot, error) {
	var out Snapshot
	for _, s := range m {
		snap, err := Fetch(ctx, s, labels)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s: %w", s.Name(), err)
		}
		out = out.Merge(snap)
	}
	return out, nil
}

// Fetch calls s.Fetch and reports the call to the source hooks.
func Fetch(ctx context.Context, s TermSource, labels []string) (Snapshot, error) {
	hooks := observability.Source()
	query := fmt.Sprintf("%d labels", len(labels))
	hooks.OnFetch(ctx, s.Name(), query)
	start := time.Now()
	snap, err := s.Fetch(ctx, labels)
	hooks.OnFetchComplete(ctx, s.Name(), query, snap.Len(), time.Since(start), err)
	return snap, err
}

// Labels returns every distinct term and parent label of terms, in first
// appearance order.
func Labels(terms []term.Term) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(l string) {
		if l != "" && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, t := range terms {
		add(t.Label)
		for _, p := range t.Parents {
			add(p.Label)
		}
	}
	return out
}
