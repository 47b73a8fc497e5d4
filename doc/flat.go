package doc

import (
	"encoding/json"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
)

var ErrInvalidFlat = errors.New("doc: invalid flat document")

// Flat is the persisted form of a document: its items, optionally followed
// by a log of operations to replay on top of them.
type Flat struct {
	Items      registry.Map[Item] `json:"items"`
	Operations *ol.Log            `json:"operations,omitempty"`
}

// Flatten drops history, undo stack and supersede index.
func Flatten(s *Snapshot) Flat {
	return Flat{Items: s.items}
}

// Load rebuilds a snapshot from f. Only the last supersede record per origin
// is kept. Logged operations are then replayed in order.
func Load(f Flat, width, height int, opts ...Option) *Snapshot {
	s := New(width, height, opts...)

	sup := map[string]string{}
	stale := mapset.NewThreadUnsafeSet[string]()
	for uid, it := range f.Items.All() {
		if it.Type != Mutate {
			continue
		}
		if prev, ok := sup[it.OriginUID]; ok {
			stale.Add(prev)
		}
		sup[it.OriginUID] = uid
	}
	s.items = f.Items.DeleteAll(stale.ToSlice()...)
	s.supersedes = sup

	if f.Operations != nil {
		for _, e := range f.Operations.Entries() {
			s = ApplyOperation(s, e.Op)
		}
	}
	return s
}

func Encode(f Flat) ([]byte, error) {
	return json.Marshal(f)
}

// Decode validates data against the flat document schema and unmarshals it.
func Decode(data []byte) (Flat, error) {
	var f Flat
	if err := validateFlat(data); err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidFlat, err)
	}
	return f, nil
}
