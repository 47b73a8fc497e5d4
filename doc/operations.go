package doc

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
)

// Add appends one stroke.
func (s *Snapshot) Add(pathData string) *Snapshot {
	return s.add(ol.Op{Type: ol.Add, PathData: []string{pathData}})
}

// AddList appends one stroke per payload without a history checkpoint.
// onUIDs, if set, receives the new UIDs before the strokes are committed.
func (s *Snapshot) AddList(pathData []string, onUIDs func([]string)) *Snapshot {
	return s.addList(ol.Op{Type: ol.AddList, PathData: pathData}, onUIDs)
}

// Erase removes the given UIDs. A UID not present locally gets a tombstone
// instead, so that it stays removed once merged with the stream that owns it.
func (s *Snapshot) Erase(uids []string) *Snapshot {
	return s.erase(ol.Op{Type: ol.Erase, UIDs: uids})
}

// Mutate records a replacement payload for each origin. ts == 0 means now.
func (s *Snapshot) Mutate(pairs []ol.Pair, ts int64) *Snapshot {
	return s.mutate(ol.Op{Type: ol.Mutate, Pairs: pairs, Timestamp: ts})
}

// Split replaces each listed stroke with strokes derived from it. Split pushes
// history but leaves the undo stack as is.
func (s *Snapshot) Split(splitters []ol.Splitter) *Snapshot {
	return s.split(ol.Op{Type: ol.Split, Splitters: splitters})
}

func (s *Snapshot) add(op ol.Op) *Snapshot {
	if len(op.PathData) == 0 {
		return s
	}
	st := s.stamper(op)
	stamp := st.next(0)

	items := s.items.Set(stamp.UID, NewStroke(stamp.UID, op.PathData[0], stamp.Timestamp))

	op.PathData = op.PathData[:1]
	op.Stamps = st.used
	return s.commit(items, s.supersedes, op, true)
}

func (s *Snapshot) addList(op ol.Op, onUIDs func([]string)) *Snapshot {
	if len(op.PathData) == 0 {
		return s
	}
	st := s.stamper(op)
	uids := make([]string, len(op.PathData))
	added := registry.NewBuilder[Item](len(op.PathData))
	for i, p := range op.PathData {
		stamp := st.next(0)
		uids[i] = stamp.UID
		added.Set(stamp.UID, NewStroke(stamp.UID, p, stamp.Timestamp))
	}
	if onUIDs != nil {
		onUIDs(uids)
	}

	op.Stamps = st.used
	n := *s
	n.items = s.items.SetAll(added.Map())
	n.lastOp = op
	return &n
}

func (s *Snapshot) erase(op ol.Op) *Snapshot {
	if len(op.UIDs) == 0 {
		return s
	}
	st := s.stamper(op)
	seen := mapset.NewThreadUnsafeSet[string]()
	present := []string{}
	tombstones := registry.NewBuilder[Item](0)

	for _, uid := range op.UIDs {
		if !seen.Add(uid) {
			continue
		}
		if s.items.Has(uid) {
			present = append(present, uid)
			continue
		}
		stamp := st.next(0)
		tombstones.Set(stamp.UID, NewTombstone(stamp.UID, uid, stamp.Timestamp))
	}

	op.Stamps = st.used
	return s.commit(s.items.DeleteAll(present...).SetAll(tombstones.Map()), s.supersedes, op, true)
}

func (s *Snapshot) mutate(op ol.Op) *Snapshot {
	if len(op.Pairs) == 0 {
		return s
	}
	st := s.stamper(op)
	items := s.items
	sup := s.copySupersedes()

	for _, p := range op.Pairs {
		stamp := st.next(op.Timestamp)
		if prev, ok := sup[p.OriginUID]; ok {
			items = items.Delete(prev)
		}
		sup[p.OriginUID] = stamp.UID
		items = items.Set(stamp.UID, NewSupersede(stamp.UID, p.OriginUID, p.PathData, stamp.Timestamp))

		// The origin must not sort after its own supersede record.
		if origin, ok := items.Get(p.OriginUID); ok && origin.Timestamp > stamp.Timestamp {
			origin.Timestamp = stamp.Timestamp
			items = items.Set(origin.UID, origin)
		}
	}

	op.Stamps = st.used
	return s.commit(items, sup, op, true)
}

func (s *Snapshot) split(op ol.Op) *Snapshot {
	if len(op.Splitters) == 0 {
		return s
	}
	pieces := make(map[string][]string, len(op.Splitters))
	for _, sp := range op.Splitters {
		pieces[sp.OriginUID] = sp.PathData
	}

	items := registry.NewBuilder[Item](s.items.Len())
	for uid, it := range s.items.All() {
		parts, ok := pieces[uid]
		if !ok || it.Type != Stroke {
			items.Set(uid, it)
			continue
		}
		for i, p := range parts {
			child := DeriveUID(i, uid)
			items.Set(child, NewStroke(child, p, it.Timestamp))
		}
	}

	return s.commit(items.Map(), s.supersedes, op, false)
}
