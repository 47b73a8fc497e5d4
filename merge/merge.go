// Package merge combines the item streams of several independently edited
// snapshots into one render-ready set of strokes.
package merge

import (
	"container/heap"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kevinxiao27/inkdoc/doc"
	"github.com/kevinxiao27/inkdoc/registry"
	"github.com/kevinxiao27/inkdoc/util"
)

// Merge merges the items of snaps. See Streams. Nil snapshots are skipped
// and do not take a source index.
func Merge(snaps ...*doc.Snapshot) registry.Map[doc.Item] {
	snaps = util.Filter(snaps, func(s *doc.Snapshot) bool { return s != nil })
	streams := util.MapN(snaps, func(s *doc.Snapshot) (registry.Map[doc.Item], error) {
		return s.Items(), nil
	})
	return Streams(streams...)
}

// Streams walks every stream in insertion order and consumes items globally
// ordered by (timestamp, stream index). Strokes are inserted, tombstones
// remove their origin for good, and supersede records replace the payload of
// an origin already present, keeping its UID and position. Supersede records
// for an unknown origin are dropped.
//
// The result holds strokes only. The inputs are not modified.
func Streams(streams ...registry.Map[doc.Item]) registry.Map[doc.Item] {
	q := make(queue, 0, len(streams))
	for i, items := range streams {
		c := &cursor{src: i, keys: items.Keys(), items: items}
		if c.valid() {
			q = append(q, c)
		}
	}
	heap.Init(&q)

	out := newView()
	removed := mapset.NewThreadUnsafeSet[string]()

	for q.Len() > 0 {
		c := q[0]
		it := c.head()

		switch it.Type {
		case doc.Stroke:
			if !removed.Contains(it.UID) {
				out.set(it)
			}
		case doc.Hide:
			removed.Add(it.OriginUID)
			out.remove(it.OriginUID)
		case doc.Mutate:
			if origin, ok := out.live[it.OriginUID]; ok {
				origin.PathData = it.PathData
				out.set(origin)
			}
		}

		c.pos++
		if c.valid() {
			heap.Fix(&q, 0)
		} else {
			heap.Pop(&q)
		}
	}
	return out.registry()
}

type cursor struct {
	src   int
	keys  []string
	items registry.Map[doc.Item]
	pos   int
}

func (c *cursor) valid() bool { return c.pos < len(c.keys) }

func (c *cursor) head() doc.Item {
	it, _ := c.items.Get(c.keys[c.pos])
	return it
}

// queue is a min-heap of cursors keyed by (head timestamp, source index).
type queue []*cursor

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	a, b := q[i].head().Timestamp, q[j].head().Timestamp
	if a != b {
		return a < b
	}
	return q[i].src < q[j].src
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*cursor)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return c
}

// view is the mutable merge result. Removed keys stay in order and are
// skipped when the registry is built; a removed UID is never set again.
type view struct {
	order []string
	live  map[string]doc.Item
}

func newView() *view {
	return &view{live: map[string]doc.Item{}}
}

func (v *view) set(it doc.Item) {
	if _, ok := v.live[it.UID]; !ok {
		v.order = append(v.order, it.UID)
	}
	v.live[it.UID] = it
}

func (v *view) remove(uid string) { delete(v.live, uid) }

func (v *view) registry() registry.Map[doc.Item] {
	b := registry.NewBuilder[doc.Item](len(v.live))
	for _, uid := range v.order {
		if it, ok := v.live[uid]; ok {
			b.Set(uid, it)
		}
	}
	return b.Map()
}
