// Package doc holds the immutable document model of a drawing surface:
// items, snapshots, the operations that derive one snapshot from another,
// undo/redo history and the flat persisted form.
//
// A *Snapshot is never modified after construction. Every operation returns
// a new snapshot (or the receiver itself when the operation is a no-op).
package doc

import (
	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
)

type settings struct {
	clock        Clock
	gen          Generator
	historyLimit int
}

type Option func(*settings)

func WithClock(c Clock) Option { return func(s *settings) { s.clock = c } }

func WithGenerator(g Generator) Option { return func(s *settings) { s.gen = g } }

// WithHistoryLimit caps both the history and the undo stack at n entries,
// dropping the oldest. Zero means unbounded.
func WithHistoryLimit(n int) Option { return func(s *settings) { s.historyLimit = n } }

type Snapshot struct {
	items      registry.Map[Item]
	supersedes map[string]string // originUid -> live supersede UID
	undo       *stack
	history    *stack
	lastOp     ol.Op
	width      int
	height     int
	cfg        *settings
}

// New returns an empty document with fixed page dimensions.
func New(width, height int, opts ...Option) *Snapshot {
	cfg := &settings{clock: WallClock(), gen: UUIDv4()}
	for _, o := range opts {
		o(cfg)
	}
	return &Snapshot{
		items:      registry.New[Item](),
		supersedes: map[string]string{},
		width:      width,
		height:     height,
		cfg:        cfg,
	}
}

func (s *Snapshot) Items() registry.Map[Item] { return s.items }
func (s *Snapshot) Width() int                { return s.width }
func (s *Snapshot) Height() int               { return s.height }
func (s *Snapshot) HistoryLimit() int         { return s.cfg.historyLimit }
func (s *Snapshot) HistoryDepth() int         { return s.history.len() }
func (s *Snapshot) UndoDepth() int            { return s.undo.len() }

// LastOperation is the op that produced s, with the UIDs and timestamps it
// generated. The zero Op for a fresh or loaded document.
func (s *Snapshot) LastOperation() ol.Op { return s.lastOp }

// IsOwn reports whether uid was created in this snapshot's lineage, as
// opposed to one only known through a peer.
func (s *Snapshot) IsOwn(uid string) bool { return s.items.Has(uid) }

// SupersedeFor returns the live supersede record for origin, if any.
func (s *Snapshot) SupersedeFor(origin string) (Item, bool) {
	uid, ok := s.supersedes[origin]
	if !ok {
		return Item{}, false
	}
	return s.items.Get(uid)
}

// Strokes returns the stroke items in paint order.
func (s *Snapshot) Strokes() []Item {
	out := []Item{}
	for _, it := range s.items.All() {
		if it.Type == Stroke {
			out = append(out, it)
		}
	}
	return out
}

// Equal compares item content only; history and last op are ignored. Two nil
// snapshots are equal.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.width == o.width && s.height == o.height &&
		s.items.Equal(o.items, func(a, b Item) bool { return a == b })
}

// commit derives the snapshot following s for a content-changing op.
func (s *Snapshot) commit(items registry.Map[Item], sup map[string]string, op ol.Op, clearUndo bool) *Snapshot {
	n := *s
	n.items = items
	n.supersedes = sup
	n.history = s.history.push(s).truncate(s.cfg.historyLimit)
	if clearUndo {
		n.undo = nil
	}
	n.lastOp = op
	return &n
}

func (s *Snapshot) copySupersedes() map[string]string {
	out := make(map[string]string, len(s.supersedes)+1)
	for k, v := range s.supersedes {
		out[k] = v
	}
	return out
}

// stamper hands out UIDs and timestamps, reusing those recorded on an
// already-applied op before generating fresh ones.
type stamper struct {
	cfg  *settings
	pre  []ol.Stamp
	used []ol.Stamp
}

func (s *Snapshot) stamper(op ol.Op) *stamper {
	return &stamper{cfg: s.cfg, pre: op.Stamps}
}

// next returns the next stamp; ts overrides the clock when non-zero.
func (st *stamper) next(ts int64) ol.Stamp {
	var out ol.Stamp
	if i := len(st.used); i < len(st.pre) {
		out = st.pre[i]
	} else {
		out = ol.Stamp{UID: st.cfg.gen(), Timestamp: ts}
		if ts == 0 {
			out.Timestamp = st.cfg.clock()
		}
	}
	st.used = append(st.used, out)
	return out
}
