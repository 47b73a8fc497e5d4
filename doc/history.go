package doc

import "github.com/kevinxiao27/inkdoc/ol"

// stack is a persistent, most-recent-first list of snapshots.
type stack struct {
	top   *Snapshot
	next  *stack
	depth int
}

func (st *stack) len() int {
	if st == nil {
		return 0
	}
	return st.depth
}

func (st *stack) push(s *Snapshot) *stack {
	return &stack{top: s, next: st, depth: st.len() + 1}
}

func (st *stack) pop() (*Snapshot, *stack) {
	return st.top, st.next
}

// truncate keeps the limit most recent entries. Zero means unbounded.
func (st *stack) truncate(limit int) *stack {
	if limit <= 0 || st.len() <= limit {
		return st
	}
	kept := make([]*Snapshot, 0, limit)
	for cur := st; len(kept) < limit; cur = cur.next {
		kept = append(kept, cur.top)
	}
	var out *stack
	for i := len(kept) - 1; i >= 0; i-- {
		out = out.push(kept[i])
	}
	return out
}

// Undo returns the most recent history snapshot with s stashed on its undo
// stack. With no history it returns s.
func (s *Snapshot) Undo() *Snapshot {
	if s.history.len() == 0 {
		return s
	}
	prev, rest := s.history.pop()

	n := *prev
	n.history = rest
	n.undo = s.undo.push(s).truncate(s.cfg.historyLimit)
	n.lastOp = ol.Op{Type: ol.Undo}
	return &n
}

// Redo returns the snapshot stashed by the most recent Undo. With nothing
// stashed it returns s.
func (s *Snapshot) Redo() *Snapshot {
	if s.undo.len() == 0 {
		return s
	}
	next, _ := s.undo.pop()

	n := *next
	n.lastOp = ol.Op{Type: ol.Redo}
	return &n
}
