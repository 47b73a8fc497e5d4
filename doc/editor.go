package doc

import (
	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
)

// Editor is one author's view of a document. It applies local operations one
// at a time and records each effective one in an operation log.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	agent string
	base  registry.Map[Item]
	cur   *Snapshot
	log   *ol.Log
}

// NewEditor starts an editor at s. History that s already carries is not
// reproduced when Flat is replayed.
func NewEditor(agent string, s *Snapshot) *Editor {
	return &Editor{agent: agent, base: s.items, cur: s, log: ol.NewLog()}
}

// ResumeEditor replays f and continues its operation log as agent. Replay
// rebuilds history, so undo reaches back past the resume point.
func ResumeEditor(agent string, f Flat, width, height int, opts ...Option) *Editor {
	log := ol.NewLog()
	if f.Operations != nil {
		ol.MergeInto(log, f.Operations)
	}
	return &Editor{agent: agent, base: f.Items, cur: Load(f, width, height, opts...), log: log}
}

func (e *Editor) Agent() string       { return e.agent }
func (e *Editor) Snapshot() *Snapshot { return e.cur }
func (e *Editor) Log() *ol.Log        { return e.log }

// Apply applies op and logs it unless it was a no-op. It returns the new
// current snapshot and whether anything changed. Any Stamps on op are
// discarded; use Load or ResumeEditor to replay recorded ops.
func (e *Editor) Apply(op ol.Op) (*Snapshot, bool) {
	return e.apply(op, nil)
}

func (e *Editor) apply(op ol.Op, onUIDs func([]string)) (*Snapshot, bool) {
	// Stamps are only honored on replay; local edits always get fresh UIDs.
	op.Stamps = nil

	var next *Snapshot
	if op.Type == ol.AddList {
		next = e.cur.addList(op, onUIDs)
	} else {
		next = ApplyOperation(e.cur, op)
	}
	if next == e.cur {
		return next, false
	}
	ol.Append(e.log, e.agent, next.LastOperation())
	e.cur = next
	return next, true
}

func (e *Editor) Add(pathData string) *Snapshot {
	s, _ := e.Apply(ol.Op{Type: ol.Add, PathData: []string{pathData}})
	return s
}

func (e *Editor) AddList(pathData []string, onUIDs func([]string)) *Snapshot {
	s, _ := e.apply(ol.Op{Type: ol.AddList, PathData: pathData}, onUIDs)
	return s
}

func (e *Editor) Erase(uids []string) *Snapshot {
	s, _ := e.Apply(ol.Op{Type: ol.Erase, UIDs: uids})
	return s
}

func (e *Editor) Undo() *Snapshot {
	s, _ := e.Apply(ol.Op{Type: ol.Undo})
	return s
}

func (e *Editor) Redo() *Snapshot {
	s, _ := e.Apply(ol.Op{Type: ol.Redo})
	return s
}

// Flat returns the items the editor started from plus its log, which Load
// replays into the current items.
func (e *Editor) Flat() Flat {
	return Flat{Items: e.base, Operations: e.log}
}
