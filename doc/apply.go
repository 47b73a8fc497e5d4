package doc

import "github.com/kevinxiao27/inkdoc/ol"

// ApplyOperation applies op to s. Unknown op types leave s unchanged.
func ApplyOperation(s *Snapshot, op ol.Op) *Snapshot {
	switch op.Type {
	case ol.Add:
		return s.add(op)
	case ol.AddList:
		return s.addList(op, nil)
	case ol.Erase:
		return s.erase(op)
	case ol.Mutate:
		return s.mutate(op)
	case ol.Split:
		return s.split(op)
	case ol.Undo:
		return s.Undo()
	case ol.Redo:
		return s.Redo()
	default:
		return s
	}
}
