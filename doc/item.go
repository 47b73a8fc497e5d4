package doc

type ItemType string

const (
	Stroke ItemType = "STROKE"
	Hide   ItemType = "HIDE"   // tombstone
	Mutate ItemType = "MUTATE" // supersede record
)

// Item is one entry of a document. PathData is set for strokes and supersede
// records, OriginUID for tombstones and supersede records.
type Item struct {
	Type      ItemType `json:"type"`
	UID       string   `json:"uid"`
	Timestamp int64    `json:"timestamp"`
	PathData  string   `json:"pathData,omitempty"`
	OriginUID string   `json:"originUid,omitempty"`
}

func NewStroke(uid, pathData string, ts int64) Item {
	return Item{Type: Stroke, UID: uid, PathData: pathData, Timestamp: ts}
}

func NewTombstone(uid, origin string, ts int64) Item {
	return Item{Type: Hide, UID: uid, OriginUID: origin, Timestamp: ts}
}

func NewSupersede(uid, origin, pathData string, ts int64) Item {
	return Item{Type: Mutate, UID: uid, OriginUID: origin, PathData: pathData, Timestamp: ts}
}
