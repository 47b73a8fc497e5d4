package ol

type ID struct { // GUID of a log entry
	Agent string `json:"agent"`
	Seq   int    `json:"seq"`
}

func (id ID) Unpack() (string, int) {
	return id.Agent, id.Seq
}

type OpType string

const (
	Add     OpType = "ADD"
	AddList OpType = "ADD_LIST"
	Erase   OpType = "ERASE"
	Mutate  OpType = "MUTATE"
	Split   OpType = "SPLIT"
	Undo    OpType = "UNDO"
	Redo    OpType = "REDO"
)

// Stamp is a UID and timestamp produced while applying an op.
type Stamp struct {
	UID       string `json:"uid"`
	Timestamp int64  `json:"timestamp"`
}

type Pair struct {
	OriginUID string `json:"originUid"`
	PathData  string `json:"pathData"`
}

type Splitter struct {
	OriginUID string   `json:"originUid"`
	PathData  []string `json:"pathData"`
}

// Op is a tagged document operation. Only the fields meaningful for Type are set.
//
// Stamps is filled in once the op has been applied, in creation order, so that
// replaying an applied op reproduces the same UIDs and timestamps.
type Op struct {
	Type      OpType     `json:"type"`
	PathData  []string   `json:"pathData,omitempty"` // Add (one), AddList
	UIDs      []string   `json:"uids,omitempty"`     // Erase targets
	Pairs     []Pair     `json:"pairs,omitempty"`
	Splitters []Splitter `json:"splitters,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty"` // Mutate; 0 means now
	Stamps    []Stamp    `json:"stamps,omitempty"`
}

type Entry struct {
	ID ID `json:"id"`
	Op Op `json:"op"`
}

type RemoteVersion map[string]int // [agent] : last known sequence number

type Log struct {
	entries []Entry
	version RemoteVersion
}
