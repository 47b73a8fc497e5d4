package ol

import (
	"encoding/json"
	"fmt"

	"github.com/kevinxiao27/inkdoc/util"
)

func NewLog() *Log {
	return &Log{
		entries: []Entry{},
		version: make(RemoteVersion),
	}
}

func (l *Log) Len() int { return len(l.entries) }

func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Version() RemoteVersion {
	out := make(RemoteVersion, len(l.version))
	for agent, seq := range l.version {
		out[agent] = seq
	}
	return out
}

// Since returns the entries not covered by v.
func (l *Log) Since(v RemoteVersion) []Entry {
	return util.Filter(l.entries, func(e Entry) bool {
		last, ok := v[e.ID.Agent]
		return !ok || e.ID.Seq > last
	})
}

func lastSeq(l *Log, agent string) int {
	if v, ok := l.version[agent]; ok {
		return v
	}
	return -1
}

// Append records a local op under the agent's next sequence number.
func Append(l *Log, agent string, op Op) Entry {
	e := Entry{Op: op, ID: ID{Agent: agent, Seq: lastSeq(l, agent) + 1}}
	l.entries = append(l.entries, e)
	l.version[agent] = e.ID.Seq
	return e
}

// PushRemote appends e unless it is already included. Entries that skip a
// sequence number are refused; it reports whether e was appended.
func PushRemote(l *Log, e Entry) bool {
	agent, seq := e.ID.Unpack()
	last := lastSeq(l, agent)

	if last >= seq { // already included
		return false
	}
	if last+1 != seq {
		return false
	}

	l.entries = append(l.entries, e)
	l.version[agent] = seq
	return true
}

// MergeInto pushes every entry of src into dest and returns how many were new.
func MergeInto(dest *Log, src *Log) int {
	return util.Reduce(src.entries, func(e Entry, n int) int {
		return util.Choose(PushRemote(dest, e), n+1, n)
	}, 0)
}

func (l *Log) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.entries)
}

func (l *Log) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	out := NewLog()
	for _, e := range entries {
		if !PushRemote(out, e) {
			return fmt.Errorf("ol: entry %s/%d out of sequence", e.ID.Agent, e.ID.Seq)
		}
	}
	*l = *out
	return nil
}
