package ol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addOp(p string) Op { return Op{Type: Add, PathData: []string{p}} }

func TestAppendAssignsSequence(t *testing.T) {
	l := NewLog()
	e0 := Append(l, "a", addOp("p0"))
	e1 := Append(l, "a", addOp("p1"))
	b0 := Append(l, "b", addOp("q0"))

	assert.Equal(t, ID{"a", 0}, e0.ID)
	assert.Equal(t, ID{"a", 1}, e1.ID)
	assert.Equal(t, ID{"b", 0}, b0.ID)
	assert.Equal(t, RemoteVersion{"a": 1, "b": 0}, l.Version())
	assert.Equal(t, 3, l.Len())
}

func TestPushRemoteDedupes(t *testing.T) {
	l := NewLog()
	e := Entry{ID: ID{"a", 0}, Op: addOp("p")}

	assert.True(t, PushRemote(l, e))
	assert.False(t, PushRemote(l, e))
	// gap
	assert.False(t, PushRemote(l, Entry{ID: ID{"a", 2}, Op: addOp("x")}))
	assert.Equal(t, 1, l.Len())
}

func TestMergeIntoIsIdempotent(t *testing.T) {
	a, b := NewLog(), NewLog()
	Append(a, "a", addOp("p0"))
	Append(b, "b", addOp("q0"))
	Append(b, "b", addOp("q1"))

	assert.Equal(t, 2, MergeInto(a, b))
	assert.Equal(t, 0, MergeInto(a, b))
	assert.Equal(t, 1, MergeInto(b, a))
	assert.Equal(t, a.Version(), b.Version())
}

func TestSince(t *testing.T) {
	l := NewLog()
	Append(l, "a", addOp("p0"))
	Append(l, "a", addOp("p1"))
	Append(l, "b", addOp("q0"))

	got := l.Since(RemoteVersion{"a": 0})
	require.Len(t, got, 2)
	assert.Equal(t, ID{"a", 1}, got[0].ID)
	assert.Equal(t, ID{"b", 0}, got[1].ID)
}

func TestLogJSON(t *testing.T) {
	l := NewLog()
	Append(l, "a", Op{Type: Erase, UIDs: []string{"u1"}, Stamps: []Stamp{{UID: "t1", Timestamp: 7}}})
	Append(l, "a", Op{Type: Undo})

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var back Log
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, l.Entries(), back.Entries())
	assert.Equal(t, l.Version(), back.Version())

	bad := `[{"id":{"agent":"a","seq":1},"op":{"type":"UNDO"}}]`
	require.Error(t, json.Unmarshal([]byte(bad), &back))
}
