package doc

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUID(t *testing.T) {
	canonical := "8f14e45f-ceea-467f-a8f5-7f1f5bd2a1c0"
	assert.Equal(t, canonical, NormalizeUID(canonical).String())

	legacy := NormalizeUID("stroke-17")
	assert.Equal(t, legacy, NormalizeUID("stroke-17"))
	assert.Equal(t, uuid.Version(5), legacy.Version())
	assert.NotEqual(t, legacy, NormalizeUID("stroke-18"))
}

func TestDeriveUID(t *testing.T) {
	a := DeriveUID(0, "stroke-17")
	b := DeriveUID(0, "stroke-17")
	c := DeriveUID(1, "stroke-17")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	u, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), u.Version())
}

func TestUUIDv4Unique(t *testing.T) {
	gen := UUIDv4()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := gen()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
