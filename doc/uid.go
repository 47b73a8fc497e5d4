package doc

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Generator produces fresh, globally unique UIDs.
type Generator func() string

// Clock returns the current time in Unix milliseconds.
type Clock func() int64

// LegacyNamespace maps UIDs that are not canonical UUIDs into UUID space
// before child UIDs are derived from them.
var LegacyNamespace = uuid.MustParse("1b671a64-40d5-491e-99b0-da01ff1f3341")

func UUIDv4() Generator {
	return uuid.NewString
}

func WallClock() Clock {
	return func() int64 { return time.Now().UnixMilli() }
}

// NormalizeUID returns uid as a UUID, hashing it into LegacyNamespace when it
// is not already one.
func NormalizeUID(uid string) uuid.UUID {
	if u, err := uuid.Parse(uid); err == nil {
		return u
	}
	return uuid.NewSHA1(LegacyNamespace, []byte(uid))
}

// DeriveUID returns the UID of the index-th piece split from parent. The
// result depends only on its inputs.
func DeriveUID(index int, parent string) string {
	return uuid.NewSHA1(NormalizeUID(parent), []byte(strconv.Itoa(index))).String()
}
