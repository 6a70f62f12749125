package keyring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []*Entry {
	return []*Entry{
		{ID: "a", Key: "key-a", Secret: "secret-a", ServerPublic: "pem-a"},
		{ID: "b", Key: "key-b", Secret: "secret-b", ServerPublic: "pem-b"},
		{ID: "c", Key: "key-c", Secret: "secret-c", ServerPublic: "pem-c"},
	}
}

func TestKeyRing_Current(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)

	entry := ring.Current()
	require.NotNil(t, entry)
	assert.Equal(t, "a", entry.ID)
	assert.Equal(t, "key-a", entry.Key)
	assert.Equal(t, "secret-a", entry.Secret)
	assert.Equal(t, "pem-a", entry.ServerPublic)
}

func TestKeyRing_Current_Empty(t *testing.T) {
	ring := New(nil, RotationRoundRobin)
	assert.Nil(t, ring.Current())
}

func TestKeyRing_Rotate(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)

	ring.Rotate()
	assert.Equal(t, "b", ring.Current().ID)

	ring.Rotate()
	assert.Equal(t, "c", ring.Current().ID)

	ring.Rotate()
	assert.Equal(t, "a", ring.Current().ID)
}

func TestKeyRing_RotateSkipsDisabled(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)
	ring.Disable("b")

	ring.Rotate()
	assert.Equal(t, "c", ring.Current().ID)
}

func TestKeyRing_CurrentSkipsDisabled(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)
	ring.Disable("a")

	assert.Equal(t, "b", ring.Current().ID)
}

func TestKeyRing_AllDisabled(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)
	ring.Disable("a")
	ring.Disable("b")
	ring.Disable("c")

	assert.Nil(t, ring.Current())
}

func TestKeyRing_EnableClearsErrors(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)
	ring.OnError(errors.New("boom"))
	ring.Disable("a")
	ring.Enable("a")

	entry := ring.Current()
	assert.Equal(t, "a", entry.ID)
	assert.Zero(t, entry.ErrorCount)
}

func TestKeyRing_OnError_RotationOnError(t *testing.T) {
	ring := New(testEntries(), RotationOnError)

	ring.OnError(errors.New("boom"))
	assert.Equal(t, "b", ring.Current().ID)
}

func TestKeyRing_OnError_RoundRobinStays(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)

	ring.OnError(errors.New("boom"))
	assert.Equal(t, "a", ring.Current().ID)
	assert.Equal(t, 1, ring.Current().ErrorCount)
}

func TestKeyRing_MarkUsed(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)

	assert.True(t, ring.Current().LastUsed.IsZero())
	ring.MarkUsed()
	assert.False(t, ring.Current().LastUsed.IsZero())
}

func TestKeyRing_AddAndRemove(t *testing.T) {
	ring := New(testEntries(), RotationRoundRobin)

	ring.Add(&Entry{ID: "d", Key: "key-d"})
	ring.Add(&Entry{ID: "d", Key: "duplicate-ignored"})

	ring.Remove("a")
	ring.Remove("b")
	ring.Remove("c")

	entry := ring.Current()
	require.NotNil(t, entry)
	assert.Equal(t, "d", entry.ID)
	assert.Equal(t, "key-d", entry.Key)
}

func TestKeyRing_NewCopiesEntries(t *testing.T) {
	entries := testEntries()
	ring := New(entries, RotationRoundRobin)

	entries[0].Key = "mutated"
	assert.Equal(t, "key-a", ring.Current().Key)
}

func TestEntry_StringMasksKey(t *testing.T) {
	long := &Entry{ID: "a", Key: "abcdefghijkl"}
	assert.Equal(t, "Entry{ID:a, Key:abcd****ijkl}", long.String())

	short := &Entry{ID: "b", Key: "tiny"}
	assert.Equal(t, "Entry{ID:b, Key:****}", short.String())
}
