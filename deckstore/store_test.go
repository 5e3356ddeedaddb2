package deckstore

import (
	"testing"

	"github.com/lguibr/cockatriced/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDeck() *deck.List {
	l := deck.New()
	l.AddCard("main", "Plains", 4)
	l.AddCard("side", "Naturalize", 2)
	return l
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()

	fileID, err := s.Put("alice", "mono-white", sampleDeck())
	require.NoError(t, err)
	require.NotEmpty(t, fileID)

	got, err := s.Get("alice", fileID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalCards("main"))
}

func TestMemoryStoreGetUnknownReturnsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get("alice", "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListReflectsUploads(t *testing.T) {
	s := NewMemoryStore()
	fileID, err := s.Put("alice", "mono-white", sampleDeck())
	require.NoError(t, err)

	dir, err := s.List("alice")
	require.NoError(t, err)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, fileID, dir.Files[0].FileID)
	assert.Equal(t, "mono-white", dir.Files[0].FileName)
}

func TestFileStorePutGetRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())

	fileID, err := s.Put("alice", "mono-white", sampleDeck())
	require.NoError(t, err)

	got, err := s.Get("alice", fileID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalCards("main"))
	assert.Equal(t, 2, got.TotalCards("side"))
}

func TestFileStoreListUnknownOwnerIsEmpty(t *testing.T) {
	s := NewFileStore(t.TempDir())
	dir, err := s.List("nobody")
	require.NoError(t, err)
	assert.Empty(t, dir.Files)
}

func TestFileStoreRejectsPathTraversalOwner(t *testing.T) {
	s := NewFileStore(t.TempDir())

	traversalOwners := []string{"../escaped", "..", ".", "", "a/b", "a\\b"}
	for _, owner := range traversalOwners {
		_, err := s.Put(owner, "deck", sampleDeck())
		assert.ErrorIs(t, err, ErrInvalidOwner, "owner %q should be rejected", owner)

		_, err = s.Get(owner, "some-file-id")
		assert.ErrorIs(t, err, ErrInvalidOwner, "owner %q should be rejected", owner)

		_, err = s.List(owner)
		assert.ErrorIs(t, err, ErrInvalidOwner, "owner %q should be rejected", owner)
	}
}
