package deckstore

import (
	"errors"

	"github.com/lguibr/cockatriced/deck"
)

var (
	ErrNotFound     = errors.New("deckstore: file not found")
	ErrInvalidOwner = errors.New("deckstore: invalid owner")
)

// Directory lists an owner's stored decks, one entry per uploaded file.
type Directory struct {
	Owner string
	Files []DirectoryEntry
}

// DirectoryEntry is one deck blob's listing metadata.
type DirectoryEntry struct {
	FileID   string
	FileName string
}

// Store persists deck blobs, content-addressed by an opaque file id
// assigned at upload time. Blobs are immutable once uploaded — Put never
// overwrites an existing id, it only ever mints a new one.
type Store interface {
	Put(owner, fileName string, d *deck.List) (fileID string, err error)
	Get(owner, fileID string) (*deck.List, error)
	List(owner string) (*Directory, error)
}
