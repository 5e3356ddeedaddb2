package deckstore

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lguibr/cockatriced/deck"
)

type memoryEntry struct {
	fileName string
	deck     *deck.List
}

// MemoryStore is a process-lifetime Store, used in tests;
// cmd/cockatriced always uses a FileStore.
type MemoryStore struct {
	mu      sync.RWMutex
	byOwner map[string]map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byOwner: make(map[string]map[string]memoryEntry)}
}

func (s *MemoryStore) Put(owner, fileName string, d *deck.List) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, ok := s.byOwner[owner]
	if !ok {
		files = make(map[string]memoryEntry)
		s.byOwner[owner] = files
	}

	fileID := uuid.NewString()
	files[fileID] = memoryEntry{fileName: fileName, deck: d}
	return fileID, nil
}

func (s *MemoryStore) Get(owner, fileID string) (*deck.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, ok := s.byOwner[owner]
	if !ok {
		return nil, ErrNotFound
	}
	entry, ok := files[fileID]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.deck, nil
}

func (s *MemoryStore) List(owner string) (*Directory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := &Directory{Owner: owner}
	for fileID, entry := range s.byOwner[owner] {
		dir.Files = append(dir.Files, DirectoryEntry{FileID: fileID, FileName: entry.fileName})
	}
	return dir, nil
}
