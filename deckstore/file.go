package deckstore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lguibr/cockatriced/deck"
	"github.com/lguibr/cockatriced/protocol"
	"github.com/sirupsen/logrus"
)

const codExtension = ".cod"

// FileStore persists each deck.List as the framer's XML encoding under
// <baseDir>/<owner>/<fileID>.cod, grounded on the Cockatrice .cod deck
// file convention. Directory listings are computed lazily from disk
// rather than cached, since the file store is meant to survive process
// restarts.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// ownerDir joins baseDir and owner, rejecting any owner that could
// escape baseDir (path separators, "..", or an empty string) rather
// than trusting callers upstream to have already sanitized it — owner
// ultimately comes from an unauthenticated client-supplied name.
func (s *FileStore) ownerDir(owner string) (string, error) {
	if owner == "" || owner == "." || owner == ".." ||
		strings.ContainsAny(owner, "/\\") || owner != filepath.Base(owner) {
		return "", ErrInvalidOwner
	}
	return filepath.Join(s.baseDir, owner), nil
}

func (s *FileStore) Put(owner, fileName string, d *deck.List) (string, error) {
	dir, err := s.ownerDir(owner)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	fileID := uuid.NewString()
	path := filepath.Join(dir, fileID+codExtension)

	var buf bytes.Buffer
	if err := protocol.Encode(protocol.NewXMLFramer(nil, &buf), deck.ToItem(d)); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	namePath := filepath.Join(dir, fileID+".name")
	if fileName != "" {
		if err := os.WriteFile(namePath, []byte(fileName), 0o644); err != nil {
			logrus.WithError(err).WithField("path", namePath).Warn("failed to persist deck file name")
		}
	}

	return fileID, nil
}

func (s *FileStore) Get(owner, fileID string) (*deck.List, error) {
	dir, err := s.ownerDir(owner)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fileID+codExtension)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	item, err := protocol.Decode(protocol.NewXMLFramer(bytes.NewReader(data), nil))
	if err != nil {
		return nil, err
	}
	return deck.FromItem(item), nil
}

func (s *FileStore) List(owner string) (*Directory, error) {
	result := &Directory{Owner: owner}

	dir, err := s.ownerDir(owner)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), codExtension) {
			continue
		}
		fileID := strings.TrimSuffix(entry.Name(), codExtension)
		fileName := s.readFileName(dir, fileID)
		result.Files = append(result.Files, DirectoryEntry{FileID: fileID, FileName: fileName})
	}
	return result, nil
}

func (s *FileStore) readFileName(dir, fileID string) string {
	data, err := os.ReadFile(filepath.Join(dir, fileID+".name"))
	if err != nil {
		return ""
	}
	return string(data)
}
