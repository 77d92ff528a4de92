package world

import (
	"sort"
	"sync"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
)

// EntryKind distinguishes the two kinds of project entries.
type EntryKind int

const (
	// EntryKindSource is markup source text.
	EntryKindSource EntryKind = iota
	// EntryKindAsset is raw binary data (images, data files).
	EntryKindAsset
)

// String returns the string representation of the EntryKind.
func (k EntryKind) String() string {
	switch k {
	case EntryKindSource:
		return "source"
	case EntryKindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Store is the in-memory project file store. A VirtualID maps to at
// most one entry per kind; inserting with an existing id overwrites.
//
// The store is mutated only between background dispatches, but it is
// still guarded for safe concurrent reads.
type Store struct {
	sources map[fileid.VirtualID]string
	assets  map[fileid.VirtualID][]byte
	mutex   sync.RWMutex
}

// NewStore creates an empty project store.
func NewStore() *Store {
	return &Store{
		sources: make(map[fileid.VirtualID]string),
		assets:  make(map[fileid.VirtualID][]byte),
	}
}

// InsertSource upserts source text under id, overwriting silently.
func (s *Store) InsertSource(id fileid.VirtualID, text string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sources[id] = text
}

// InsertAsset upserts asset bytes under id, overwriting silently.
func (s *Store) InsertAsset(id fileid.VirtualID, data []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assets[id] = data
}

// ReplaceText swaps the text of an existing source entry. A replace on
// an absent id is a caller bug, not a user-facing error: it is silently
// ignored and the entry identity is preserved when present.
func (s *Store) ReplaceText(id fileid.VirtualID, text string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.sources[id]; ok {
		s.sources[id] = text
	}
}

// Remove deletes id from both maps. Idempotent.
func (s *Store) Remove(id fileid.VirtualID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sources, id)
	delete(s.assets, id)
}

// Source returns the source text stored under id.
func (s *Store) Source(id fileid.VirtualID) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	text, ok := s.sources[id]
	if !ok {
		return "", errors.NewNotFoundError("source not found").WithContext("id", string(id))
	}
	return text, nil
}

// File returns the asset bytes stored under id.
func (s *Store) File(id fileid.VirtualID) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, ok := s.assets[id]
	if !ok {
		return nil, errors.NewNotFoundError("file not found").WithContext("id", string(id))
	}
	return data, nil
}

// Contains reports whether id exists as either a source or an asset.
func (s *Store) Contains(id fileid.VirtualID) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, src := s.sources[id]
	_, ast := s.assets[id]
	return src || ast
}

// Len returns the number of entries of the given kind.
func (s *Store) Len(kind EntryKind) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if kind == EntryKindSource {
		return len(s.sources)
	}
	return len(s.assets)
}

// IDs returns all identifiers of the given kind in sorted order.
func (s *Store) IDs(kind EntryKind) []fileid.VirtualID {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var ids []fileid.VirtualID
	if kind == EntryKindSource {
		for id := range s.sources {
			ids = append(ids, id)
		}
	} else {
		for id := range s.assets {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone produces an independent deep copy of the store. Asset bytes
// are copied so the clone never aliases the original across the
// background-task boundary.
func (s *Store) Clone() *Store {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	clone := NewStore()
	for id, text := range s.sources {
		clone.sources[id] = text
	}
	for id, data := range s.assets {
		buf := make([]byte, len(data))
		copy(buf, data)
		clone.assets[id] = buf
	}
	return clone
}
