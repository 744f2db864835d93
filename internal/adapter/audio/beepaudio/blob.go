package beepaudio

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

const blobScheme = "blob:tunescope/"

// BlobStore keeps materialized track payloads addressable by blob URLs
// until they are revoked.
//
// Thread-safety: This implementation is thread-safe.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]*domain.TrackData
}

// NewBlobStore creates an empty store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]*domain.TrackData)}
}

// CreateObjectURL registers data under a fresh random URL.
func (s *BlobStore) CreateObjectURL(data *domain.TrackData) (string, error) {
	if data == nil || len(data.Payload) == 0 {
		return "", domain.NewMediaError("create_object_url", "", "empty payload", domain.ErrNotMaterializable)
	}

	var id [16]byte
	if _, err := rand.Read(id[:]); err != nil {
		return "", domain.NewMediaError("create_object_url", data.Name, "generate id", err)
	}
	url := blobScheme + hex.EncodeToString(id[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[url] = data
	return url, nil
}

// RevokeObjectURL drops the payload behind url.
func (s *BlobStore) RevokeObjectURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, url)
}

// Resolve returns the payload behind a live URL.
func (s *BlobStore) Resolve(url string) (*domain.TrackData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[url]
	return data, ok
}

// Len returns the number of live URLs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

var _ ports.ResourceStore = (*BlobStore)(nil)
