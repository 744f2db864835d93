package mock

import (
	"fmt"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Store is an in-memory ResourceStore that tracks live and revoked URLs.
type Store struct {
	mu      sync.Mutex
	next    int
	live    map[string]*domain.TrackData
	revoked []string
	fail    bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{live: make(map[string]*domain.TrackData)}
}

// SetFailCreate configures the mock to fail URL creation.
func (s *Store) SetFailCreate(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// CreateObjectURL registers data under a fresh mock URL.
func (s *Store) CreateObjectURL(data *domain.TrackData) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return "", domain.NewMediaError("create_object_url", data.Name, "mock create failed", nil)
	}

	s.next++
	url := fmt.Sprintf("blob:mock/%d", s.next)
	s.live[url] = data
	return url, nil
}

// RevokeObjectURL releases url.
func (s *Store) RevokeObjectURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live[url]; !ok {
		return
	}
	delete(s.live, url)
	s.revoked = append(s.revoked, url)
}

// Lookup returns the data behind a live URL.
func (s *Store) Lookup(url string) (*domain.TrackData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.live[url]
	return data, ok
}

// Live returns the number of unrevoked URLs.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Revoked returns the revoked URLs in revocation order.
func (s *Store) Revoked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.revoked...)
}

// Verify interface implementation at compile time.
var _ ports.ResourceStore = (*Store)(nil)
