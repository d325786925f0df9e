// Package profile provides the tone profile store implementations: in-memory,
// SQLite, and Redis, plus an owner-scoped list cache.
package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/ports"
)

func newProfileID() string {
	return uuid.NewString()
}

// MemoryStore is a threadsafe in-memory profile store for tests and
// development.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]ports.Profile
	seq      map[string]uint64 // insertion order, tiebreak for identical timestamps
	nextSeq  uint64
}

var _ ports.ProfileStore = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]ports.Profile),
		seq:      make(map[string]uint64),
	}
}

func (s *MemoryStore) Create(ctx context.Context, ownerID string, fields ports.ProfileFields) (ports.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := ports.Profile{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      fields.Name,
		Traits:    fields.Traits,
		Title:     fields.Title,
		Summary:   fields.Summary,
		Prompt:    fields.Prompt,
		Examples:  append([]string(nil), fields.Examples...),
		CreatedAt: time.Now().UTC(),
	}

	s.profiles[profile.ID] = profile
	s.nextSeq++
	s.seq[profile.ID] = s.nextSeq
	return cloneStored(profile), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (ports.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return ports.Profile{}, tonifyerrors.ErrNotFound
	}
	return cloneStored(profile), nil
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]ports.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ports.Profile
	for _, profile := range s.profiles {
		if profile.OwnerID == ownerID {
			result = append(result, cloneStored(profile))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return s.seq[result[i].ID] > s.seq[result[j].ID]
	})
	return result, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, update ports.ProfileUpdate) (ports.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[id]
	if !ok {
		return ports.Profile{}, tonifyerrors.ErrNotFound
	}

	update.Apply(&profile)
	s.profiles[id] = profile
	return cloneStored(profile), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return tonifyerrors.ErrNotFound
	}
	delete(s.profiles, id)
	delete(s.seq, id)
	return nil
}

func cloneStored(p ports.Profile) ports.Profile {
	cloned := p
	cloned.Examples = append([]string(nil), p.Examples...)
	return cloned
}
