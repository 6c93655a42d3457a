package auth

import (
	"context"
	"sync"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/core/clock"
	"github.com/google/uuid"
)

// SessionStore maps opaque session tokens to usernames. It is an injected
// dependency, never ambient process state, so a multi-instance deployment
// can swap the in-memory implementation for the redis one.
type SessionStore interface {
	// Create issues a fresh token bound to username.
	Create(ctx context.Context, username string) (string, error)
	// Resolve returns the username for a live token and refreshes its
	// inactivity window.
	Resolve(ctx context.Context, token string) (string, error)
	// Delete invalidates a token (logout).
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	username  string
	expiresAt time.Time
}

// MemoryStore keeps sessions in a mutex-guarded map with a fixed inactivity
// TTL. Expired entries are dropped lazily on Resolve and by a background
// sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   clock.Clock
	done    chan struct{}
}

func NewMemoryStore(ttl time.Duration, clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.System()
	}
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   clk,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Create(_ context.Context, username string) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.entries[token] = memoryEntry{username: username, expiresAt: s.clock.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return "", internal.ErrUnauthenticated
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return "", internal.ErrSessionExpired
	}
	entry.expiresAt = s.clock.Now().Add(s.ttl)
	s.entries[token] = entry
	return entry.username, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() {
	close(s.done)
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := s.clock.Now()
			s.mu.Lock()
			for token, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
