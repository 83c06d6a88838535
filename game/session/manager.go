package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/ledger"
)

// Manager is the registry of live sessions plus the handle to durable storage
type Manager struct {
	sessions  map[string]*Session
	snapshots SnapshotStore
	scores    ledger.Ledger
	newRand   func() *mathrand.Rand
	mu        sync.RWMutex
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithRandFactory gives every new or loaded board its own random source
func WithRandFactory(f func() *mathrand.Rand) ManagerOption {
	return func(m *Manager) {
		m.newRand = f
	}
}

// NewManager creates a session manager backed by the given stores.
// Either store may be nil, in which case the matching operations fail
// with ErrPersistenceIO.
func NewManager(snapshots SnapshotStore, scores ledger.Ledger, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		snapshots: snapshots,
		scores:    scores,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with the given ID and grid size.
// An empty id gets a generated one.
func (m *Manager) Create(id string, size int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		generated, err := m.generateSessionID()
		if err != nil {
			return nil, err
		}
		id = generated
	} else if err := validateSessionID(id); err != nil {
		return nil, err
	}
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	sess, err := New(id, size, m.boardOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	m.sessions[strings.ToLower(id)] = sess
	return sess, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*Session, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns all active sessions
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Delete removes a session from the registry. Saved games are untouched.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Save writes the snapshot of session id under name
func (m *Manager) Save(id, name string) error {
	if m.snapshots == nil {
		return fmt.Errorf("%w: no snapshot store configured", ErrPersistenceIO)
	}

	sess, err := m.Get(id)
	if err != nil {
		return err
	}

	if err := m.snapshots.Save(name, sess.Snapshot()); err != nil {
		return err
	}
	log.Info().Str("session", sess.ID).Str("save", name).Int("score", sess.Score()).Msg("game saved")
	return nil
}

// Load reconstructs the saved game name as a new session with a fresh ID
func (m *Manager) Load(name string) (*Session, error) {
	if m.snapshots == nil {
		return nil, fmt.Errorf("%w: no snapshot store configured", ErrPersistenceIO)
	}

	snap, err := m.snapshots.Load(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.generateSessionID()
	if err != nil {
		return nil, err
	}
	sess, err := FromSnapshot(id, snap, m.boardOptions()...)
	if err != nil {
		return nil, fmt.Errorf("saved game %q: %w", name, err)
	}
	m.sessions[strings.ToLower(id)] = sess

	log.Info().Str("session", id).Str("save", name).Msg("game loaded")
	return sess, nil
}

// ListSavedNames returns the known save names in index order
func (m *Manager) ListSavedNames() ([]string, error) {
	if m.snapshots == nil {
		return []string{}, nil
	}
	return m.snapshots.ListNames()
}

// RecordFinalScore appends score to the ledger
func (m *Manager) RecordFinalScore(ctx context.Context, score int) error {
	if m.scores == nil {
		return fmt.Errorf("%w: no score ledger configured", ErrPersistenceIO)
	}
	return m.scores.Append(ctx, score)
}

// CurrentHighScore re-reads the ledger and returns its maximum
func (m *Manager) CurrentHighScore(ctx context.Context) (int, error) {
	if m.scores == nil {
		return 0, nil
	}
	return ledger.HighScore(ctx, m.scores)
}

func (m *Manager) boardOptions() []engine.Option {
	if m.newRand == nil {
		return nil
	}
	return []engine.Option{engine.WithRand(m.newRand())}
}

// shortIDAttempts bounds the draws of 4-character IDs before widening to 8
const shortIDAttempts = 32

// generateSessionID generates a random session ID not yet in use.
// IDs are 4 hex characters unless that space is crowded.
// Callers hold m.mu.
func (m *Manager) generateSessionID() (string, error) {
	for _, size := range []int{2, 4} {
		bytes := make([]byte, size)
		for i := 0; i < shortIDAttempts; i++ {
			if _, err := rand.Read(bytes); err != nil {
				return "", fmt.Errorf("generate session ID: %w", err)
			}
			id := hex.EncodeToString(bytes)
			if !m.sessionExists(id) {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("generate session ID: no free ID after %d attempts", 2*shortIDAttempts)
}

// validateSessionID rejects IDs that cannot appear in a URL path segment
func validateSessionID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "/\\ \t\n\r?#") {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
