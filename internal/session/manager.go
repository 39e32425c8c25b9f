package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Snapshotter writes a durable copy of a session after it changed.
type Snapshotter interface {
	Write(ctx context.Context, s *Session) error
}

// Manager owns session lifecycle: open-or-create, persist, reset, and the
// per-session lock that serializes requests for the same client.
type Manager struct {
	store     Store
	snapshots Snapshotter
	logger    *log.Logger
	locks     *keyedMutex
	now       func() time.Time
	newID     func() string
}

func NewManager(store Store, snapshots Snapshotter, logger *log.Logger) *Manager {
	return &Manager{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
		locks:     newKeyedMutex(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Open loads the session for id, creating a fresh one when id is empty,
// unknown or expired. created reports whether a new session was made.
func (m *Manager) Open(ctx context.Context, id string) (s *Session, created bool, err error) {
	if id != "" {
		s, err = m.store.Load(ctx, id)
		switch {
		case err == nil:
			return s, false, nil
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidID):
			m.logger.Debug("session not found, creating", "requested", shortID(id))
		default:
			return nil, false, err
		}
	}

	s = New(m.newID(), m.now())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, false, err
	}
	m.logger.Info("new session created", "session", shortID(s.ID))
	return s, true, nil
}

// Save stores the session and, when it changed, writes a snapshot of the
// stored state. Snapshot failures are logged and swallowed.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	s.LastSeen = m.now()

	if err := m.store.Save(ctx, s); err != nil {
		return err
	}

	if s.Dirty() && m.snapshots != nil {
		if err := m.snapshots.Write(ctx, s); err != nil {
			m.logger.Error("session snapshot failed", "session", shortID(s.ID), "err", err)
		}
	}
	s.ClearDirty()
	return nil
}

// Reset discards old and returns a brand new session with a new id.
func (m *Manager) Reset(ctx context.Context, old *Session) (*Session, error) {
	if old != nil {
		if err := m.store.Delete(ctx, old.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	s, _, err := m.Open(ctx, "")
	if err != nil {
		return nil, err
	}
	if old != nil {
		m.logger.Info("session reset", "old", shortID(old.ID), "new", shortID(s.ID))
	}
	return s, nil
}

// Lock serializes work on one session id. The returned func unlocks.
func (m *Manager) Lock(id string) func() {
	return m.locks.lock(id)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds
// or waits on it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*lockEntry)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
