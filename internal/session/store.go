package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hmx/internal/shared"
)

// DefaultKey is the storage key of the persisted session.
const DefaultKey = "auth"

// Session is the process-wide authentication state.
type Session struct {
	Authenticated bool `json:"authenticated"`
}

// Storage is the durable key/value store the session is persisted in.
// Get returns an error wrapping [shared.ErrNotFound] for absent keys.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type subscriber struct {
	id int
	fn func(Session)
}

// Store owns the single [Session] value. It is safe for concurrent use.
type Store struct {
	writeMu     sync.Mutex // serializes persist and assignment
	mu          sync.Mutex
	storage     Storage
	key         string
	logger      *log.Logger
	current     Session
	hydrated    bool
	nextID      int
	subscribers []subscriber
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithStoreLogger sets the logger. The default discards output.
func WithStoreLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates an unhydrated store backed by storage.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{storage: storage, key: DefaultKey, logger: shared.DiscardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted session. An absent or unreadable entry yields an unauthenticated session.
// The first Load marks the store hydrated and always notifies subscribers.
func (s *Store) Load(ctx context.Context) (Session, error) {
	s.writeMu.Lock()
	loaded, err := s.read(ctx)

	s.mu.Lock()
	changed := !s.hydrated || s.current != loaded
	s.current = loaded
	s.hydrated = true
	subs := s.snapshot()
	s.mu.Unlock()
	s.writeMu.Unlock()

	if changed {
		notify(subs, loaded)
	}
	return loaded, err
}

func (s *Store) read(ctx context.Context) (Session, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, shared.ErrNotFound) {
		return Session{}, nil
	}
	if err != nil {
		s.logger.Warn("failed to read session", "key", s.key, "error", err)
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var persisted Session
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.logger.Warn("discarding malformed session", "key", s.key, "error", err)
		return Session{}, nil
	}
	return persisted, nil
}

// Hydrated reports whether [Store.Load] has completed.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Current returns the latest session value.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the session. An authenticated session is persisted; an unauthenticated one removes the entry.
//
// Setting the value the store already holds is a no-op apart from re-syncing storage.
// Setting a value also counts as the first authoritative read.
func (s *Store) Set(ctx context.Context, next Session) error {
	s.writeMu.Lock()
	err := s.persist(ctx, next)

	s.mu.Lock()
	changed := !s.hydrated || s.current != next
	s.current = next
	s.hydrated = true
	subs := s.snapshot()
	s.mu.Unlock()
	s.writeMu.Unlock()

	if changed {
		s.logger.Debug("session changed", "authenticated", next.Authenticated)
		notify(subs, next)
	}
	return err
}

// Clear signs the session out and removes the persisted entry.
func (s *Store) Clear(ctx context.Context) error {
	return s.Set(ctx, Session{})
}

func (s *Store) persist(ctx context.Context, next Session) error {
	if !next.Authenticated {
		if err := s.storage.Delete(ctx, s.key); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Subscribe registers fn for change notifications and returns a function that removes it.
// Notifications are delivered outside the store's lock, on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) snapshot() []func(Session) {
	fns := make([]func(Session), len(s.subscribers))
	for i, sub := range s.subscribers {
		fns[i] = sub.fn
	}
	return fns
}

func notify(fns []func(Session), value Session) {
	for _, fn := range fns {
		fn(value)
	}
}
