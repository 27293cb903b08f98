package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/shared"
)

// mapStorage is an in-memory [Storage] recording every write.
type mapStorage struct {
	mu      sync.Mutex
	data    map[string]string
	puts    int
	deletes int
	getErr  error
}

func newMapStorage() *mapStorage { return &mapStorage{data: make(map[string]string)} }

func (m *mapStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	return v, nil
}

func (m *mapStorage) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.data[key] = value
	return nil
}

func (m *mapStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if _, ok := m.data[key]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	delete(m.data, key)
	return nil
}

type recordingNav struct {
	mu    sync.Mutex
	calls []routes.Route
	repl  []bool
}

func (r *recordingNav) Navigate(to routes.Route, replace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, to)
	r.repl = append(r.repl, replace)
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()

	tc := []struct {
		name   string
		stored string
		want   Session
	}{
		{name: "absent", want: Session{}},
		{name: "authenticated", stored: `{"authenticated":true}`, want: Session{Authenticated: true}},
		{name: "malformed", stored: `{not json`, want: Session{}},
		{name: "explicit false", stored: `{"authenticated":false}`, want: Session{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMapStorage()
			if tt.stored != "" {
				storage.data[DefaultKey] = tt.stored
			}
			store := NewStore(storage)

			notified := 0
			store.Subscribe(func(Session) { notified++ })

			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != tt.want || store.Current() != tt.want {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
			if !store.Hydrated() {
				t.Error("store should be hydrated after Load")
			}
			if notified != 1 {
				t.Errorf("first Load should notify once, got %d", notified)
			}
		})
	}

	t.Run("storage error yields unauthenticated", func(t *testing.T) {
		storage := newMapStorage()
		storage.getErr = errors.New("disk on fire")
		store := NewStore(storage)

		got, err := store.Load(ctx)
		if err == nil {
			t.Error("expected storage error to be reported")
		}
		if got.Authenticated || !store.Hydrated() {
			t.Errorf("expected hydrated unauthenticated store, got %+v", got)
		}
	})
}

func TestStoreSet(t *testing.T) {
	ctx := context.Background()

	t.Run("set true twice notifies once", func(t *testing.T) {
		storage := newMapStorage()
		store := NewStore(storage)
		if _, err := store.Load(ctx); err != nil {
			t.Fatal(err)
		}

		notified := 0
		store.Subscribe(func(Session) { notified++ })

		for range 2 {
			if err := store.Set(ctx, Session{Authenticated: true}); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
		}

		if notified != 1 {
			t.Errorf("expected one notification, got %d", notified)
		}
		if storage.data[DefaultKey] != `{"authenticated":true}` {
			t.Errorf("persisted = %q", storage.data[DefaultKey])
		}
		if !store.Current().Authenticated {
			t.Error("expected authenticated session")
		}
	})

	t.Run("clear removes persisted entry", func(t *testing.T) {
		storage := newMapStorage()
		storage.data[DefaultKey] = `{"authenticated":true}`
		store := NewStore(storage)
		store.Load(ctx)

		var last Session
		store.Subscribe(func(s Session) { last = s })

		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, ok := storage.data[DefaultKey]; ok {
			t.Error("persisted session should be removed")
		}
		if last.Authenticated || store.Current().Authenticated {
			t.Error("subscribers should observe the unauthenticated session")
		}

		rehydrated := NewStore(storage)
		if got, _ := rehydrated.Load(ctx); got.Authenticated {
			t.Error("a new store should rehydrate to unauthenticated")
		}
	})

	t.Run("clearing an absent entry is fine", func(t *testing.T) {
		store := NewStore(newMapStorage())
		store.Load(ctx)
		if err := store.Clear(ctx); err != nil {
			t.Errorf("Clear() error = %v", err)
		}
	})

	t.Run("custom key", func(t *testing.T) {
		storage := newMapStorage()
		store := NewStore(storage, WithKey("session"))
		store.Set(ctx, Session{Authenticated: true})
		if _, ok := storage.data["session"]; !ok {
			t.Error("expected session persisted under custom key")
		}
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		store := NewStore(newMapStorage())
		store.Load(ctx)

		notified := 0
		unsubscribe := store.Subscribe(func(Session) { notified++ })
		unsubscribe()
		unsubscribe()

		store.Set(ctx, Session{Authenticated: true})
		if notified != 0 {
			t.Errorf("expected no notifications after unsubscribe, got %d", notified)
		}
	})

	t.Run("subscriber may call back into the store", func(t *testing.T) {
		store := NewStore(newMapStorage())
		store.Load(ctx)

		var seen Session
		store.Subscribe(func(Session) { seen = store.Current() })
		store.Set(ctx, Session{Authenticated: true})

		if !seen.Authenticated {
			t.Error("subscriber should read the updated value")
		}
	})
}

func TestStoreConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMapStorage())
	store.Load(ctx)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Set(ctx, Session{Authenticated: i%2 == 0})
			_ = store.Current()
		}()
	}
	wg.Wait()

	final := store.Current()
	again := store.Current()
	if final != again {
		t.Error("readers should observe a single value once writers are done")
	}
}

// yieldingStorage gives other goroutines a chance to run between a write and its caller resuming.
type yieldingStorage struct{ *mapStorage }

func (y yieldingStorage) Put(ctx context.Context, key, value string) error {
	err := y.mapStorage.Put(ctx, key, value)
	runtime.Gosched()
	return err
}

func (y yieldingStorage) Delete(ctx context.Context, key string) error {
	err := y.mapStorage.Delete(ctx, key)
	runtime.Gosched()
	return err
}

func TestStoreConcurrentWriters(t *testing.T) {
	ctx := context.Background()

	for i := range 2000 {
		storage := newMapStorage()
		store := NewStore(yieldingStorage{storage})
		store.Load(ctx)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(ctx, Session{Authenticated: true})
		}()
		go func() {
			defer wg.Done()
			store.Clear(ctx)
		}()
		wg.Wait()

		storage.mu.Lock()
		_, persisted := storage.data[DefaultKey]
		storage.mu.Unlock()
		if got := store.Current().Authenticated; got != persisted {
			t.Fatalf("run %d: memory says authenticated=%v but persisted entry present=%v", i, got, persisted)
		}

		reloaded := NewStore(storage)
		if s, _ := reloaded.Load(ctx); s != store.Current() {
			t.Fatalf("run %d: reload gave %+v, want %+v", i, s, store.Current())
		}
	}
}

func TestGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("loading until hydrated then allowed", func(t *testing.T) {
		storage := newMapStorage()
		storage.data[DefaultKey] = `{"authenticated":true}`
		store := NewStore(storage)
		nav := &recordingNav{}

		var states []GuardState
		guard := NewGuard(store, nav, func(s GuardState) { states = append(states, s) })
		guard.Mount()

		if guard.State() != Loading {
			t.Fatalf("State() = %s before hydration, want loading", guard.State())
		}

		store.Load(ctx)
		if guard.State() != Allowed {
			t.Errorf("State() = %s after hydration, want allowed", guard.State())
		}
		if len(states) != 1 || states[0] != Allowed {
			t.Errorf("transitions = %v", states)
		}
		if len(nav.calls) != 0 {
			t.Errorf("allowed guard should not navigate, got %v", nav.calls)
		}
	})

	t.Run("never allowed before authenticated", func(t *testing.T) {
		store := NewStore(newMapStorage())
		nav := &recordingNav{}

		var states []GuardState
		guard := NewGuard(store, nav, func(s GuardState) { states = append(states, s) })
		guard.Mount()
		store.Load(ctx)

		for _, s := range states {
			if s == Allowed {
				t.Fatal("guard reported allowed for an unauthenticated store")
			}
		}
		if guard.State() != Denied {
			t.Errorf("State() = %s, want denied", guard.State())
		}
	})

	t.Run("denied redirects once with replace", func(t *testing.T) {
		store := NewStore(newMapStorage())
		store.Load(ctx)
		nav := &recordingNav{}

		guard := NewGuard(store, nav, nil)
		guard.Mount()

		store.Set(ctx, Session{Authenticated: true})
		store.Set(ctx, Session{Authenticated: false})

		if guard.State() != Denied {
			t.Errorf("denied must be terminal, got %s", guard.State())
		}
		if len(nav.calls) != 1 || nav.calls[0] != routes.Login || !nav.repl[0] {
			t.Errorf("navigation = %v replace=%v, want one replace to login", nav.calls, nav.repl)
		}
	})

	t.Run("allowed then logout denies", func(t *testing.T) {
		store := NewStore(newMapStorage())
		store.Set(ctx, Session{Authenticated: true})
		nav := &recordingNav{}

		guard := NewGuard(store, nav, nil)
		guard.Mount()
		if guard.State() != Allowed {
			t.Fatalf("State() = %s, want allowed", guard.State())
		}

		store.Clear(ctx)
		if guard.State() != Denied || len(nav.calls) != 1 {
			t.Errorf("State() = %s, navigations %v", guard.State(), nav.calls)
		}
	})

	t.Run("unmounted guard ignores notifications", func(t *testing.T) {
		store := NewStore(newMapStorage())
		nav := &recordingNav{}

		guard := NewGuard(store, nav, nil)
		guard.Mount()
		guard.Unmount()
		store.Load(ctx)

		if guard.State() != Loading || len(nav.calls) != 0 {
			t.Errorf("State() = %s, navigations %v after unmount", guard.State(), nav.calls)
		}
	})
}
