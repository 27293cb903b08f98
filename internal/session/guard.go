package session

import (
	"sync"

	"github.com/desertthunder/hmx/internal/routes"
)

// GuardState is the access decision for one protected view.
type GuardState int

const (
	Loading GuardState = iota
	Allowed
	Denied
)

func (s GuardState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Guard gates a protected view on the session.
//
// Denied is terminal: once reached the guard redirects to [routes.Login] (replacing the current
// entry) exactly once and ignores every later notification.
type Guard struct {
	mu          sync.Mutex
	store       *Store
	nav         routes.Navigator
	onChange    func(GuardState)
	state       GuardState
	mounted     bool
	unsubscribe func()
}

// NewGuard creates a guard in the [Loading] state. onChange, when non-nil, receives every state transition.
func NewGuard(store *Store, nav routes.Navigator, onChange func(GuardState)) *Guard {
	return &Guard{store: store, nav: nav, onChange: onChange}
}

// Mount subscribes to the store and evaluates immediately when it is already hydrated.
func (g *Guard) Mount() {
	g.mu.Lock()
	if g.mounted {
		g.mu.Unlock()
		return
	}
	g.mounted = true
	g.mu.Unlock()

	unsubscribe := g.store.Subscribe(g.evaluate)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	if g.store.Hydrated() {
		g.evaluate(g.store.Current())
	}
}

// Unmount stops listening. Notifications arriving afterwards are ignored.
func (g *Guard) Unmount() {
	g.mu.Lock()
	g.mounted = false
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the current decision.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) evaluate(s Session) {
	g.mu.Lock()
	if !g.mounted || g.state == Denied {
		g.mu.Unlock()
		return
	}

	next := Denied
	if s.Authenticated {
		next = Allowed
	}
	if next == g.state {
		g.mu.Unlock()
		return
	}
	g.state = next
	onChange := g.onChange
	g.mu.Unlock()

	if onChange != nil {
		onChange(next)
	}
	if next == Denied && g.nav != nil {
		g.nav.Navigate(routes.Login, true)
	}
}
