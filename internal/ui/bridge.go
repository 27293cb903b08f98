package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/session"
)

// Bridge carries navigation, session and guard notifications into the bubbletea loop.
//
// Callbacks fire on arbitrary goroutines (API calls, store writers) so they are queued
// on a buffered channel that the model drains with a re-armed command. When the queue
// is full a notification is dropped; the model always re-reads the current route.
type Bridge struct {
	events chan Msg
}

func NewBridge() *Bridge {
	return &Bridge{events: make(chan Msg, 128)}
}

// RouteChanged is the [routes.History] change callback.
func (b *Bridge) RouteChanged(r routes.Route) { b.send(routeChangedMsg(r)) }

// SessionChanged is a [session.Store] subscriber.
func (b *Bridge) SessionChanged(s session.Session) { b.send(sessionChangedMsg(s)) }

// guardChanged returns the [session.Guard] transition callback for the view generation seq.
func (b *Bridge) guardChanged(seq int) func(session.GuardState) {
	return func(s session.GuardState) { b.send(guardChangedMsg(seq, s)) }
}

func (b *Bridge) send(msg Msg) {
	select {
	case b.events <- msg:
	default:
	}
}

// wait blocks for the next notification.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}
