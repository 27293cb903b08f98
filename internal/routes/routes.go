// Package routes names the views of the client and tracks navigation between them.
package routes

import "sync"

// Route identifies a view by its path.
type Route string

const (
	Home           Route = "/"
	Login          Route = "/login"
	Register       Route = "/register"
	Activate       Route = "/activate"
	ForgotPassword Route = "/forgot-password"
	NewPassword    Route = "/new-password"

	Worker         Route = "/worker"
	Holidays       Route = "/holidays"
	Settings       Route = "/settings"
	ChangePassword Route = "/change-password"
	ChangeEmail    Route = "/change-email"
	Admin          Route = "/admin"
	HolidayManager Route = "/holiday-manager"
	UserManager    Route = "/user-manager"
)

var protected = map[Route]bool{
	Worker:         true,
	Holidays:       true,
	Settings:       true,
	ChangePassword: true,
	ChangeEmail:    true,
	Admin:          true,
	HolidayManager: true,
	UserManager:    true,
}

// Protected reports whether the view requires an authenticated session.
func (r Route) Protected() bool {
	return protected[r]
}

// Title is the heading shown for the view.
func (r Route) Title() string {
	switch r {
	case Home:
		return "Holiday Manager"
	case Login:
		return "Sign in"
	case Register:
		return "Create account"
	case Activate:
		return "Activate account"
	case ForgotPassword:
		return "Forgot password"
	case NewPassword:
		return "Set new password"
	case Worker:
		return "Worker"
	case Holidays:
		return "My holidays"
	case Settings:
		return "Settings"
	case ChangePassword:
		return "Change password"
	case ChangeEmail:
		return "Change email"
	case Admin:
		return "Administrator"
	case HolidayManager:
		return "Holiday requests"
	case UserManager:
		return "Users"
	default:
		return string(r)
	}
}

// Navigator moves the client to another view.
// With replace set the current entry is overwritten instead of pushed.
type Navigator interface {
	Navigate(to Route, replace bool)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(to Route, replace bool)

func (f NavigatorFunc) Navigate(to Route, replace bool) { f(to, replace) }

// History is a [Navigator] backed by a stack of visited routes.
type History struct {
	mu       sync.Mutex
	stack    []Route
	onChange func(Route)
}

// NewHistory starts at the given route. onChange, when non-nil, is called after every move.
func NewHistory(start Route, onChange func(Route)) *History {
	return &History{stack: []Route{start}, onChange: onChange}
}

// Navigate implements [Navigator].
func (h *History) Navigate(to Route, replace bool) {
	h.mu.Lock()
	if replace {
		h.stack[len(h.stack)-1] = to
	} else {
		h.stack = append(h.stack, to)
	}
	notify := h.onChange
	h.mu.Unlock()

	if notify != nil {
		notify(to)
	}
}

// Back pops the current route. It reports false when already at the first entry.
func (h *History) Back() (Route, bool) {
	h.mu.Lock()
	if len(h.stack) == 1 {
		current := h.stack[0]
		h.mu.Unlock()
		return current, false
	}
	h.stack = h.stack[:len(h.stack)-1]
	current := h.stack[len(h.stack)-1]
	notify := h.onChange
	h.mu.Unlock()

	if notify != nil {
		notify(current)
	}
	return current, true
}

// Current returns the route on top of the stack.
func (h *History) Current() Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[len(h.stack)-1]
}

// Len returns the stack depth.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

// Landing returns the home view for an authenticated user with the given admin flag.
func Landing(admin bool) Route {
	if admin {
		return Admin
	}
	return Worker
}
