package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRouteChanged MsgKind = iota
	MsgSessionChanged
	MsgGuardChanged
	MsgLoggedIn
	MsgLoggedOut
	MsgRoleResolved
	MsgHolidaysFetched
	MsgUsersFetched
	MsgProfileFetched
	MsgActionDone
	MsgProgressUpdate
	MsgReviewComplete
)

// result pairs a payload with the view generation that requested it.
// Results for a view that has since been left are dropped.
type result[T any] struct {
	seq   int
	value T
	err   error
}

func routeChangedMsg(r routes.Route) Msg {
	return Msg{kind: MsgRouteChanged, data: r}
}

func sessionChangedMsg(s session.Session) Msg {
	return Msg{kind: MsgSessionChanged, data: s}
}

func guardChangedMsg(seq int, s session.GuardState) Msg {
	return Msg{kind: MsgGuardChanged, data: result[session.GuardState]{seq: seq, value: s}}
}

func loggedInMsg(role models.Role, err error) Msg {
	return Msg{kind: MsgLoggedIn, data: result[models.Role]{value: role, err: err}}
}

func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: result[struct{}]{err: err}}
}

func roleResolvedMsg(role models.Role, err error) Msg {
	return Msg{kind: MsgRoleResolved, data: result[models.Role]{value: role, err: err}}
}

func holidaysFetchedMsg(seq int, holidays []models.Holiday, err error) Msg {
	return Msg{kind: MsgHolidaysFetched, data: result[[]models.Holiday]{seq: seq, value: holidays, err: err}}
}

func usersFetchedMsg(seq int, users []models.User, err error) Msg {
	return Msg{kind: MsgUsersFetched, data: result[[]models.User]{seq: seq, value: users, err: err}}
}

func profileFetchedMsg(seq int, user *models.User, err error) Msg {
	return Msg{kind: MsgProfileFetched, data: result[*models.User]{seq: seq, value: user, err: err}}
}

// actionDoneMsg reports a form submission or single-item action with a confirmation message.
func actionDoneMsg(seq int, message string, err error) Msg {
	return Msg{kind: MsgActionDone, data: result[string]{seq: seq, value: message, err: err}}
}

func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

func reviewCompleteMsg(seq int, res *tasks.ReviewResult, err error) Msg {
	return Msg{kind: MsgReviewComplete, data: result[*tasks.ReviewResult]{seq: seq, value: res, err: err}}
}
