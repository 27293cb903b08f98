package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/hmx/internal/flows"
	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/services"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/shared"
	"github.com/desertthunder/hmx/internal/tasks"
)

// Deps are the collaborators of the TUI. History must report changes to Bridge.RouteChanged.
type Deps struct {
	API     services.API
	Auth    *flows.Auth
	Store   *session.Store
	History *routes.History
	Bridge  *Bridge
	Engine  *tasks.ReviewEngine
	Logger  *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	api     services.API
	auth    *flows.Auth
	store   *session.Store
	history *routes.History
	bridge  *Bridge
	engine  *tasks.ReviewEngine
	logger  *log.Logger

	route       routes.Route
	seq         int
	guard       *session.Guard
	guardState  session.GuardState
	unsubscribe func()

	role     models.Role
	profile  *models.User
	menu     list.Model
	items    list.Model
	form     *form
	creating bool
	confirm  *models.User

	busy         bool
	notice       string
	err          error
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	review       *tasks.ReviewResult

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a TUI model positioned at the history's current route.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.DiscardLogger()
	}
	if deps.Bridge == nil {
		deps.Bridge = NewBridge()
	}
	if deps.Engine == nil {
		deps.Engine = tasks.NewReviewEngine(deps.API, nil, deps.Logger)
	}

	m := &Model{
		ctx:     ctx,
		api:     deps.API,
		auth:    deps.Auth,
		store:   deps.Store,
		history: deps.History,
		bridge:  deps.Bridge,
		engine:  deps.Engine,
		logger:  deps.Logger,
		width:   80,
		height:  24,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.unsubscribe = m.store.Subscribe(m.bridge.SessionChanged)
	m.enter(m.history.Current())
	return m
}

// Close releases the store subscription and the active guard.
func (m *Model) Close() {
	if m.guard != nil {
		m.guard.Unmount()
		m.guard = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Route returns the view being displayed.
func (m *Model) Route() routes.Route { return m.route }

// Init starts listening for notifications and resumes a persisted session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.wait(), m.resume(), m.load())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(m.listWidth(), m.listHeight())
		m.items.SetSize(m.listWidth(), m.listHeight())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRouteChanged:
		var cmd tea.Cmd
		if current := m.history.Current(); current != m.route {
			cmd = m.enter(current)
		}
		return m, tea.Batch(cmd, m.bridge.wait())

	case MsgSessionChanged:
		s := msg.data.(session.Session)
		m.logger.Debug("Session changed", "authenticated", s.Authenticated)
		if !s.Authenticated {
			m.role = ""
			m.profile = nil
		}
		return m, m.bridge.wait()

	case MsgGuardChanged:
		res := msg.data.(result[session.GuardState])
		if res.seq != m.seq {
			return m, m.bridge.wait()
		}
		m.guardState = res.value
		if res.value == session.Allowed {
			return m, tea.Batch(m.load(), m.bridge.wait())
		}
		return m, m.bridge.wait()

	case MsgLoggedIn:
		res := msg.data.(result[models.Role])
		m.busy = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.role = res.value
		return m, nil

	case MsgLoggedOut:
		res := msg.data.(result[struct{}])
		m.busy = false
		m.role = ""
		m.profile = nil
		if res.err != nil {
			m.notice = "Signed out locally; the server reported: " + pipeline.Message(res.err)
		}
		return m, nil

	case MsgRoleResolved:
		res := msg.data.(result[models.Role])
		if res.err != nil {
			m.logger.Warn("Could not resume session", "error", res.err)
			return m, nil
		}
		m.role = res.value
		if m.route == routes.Home {
			m.history.Navigate(routes.Landing(res.value == models.RoleAdmin), true)
		}
		return m, nil

	case MsgHolidaysFetched:
		res := msg.data.(result[[]models.Holiday])
		if res.seq != m.seq {
			return m, nil
		}
		m.busy = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.items = m.newList(m.route.Title(), holidayItems(res.value))
		return m, nil

	case MsgUsersFetched:
		res := msg.data.(result[[]models.User])
		if res.seq != m.seq {
			return m, nil
		}
		m.busy = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.items = m.newList(m.route.Title(), userItems(res.value))
		return m, nil

	case MsgProfileFetched:
		res := msg.data.(result[*models.User])
		if res.seq != m.seq {
			return m, nil
		}
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		if res.value != nil {
			m.profile = res.value
			m.role = res.value.Role
		}
		return m, nil

	case MsgActionDone:
		res := msg.data.(result[string])
		if res.seq != m.seq {
			return m, nil
		}
		m.busy = false
		m.confirm = nil
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.notice = res.value
		if m.creating {
			m.creating = false
			m.form = nil
		}
		return m, m.load()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		if m.progressChan == nil {
			return m, nil
		}
		return m, waitForProgress(m.progressChan)

	case MsgReviewComplete:
		res := msg.data.(result[*tasks.ReviewResult])
		if res.seq != m.seq {
			return m, nil
		}
		m.busy = false
		m.progressChan = nil
		m.review = res.value
		m.err = res.err
		if res.value != nil {
			m.notice = fmt.Sprintf("%d applied, %d failed, %d skipped", res.value.Succeeded, res.value.Failed, res.value.Skipped)
		}
		return m, m.load()
	}

	return m, nil
}

// enter switches to r, resetting per-view state. Protected views mount a fresh guard and
// load their data once it reports [session.Allowed].
func (m *Model) enter(r routes.Route) tea.Cmd {
	m.seq++
	m.route = r
	m.err = nil
	m.notice = ""
	m.busy = false
	m.creating = false
	m.confirm = nil
	m.review = nil
	m.progressChan = nil
	m.form = formFor(r)
	m.items = m.newList(r.Title(), nil)
	m.menu = m.newList(r.Title(), menuFor(r))

	if m.guard != nil {
		m.guard.Unmount()
		m.guard = nil
	}

	if !r.Protected() {
		m.guardState = session.Allowed
		return m.load()
	}

	m.guardState = session.Loading
	m.guard = session.NewGuard(m.store, m.history, m.bridge.guardChanged(m.seq))
	m.guard.Mount()
	return nil
}

// load fetches the data shown by the current view.
func (m *Model) load() tea.Cmd {
	if m.route.Protected() && m.guardState != session.Allowed {
		return nil
	}

	seq, ctx := m.seq, m.ctx
	switch m.route {
	case routes.Holidays:
		m.busy = true
		return func() tea.Msg {
			holidays, err := m.api.Holidays(ctx, models.LocalDateTime{}, models.LocalDateTime{})
			return holidaysFetchedMsg(seq, holidays, err)
		}
	case routes.HolidayManager:
		m.busy = true
		return func() tea.Msg {
			holidays, err := m.engine.Pending(ctx, nil, models.HolidayFilter{})
			return holidaysFetchedMsg(seq, holidays, err)
		}
	case routes.UserManager:
		m.busy = true
		return func() tea.Msg {
			users, err := m.api.FilterUsers(ctx, models.UserFilter{})
			return usersFetchedMsg(seq, users, err)
		}
	case routes.Worker, routes.Admin, routes.Settings:
		return func() tea.Msg {
			user, err := m.api.Profile(ctx)
			return profileFetchedMsg(seq, user, err)
		}
	default:
		return nil
	}
}

// resume resolves the role of a persisted session so the home view can forward to the landing view.
func (m *Model) resume() tea.Cmd {
	if m.route != routes.Home || !m.store.Current().Authenticated {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		role, err := m.api.Role(ctx)
		return roleResolvedMsg(role, err)
	}
}

func (m *Model) back() {
	m.history.Back()
}

func (m *Model) newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), m.listWidth(), m.listHeight())
	l.Title = title
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func (m *Model) listWidth() int {
	return max(m.width-4, 20)
}

func (m *Model) listHeight() int {
	return max(m.height-10, 8)
}

func waitForProgress(ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func parseAge(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	age, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: age %q is not a number", shared.ErrInvalidInput, s)
	}
	return age, nil
}
