package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/tasks"
)

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.guardState != session.Allowed {
		if key.Matches(msg, m.keys.back) {
			m.back()
		}
		return m, nil
	}

	switch {
	case m.form != nil:
		return m.handleFormKeys(msg)
	case menuFor(m.route) != nil:
		return m.handleMenuKeys(msg)
	}

	switch m.route {
	case routes.Holidays:
		return m.handleHolidayKeys(msg)
	case routes.HolidayManager:
		return m.handleManagerKeys(msg)
	case routes.UserManager:
		return m.handleUserKeys(msg)
	}

	if key.Matches(msg, m.keys.back) {
		m.back()
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		if m.creating {
			m.creating = false
			m.form = nil
			return m, nil
		}
		m.back()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if !m.form.Last() {
			return m, m.form.move(1)
		}
		return m, m.submit()
	}
	return m, m.form.Update(msg, m.keys)
}

// filtering reports whether the list is capturing keys for its filter prompt.
func filtering(l list.Model) bool {
	return l.FilterState() == list.Filtering
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !filtering(m.menu) {
		switch {
		case key.Matches(msg, m.keys.exit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.back()
			return m, nil
		case key.Matches(msg, m.keys.enter):
			item, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			if item.action == actionLogout {
				return m, m.logout()
			}
			m.history.Navigate(item.route, false)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleHolidayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !filtering(m.items) {
		switch {
		case key.Matches(msg, m.keys.exit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.back()
			return m, nil
		case key.Matches(msg, m.keys.create):
			m.creating = true
			m.form = holidayForm()
			return m, nil
		case key.Matches(msg, m.keys.refresh):
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m *Model) handleManagerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !filtering(m.items) {
		switch {
		case key.Matches(msg, m.keys.exit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.back()
			return m, nil
		case key.Matches(msg, m.keys.accept):
			return m, m.decide(models.StatusAccepted)
		case key.Matches(msg, m.keys.reject):
			return m, m.decide(models.StatusRejected)
		case key.Matches(msg, m.keys.all):
			return m, m.reviewAll(models.StatusAccepted)
		case key.Matches(msg, m.keys.refresh):
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m *Model) handleUserKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keys.yes):
			return m, m.deleteUser(m.confirm.ID)
		case key.Matches(msg, m.keys.no):
			m.confirm = nil
		}
		return m, nil
	}

	if !filtering(m.items) {
		switch {
		case key.Matches(msg, m.keys.exit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.back()
			return m, nil
		case key.Matches(msg, m.keys.remove):
			if item, ok := m.items.SelectedItem().(userItem); ok {
				user := item.user
				m.confirm = &user
			}
			return m, nil
		case key.Matches(msg, m.keys.refresh):
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

// action runs fn in a command and reports its outcome with message on success.
func (m *Model) action(message string, fn func() error) tea.Cmd {
	m.busy = true
	m.err = nil
	seq := m.seq
	return func() tea.Msg {
		return actionDoneMsg(seq, message, fn())
	}
}

// invalid records a validation error without leaving the form.
func (m *Model) invalid(err error) tea.Cmd {
	m.err = err
	return nil
}

func (m *Model) submit() tea.Cmd {
	ctx, f := m.ctx, m.form

	if m.creating {
		start, err := models.ParseLocalDateTime(f.Value(0))
		if err != nil {
			return m.invalid(err)
		}
		end, err := models.ParseLocalDateTime(f.Value(1))
		if err != nil {
			return m.invalid(err)
		}
		req := models.CreateHoliday{StartDate: start, EndDate: end}
		if err := req.Validate(); err != nil {
			return m.invalid(err)
		}
		seq := m.seq
		m.busy = true
		return func() tea.Msg {
			id, err := m.api.RequestHoliday(ctx, req)
			return actionDoneMsg(seq, fmt.Sprintf("Holiday #%d requested", id), err)
		}
	}

	switch m.route {
	case routes.Login:
		creds := models.Credentials{Username: f.Value(0), Password: f.Secret(1)}
		if err := creds.Validate(); err != nil {
			return m.invalid(err)
		}
		m.busy = true
		m.err = nil
		return func() tea.Msg {
			role, err := m.auth.Login(ctx, creds)
			return loggedInMsg(role, err)
		}

	case routes.Register:
		age, err := parseAge(f.Value(4))
		if err != nil {
			return m.invalid(err)
		}
		user := models.CreateUser{
			Name:     f.Value(0),
			Surname:  f.Value(1),
			Username: f.Value(2),
			Email:    f.Value(3),
			Age:      age,
			Password: f.Secret(5),
		}
		if err := user.Validate(); err != nil {
			return m.invalid(err)
		}
		seq := m.seq
		m.busy = true
		return func() tea.Msg {
			id, err := m.api.Register(ctx, user)
			return actionDoneMsg(seq, fmt.Sprintf("Account %d created, check your email for the activation token", id), err)
		}

	case routes.Activate:
		token := f.Value(0)
		return m.action("Account activated, you can sign in", func() error {
			return m.api.Activate(ctx, token)
		})

	case routes.ForgotPassword:
		email := f.Value(0)
		return m.action("Reset token sent to "+email, func() error {
			return m.api.LostPassword(ctx, email)
		})

	case routes.NewPassword:
		reset := models.NewPassword{Token: f.Value(0), NewPassword: f.Secret(1), ConfirmPassword: f.Secret(2)}
		if err := reset.Validate(); err != nil {
			return m.invalid(err)
		}
		return m.action("Password updated, you can sign in", func() error {
			return m.api.NewPassword(ctx, reset)
		})

	case routes.ChangeEmail:
		change := models.NewEmail{CurrentPassword: f.Secret(0), NewEmail: f.Value(1), ConfirmEmail: f.Value(2)}
		if err := change.Validate(); err != nil {
			return m.invalid(err)
		}
		return m.action("Email updated", func() error {
			return m.api.ChangeEmail(ctx, change)
		})

	case routes.ChangePassword:
		change := models.ChangePassword{CurrentPassword: f.Secret(0), NewPassword: f.Secret(1), ConfirmPassword: f.Secret(2)}
		if err := change.Validate(); err != nil {
			return m.invalid(err)
		}
		return m.action("Password changed", func() error {
			return m.api.ChangePassword(ctx, change)
		})
	}
	return nil
}

func (m *Model) logout() tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return loggedOutMsg(m.auth.Logout(ctx))
	}
}

func (m *Model) decide(status models.Status) tea.Cmd {
	item, ok := m.items.SelectedItem().(holidayItem)
	if !ok {
		return nil
	}
	ctx, id := m.ctx, item.holiday.ID
	return m.action(fmt.Sprintf("Holiday #%d %s", id, status), func() error {
		return m.api.SetHolidayStatus(ctx, id, status)
	})
}

// reviewAll applies status to every listed request through the review engine,
// streaming its progress into the view.
func (m *Model) reviewAll(status models.Status) tea.Cmd {
	var decisions []tasks.Decision
	for _, it := range m.items.Items() {
		if h, ok := it.(holidayItem); ok {
			decisions = append(decisions, tasks.Decision{HolidayID: h.holiday.ID, Status: status})
		}
	}
	if len(decisions) == 0 {
		return nil
	}

	m.busy = true
	m.err = nil
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	ctx, seq, ch := m.ctx, m.seq, m.progressChan

	run := func() tea.Msg {
		res, err := m.engine.Review(ctx, ch, decisions, tasks.ReviewOpts{})
		close(ch)
		return reviewCompleteMsg(seq, res, err)
	}
	return tea.Batch(run, waitForProgress(ch))
}

func (m *Model) deleteUser(id int64) tea.Cmd {
	ctx := m.ctx
	return m.action(fmt.Sprintf("User %d deleted", id), func() error {
		return m.api.DeleteUser(ctx, id)
	})
}
