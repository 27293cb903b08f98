package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/tasks"
)

// View renders the UI based on the current route.
func (m *Model) View() string {
	var b strings.Builder

	switch m.guardState {
	case session.Loading:
		b.WriteString(styles.title.Render(m.route.Title()))
		b.WriteString("\nChecking session...\n")
		return b.String()
	case session.Denied:
		b.WriteString(styles.warn.Render("Session expired, redirecting to sign in..."))
		return b.String()
	}

	switch {
	case m.form != nil:
		b.WriteString(m.renderForm())
	case menuFor(m.route) != nil:
		b.WriteString(m.renderMenu())
	default:
		b.WriteString(m.renderList())
	}

	if m.notice != "" {
		b.WriteString("\n" + styles.ok.Render(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + styles.err.Render("Error: "+pipeline.Message(m.err)) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) renderForm() string {
	title := m.route.Title()
	if m.creating {
		title = "Request holiday"
	}

	status := ""
	if m.busy {
		status = styles.help.Render("Working...") + "\n"
	}
	return fmt.Sprintf("%s\n%s\n%s", styles.title.Render(title), m.form.View(), status)
}

func (m *Model) renderMenu() string {
	var header string
	switch {
	case m.profile != nil:
		header = styles.help.Render(fmt.Sprintf(
			"Signed in as %s (%s) • %dh holiday left",
			m.profile.Username, m.profile.Role.Label(), m.profile.HolidaysHours,
		)) + "\n\n"
	case m.role != "":
		header = styles.help.Render("Signed in as "+m.role.Label()) + "\n\n"
	}
	if m.route == routes.Settings && m.profile != nil {
		header += m.renderProfile() + "\n"
	}
	if m.busy {
		header += styles.help.Render("Working...") + "\n"
	}
	return header + m.menu.View()
}

func (m *Model) renderProfile() string {
	p := m.profile
	rows := [][2]string{
		{"Name", p.FullName()},
		{"Username", p.Username},
		{"Email", p.Email},
		{"Age", fmt.Sprint(p.Age)},
		{"Holiday hours", fmt.Sprint(p.HolidaysHours)},
		{"Role", p.Role.Label()},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(styles.label.Render(r[0]) + r[1] + "\n")
	}
	return b.String()
}

func (m *Model) renderList() string {
	var b strings.Builder

	if m.progressChan != nil {
		b.WriteString(styles.title.Render("Reviewing requests"))
		b.WriteString(fmt.Sprintf("\n%s\n", renderProgress(m.progress)))
		return b.String()
	}

	if m.busy && len(m.items.Items()) == 0 {
		b.WriteString(styles.title.Render(m.route.Title()))
		b.WriteString("\nLoading...\n")
		return b.String()
	}

	b.WriteString(m.items.View())

	if m.confirm != nil {
		prompt := fmt.Sprintf("Delete %s (%s)? [y/n]", m.confirm.Username, m.confirm.Email)
		b.WriteString("\n" + styles.warn.Render(prompt) + "\n")
	}
	return b.String()
}

func renderProgress(p tasks.ProgressUpdate) string {
	switch p.Phase {
	case tasks.ReviewHolidays:
		return fmt.Sprintf("Applying decisions (%d/%d)\n%s", p.Step, p.Total, p.Message)
	case tasks.WriteReport, tasks.Done:
		return p.Message
	default:
		return "Processing..."
	}
}

func (m *Model) helpKeys() []key.Binding {
	switch {
	case m.form != nil:
		return []key.Binding{m.keys.next, m.keys.enter, m.keys.back, m.keys.quit}
	case menuFor(m.route) != nil:
		return []key.Binding{m.keys.enter, m.keys.back, m.keys.exit}
	}

	switch m.route {
	case routes.Holidays:
		return []key.Binding{m.keys.create, m.keys.refresh, m.keys.back, m.keys.exit}
	case routes.HolidayManager:
		return []key.Binding{m.keys.accept, m.keys.reject, m.keys.all, m.keys.refresh, m.keys.back}
	case routes.UserManager:
		if m.confirm != nil {
			return []key.Binding{m.keys.yes, m.keys.no}
		}
		return []key.Binding{m.keys.remove, m.keys.refresh, m.keys.back, m.keys.exit}
	default:
		return m.keys.ShortHelp()
	}
}
