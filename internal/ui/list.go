package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/routes"
)

var (
	_ list.Item = holidayItem{}
	_ list.Item = userItem{}
	_ list.Item = menuItem{}
)

// holidayItem wraps [models.Holiday] to implement [list.Item].
type holidayItem struct {
	holiday models.Holiday
}

func (i holidayItem) FilterValue() string {
	return fmt.Sprintf("%d %s", i.holiday.UserID, i.holiday.Status)
}

func (i holidayItem) Title() string {
	return fmt.Sprintf("#%d %s → %s", i.holiday.ID, i.holiday.StartDate, i.holiday.EndDate)
}

func (i holidayItem) Description() string {
	status := statusStyle(string(i.holiday.Status)).Render(string(i.holiday.Status))
	return fmt.Sprintf("user %d • %dh • %s", i.holiday.UserID, i.holiday.Hours(), status)
}

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user models.User
}

func (i userItem) FilterValue() string { return i.user.Username + " " + i.user.FullName() }
func (i userItem) Title() string       { return fmt.Sprintf("%s (%s)", i.user.Username, i.user.Role.Label()) }
func (i userItem) Description() string {
	desc := i.user.Email
	if name := i.user.FullName(); name != "" {
		desc = fmt.Sprintf("%s • %s", name, desc)
	}
	return fmt.Sprintf("%s • %dh left", desc, i.user.HolidaysHours)
}

// menuItem is an entry of a navigation menu. An empty route marks an action handled by the view.
type menuItem struct {
	label  string
	hint   string
	route  routes.Route
	action string
}

func (i menuItem) FilterValue() string { return i.label }
func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return i.hint }

func holidayItems(holidays []models.Holiday) []list.Item {
	items := make([]list.Item, len(holidays))
	for i, h := range holidays {
		items[i] = holidayItem{holiday: h}
	}
	return items
}

func userItems(users []models.User) []list.Item {
	items := make([]list.Item, len(users))
	for i, u := range users {
		items[i] = userItem{user: u}
	}
	return items
}

const (
	actionLogout = "logout"
)

// menuFor returns the navigation entries of a menu view, or nil for other views.
func menuFor(r routes.Route) []list.Item {
	switch r {
	case routes.Home:
		return []list.Item{
			menuItem{label: "Sign in", hint: "Use your username and password", route: routes.Login},
			menuItem{label: "Create account", hint: "Register as a worker", route: routes.Register},
			menuItem{label: "Activate account", hint: "Enter the token from your email", route: routes.Activate},
			menuItem{label: "Forgot password", hint: "Email a reset token", route: routes.ForgotPassword},
			menuItem{label: "Set new password", hint: "Use a reset token", route: routes.NewPassword},
		}
	case routes.Worker:
		return []list.Item{
			menuItem{label: "My holidays", hint: "List and request holidays", route: routes.Holidays},
			menuItem{label: "Settings", hint: "Profile, email and password", route: routes.Settings},
			menuItem{label: "Sign out", action: actionLogout},
		}
	case routes.Admin:
		return []list.Item{
			menuItem{label: "Holiday requests", hint: "Accept or reject pending requests", route: routes.HolidayManager},
			menuItem{label: "Users", hint: "Browse and remove accounts", route: routes.UserManager},
			menuItem{label: "My holidays", hint: "List and request holidays", route: routes.Holidays},
			menuItem{label: "Settings", hint: "Profile, email and password", route: routes.Settings},
			menuItem{label: "Sign out", action: actionLogout},
		}
	case routes.Settings:
		return []list.Item{
			menuItem{label: "Change email", route: routes.ChangeEmail},
			menuItem{label: "Change password", route: routes.ChangePassword},
			menuItem{label: "Sign out", action: actionLogout},
		}
	default:
		return nil
	}
}
