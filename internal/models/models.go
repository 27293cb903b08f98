package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/hmx/internal/shared"
)

// Role is the authorization role of the signed-in user.
type Role string

const (
	RoleAdmin  Role = "ROLE_ADMIN"
	RoleWorker Role = "ROLE_WORKER"
)

// ParseRole decodes a role string; anything outside the closed set is an error.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleAdmin, RoleWorker:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Label returns a short human-readable name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleWorker:
		return "worker"
	default:
		return "unknown"
	}
}

// Status is the review state of a holiday request.
type Status string

const (
	StatusRejected   Status = "REJECTED"
	StatusAccepted   Status = "ACCEPTED"
	StatusProcessing Status = "PROCESSING"
)

// ParseStatus decodes a status string case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusRejected, StatusAccepted, StatusProcessing:
		return st, nil
	default:
		return "", fmt.Errorf("unknown holiday status %q", s)
	}
}

// User is an account as returned by the API.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Age           int    `json:"age"`
	HolidaysHours int64  `json:"holidaysHours"`
	Role          Role   `json:"role"`
}

// FullName joins name and surname.
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// Holiday is a single holiday request.
type Holiday struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userId"`
	StartDate LocalDateTime `json:"startDate"`
	EndDate   LocalDateTime `json:"endDate"`
	Status    Status        `json:"status"`
}

// Hours returns the whole hours covered by the request.
func (h Holiday) Hours() int {
	if h.StartDate.IsZero() || h.EndDate.IsZero() || !h.EndDate.After(h.StartDate.Time) {
		return 0
	}
	return int(h.EndDate.Sub(h.StartDate.Time).Hours())
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports missing fields.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingCredentials)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrMissingCredentials)
	}
	return nil
}

// CreateUser is the registration request body.
type CreateUser struct {
	FirstName string `json:"firstName,omitempty"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
}

// Validate reports missing or out-of-range fields.
func (c CreateUser) Validate() error {
	switch {
	case strings.TrimSpace(c.Username) == "":
		return fmt.Errorf("username is required")
	case c.Password == "":
		return fmt.Errorf("password is required")
	case !strings.Contains(c.Email, "@"):
		return fmt.Errorf("email %q is invalid", c.Email)
	case c.Age < 0:
		return fmt.Errorf("age must not be negative")
	}
	return nil
}

// UpdateUser changes a user's holiday allowance and role. Nil fields are left unchanged by the server.
type UpdateUser struct {
	UserID       int64  `json:"userId"`
	HolidayHours *int64 `json:"holidayHours,omitempty"`
	Role         *Role  `json:"role,omitempty"`
}

// UserFilter narrows the admin user listing. Zero values are omitted.
type UserFilter struct {
	Name            string `json:"name,omitempty"`
	Surname         string `json:"surname,omitempty"`
	Username        string `json:"username,omitempty"`
	Email           string `json:"email,omitempty"`
	MinAge          *int   `json:"minAge,omitempty"`
	MaxAge          *int   `json:"maxAge,omitempty"`
	MinHolidayHours *int64 `json:"minHolidayHours,omitempty"`
	MaxHolidayHours *int64 `json:"maxHolidayHours,omitempty"`
}

// ChangePassword is the body of the signed-in password change.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks that the confirmation matches.
func (c ChangePassword) Validate() error {
	if c.NewPassword == "" {
		return fmt.Errorf("new password is required")
	}
	if c.NewPassword != c.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// NewEmail is the body of the signed-in email change.
type NewEmail struct {
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
	ConfirmEmail    string `json:"confirmEmail"`
}

// Validate checks that the confirmation matches.
func (n NewEmail) Validate() error {
	if !strings.Contains(n.NewEmail, "@") {
		return fmt.Errorf("email %q is invalid", n.NewEmail)
	}
	if n.NewEmail != n.ConfirmEmail {
		return fmt.Errorf("emails do not match")
	}
	return nil
}

// NewPassword resets a password with the emailed token.
type NewPassword struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
	Token           string `json:"token"`
}

// Validate checks the token and confirmation.
func (n NewPassword) Validate() error {
	if n.Token == "" {
		return fmt.Errorf("token is required")
	}
	if n.NewPassword == "" || n.NewPassword != n.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// Email identifies an account for lost-password and activation emails.
type Email struct {
	Email string `json:"email"`
}

// ActivationToken activates a newly registered account.
type ActivationToken struct {
	Token string `json:"token"`
}

// CreateHoliday is the body of a new holiday request.
type CreateHoliday struct {
	StartDate LocalDateTime `json:"startDate"`
	EndDate   LocalDateTime `json:"endDate"`
}

// Validate checks that the range is non-empty.
func (c CreateHoliday) Validate() error {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if !c.EndDate.After(c.StartDate.Time) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}

// HolidayFilter narrows the holiday listing. Zero values are omitted.
type HolidayFilter struct {
	ID        *int64         `json:"id,omitempty"`
	UserID    *int64         `json:"userId,omitempty"`
	StartDate *LocalDateTime `json:"startDate,omitempty"`
	EndDate   *LocalDateTime `json:"endDate,omitempty"`
	Status    Status         `json:"status,omitempty"`
}
