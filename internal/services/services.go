package services

import (
	"context"

	"github.com/desertthunder/hmx/internal/models"
)

// AuthAPI is the subset of the API the login and logout flows use.
type AuthAPI interface {
	Login(ctx context.Context, credentials models.Credentials) error
	Logout(ctx context.Context) error
	Role(ctx context.Context) (models.Role, error)
}

// HolidayAPI covers holiday requests and their review.
type HolidayAPI interface {
	// RequestHoliday submits a new request for the signed-in user and returns its ID.
	RequestHoliday(ctx context.Context, holiday models.CreateHoliday) (int64, error)

	// Holidays lists the signed-in user's holidays, optionally bounded by start and end (zero values are omitted).
	Holidays(ctx context.Context, start, end models.LocalDateTime) ([]models.Holiday, error)

	// FilterHolidays lists holidays of all users matching filter.
	FilterHolidays(ctx context.Context, filter models.HolidayFilter) ([]models.Holiday, error)

	// SetHolidayStatus accepts or rejects a request.
	SetHolidayStatus(ctx context.Context, holidayID int64, status models.Status) error
}

// UserAPI covers registration and admin user management.
type UserAPI interface {
	Register(ctx context.Context, user models.CreateUser) (int64, error)
	Activate(ctx context.Context, token string) error
	ResendActivation(ctx context.Context, email string) error
	User(ctx context.Context, id int64) (*models.User, error)
	FilterUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, update models.UpdateUser) error
	DeleteUser(ctx context.Context, id int64) error
}

// AccountAPI covers self-service for the signed-in user and password recovery.
type AccountAPI interface {
	Profile(ctx context.Context) (*models.User, error)
	Access(ctx context.Context) error
	ChangeEmail(ctx context.Context, change models.NewEmail) error
	ChangePassword(ctx context.Context, change models.ChangePassword) error
	LostPassword(ctx context.Context, email string) error
	NewPassword(ctx context.Context, reset models.NewPassword) error
	DeleteAccount(ctx context.Context) error
}

// API is the full client surface.
type API interface {
	AuthAPI
	HolidayAPI
	UserAPI
	AccountAPI
}

var _ API = (*APIService)(nil)
