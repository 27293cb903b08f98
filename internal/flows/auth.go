package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/services"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/shared"
)

// CredentialClearer drops locally held credentials, such as a persisted cookie jar.
type CredentialClearer interface {
	Clear(ctx context.Context) error
}

// Auth runs the login and logout flows against one session store.
type Auth struct {
	api    services.AuthAPI
	store  *session.Store
	nav    routes.Navigator
	creds  CredentialClearer
	logger *log.Logger
}

// Option configures [Auth].
type Option func(*Auth)

// WithCredentialClearer clears local credentials on logout.
func WithCredentialClearer(c CredentialClearer) Option {
	return func(a *Auth) { a.creds = c }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(a *Auth) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuth creates the auth flows. nav may be nil when there is nothing to navigate.
func NewAuth(api services.AuthAPI, store *session.Store, nav routes.Navigator, opts ...Option) *Auth {
	a := &Auth{api: api, store: store, nav: nav, logger: shared.DiscardLogger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login signs in and returns the user's role.
//
// The session is set only after the role is known; any failure leaves it untouched and wraps [shared.ErrAuthFailed].
func (a *Auth) Login(ctx context.Context, credentials models.Credentials) (models.Role, error) {
	if err := credentials.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	if err := a.api.Login(ctx, credentials); err != nil {
		a.logger.Warn("login rejected", "username", credentials.Username, "error", err)
		if pipeline.CauseOf(err) == pipeline.CauseServer {
			return "", fmt.Errorf("%w: %w: %w", shared.ErrAuthFailed, shared.ErrInvalidCredentials, err)
		}
		return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	role, err := a.api.Role(ctx)
	if err != nil {
		a.logger.Warn("role lookup failed", "username", credentials.Username, "error", err)
		return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	if err := a.store.Set(ctx, session.Session{Authenticated: true}); err != nil {
		a.logger.Warn("session not persisted", "error", err)
	}
	a.logger.Info("signed in", "username", credentials.Username, "role", role)

	a.navigate(routes.Landing(role == models.RoleAdmin), false)
	return role, nil
}

// Logout signs out. The local session and credentials are cleared even when the server call fails;
// the server error is still returned.
func (a *Auth) Logout(ctx context.Context) error {
	serverErr := a.api.Logout(ctx)
	if serverErr != nil {
		a.logger.Warn("server logout failed, clearing local session anyway", "error", serverErr)
	}

	var errs []error
	if serverErr != nil {
		errs = append(errs, fmt.Errorf("logout request failed: %w", serverErr))
	}
	if err := a.store.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.creds != nil {
		if err := a.creds.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	a.navigate(routes.Login, true)
	a.logger.Info("signed out")
	return errors.Join(errs...)
}

func (a *Auth) navigate(to routes.Route, replace bool) {
	if a.nav != nil {
		a.nav.Navigate(to, replace)
	}
}

// AuthFailureHandler returns the callback run when credentials cannot be refreshed:
// the session is cleared and the user is sent to the login view.
func AuthFailureHandler(store *session.Store, nav routes.Navigator, logger *log.Logger) func() {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return func() {
		logger.Warn("credentials expired, signing out")
		if err := store.Clear(context.Background()); err != nil {
			logger.Error("failed to clear session", "error", err)
		}
		if nav != nil {
			nav.Navigate(routes.Login, true)
		}
	}
}
