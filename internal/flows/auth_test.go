package flows

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/repositories"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/services"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/shared"
	tu "github.com/desertthunder/hmx/internal/testing"
)

type harness struct {
	api     *tu.FakeAPI
	storage *repositories.MemoryStorage
	store   *session.Store
	nav     *tu.RecordingNavigator
	auth    *Auth
}

type clearerFunc func(ctx context.Context) error

func (f clearerFunc) Clear(ctx context.Context) error { return f(ctx) }

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		api:     tu.NewFakeAPI(t),
		storage: repositories.NewMemoryStorage(),
		nav:     &tu.RecordingNavigator{},
	}
	h.store = session.NewStore(h.storage)
	if _, err := h.store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	svc := services.NewAPIService(h.api.URL, nil, services.WithAuthFailure(AuthFailureHandler(h.store, h.nav, nil)))
	h.auth = NewAuth(svc, h.store, h.nav, opts...)
	return h
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	creds := models.Credentials{Username: "anna", Password: "secret"}

	t.Run("admin lands on admin view", func(t *testing.T) {
		h := newHarness(t)
		h.api.Respond(http.MethodPost, "/login", http.StatusOK, "")
		h.api.Respond(http.MethodGet, "/users/in/role", http.StatusOK, `{"data":"ROLE_ADMIN"}`)

		role, err := h.auth.Login(ctx, creds)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if role != models.RoleAdmin {
			t.Errorf("role = %s", role)
		}
		if !h.store.Current().Authenticated {
			t.Error("session should be authenticated")
		}
		if got, _ := h.storage.Get(ctx, session.DefaultKey); got != `{"authenticated":true}` {
			t.Errorf("persisted session = %q", got)
		}
		if to, replace := h.nav.Last(); to != routes.Admin || replace {
			t.Errorf("navigation = %s replace=%v", to, replace)
		}
	})

	t.Run("worker lands on worker view", func(t *testing.T) {
		h := newHarness(t)
		h.api.Respond(http.MethodPost, "/login", http.StatusOK, "")
		h.api.Respond(http.MethodGet, "/users/in/role", http.StatusOK, `{"data":"ROLE_WORKER"}`)

		if _, err := h.auth.Login(ctx, creds); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if to, _ := h.nav.Last(); to != routes.Worker {
			t.Errorf("navigation = %s", to)
		}
	})

	t.Run("rejected password is reported as invalid credentials", func(t *testing.T) {
		h := newHarness(t)
		h.api.Respond(http.MethodPost, "/login", http.StatusUnauthorized, `{"error":"Bad credentials"}`)

		_, err := h.auth.Login(ctx, creds)
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if !strings.Contains(err.Error(), "Bad credentials") {
			t.Errorf("server message lost: %v", err)
		}
	})

	failures := []struct {
		name  string
		setup func(api *tu.FakeAPI)
	}{
		{
			name: "bad credentials",
			setup: func(api *tu.FakeAPI) {
				api.Respond(http.MethodPost, "/login", http.StatusUnauthorized, `{"error":"Bad credentials"}`)
			},
		},
		{
			name: "role without data",
			setup: func(api *tu.FakeAPI) {
				api.Respond(http.MethodPost, "/login", http.StatusOK, "")
				api.Respond(http.MethodGet, "/users/in/role", http.StatusOK, `{}`)
			},
		},
		{
			name: "unknown role",
			setup: func(api *tu.FakeAPI) {
				api.Respond(http.MethodPost, "/login", http.StatusOK, "")
				api.Respond(http.MethodGet, "/users/in/role", http.StatusOK, `{"data":"ROLE_GUEST"}`)
			},
		},
		{
			name: "role lookup fails",
			setup: func(api *tu.FakeAPI) {
				api.Respond(http.MethodPost, "/login", http.StatusOK, "")
				api.Respond(http.MethodGet, "/users/in/role", http.StatusInternalServerError, `{"error":"boom"}`)
			},
		},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h.api)

			notified := 0
			h.store.Subscribe(func(session.Session) { notified++ })

			role, err := h.auth.Login(ctx, creds)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if role != "" {
				t.Errorf("role = %q on failure", role)
			}
			if h.store.Current().Authenticated || notified != 0 {
				t.Error("failed login must not touch the session")
			}
			if _, ok := h.nav.Last(); ok {
				t.Errorf("failed login must not navigate, got %v", h.nav.Routes)
			}
		})
	}

	t.Run("invalid input skips the server", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.auth.Login(ctx, models.Credentials{Username: "anna"})
		if !errors.Is(err, shared.ErrAuthFailed) || !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrAuthFailed wrapping ErrMissingCredentials, got %v", err)
		}
		if len(h.api.Calls()) != 0 {
			t.Errorf("expected no calls, got %v", h.api.Calls())
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	signIn := func(t *testing.T, h *harness) {
		t.Helper()
		if err := h.store.Set(ctx, session.Session{Authenticated: true}); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("success clears session and storage", func(t *testing.T) {
		cleared := 0
		h := newHarness(t, WithCredentialClearer(clearerFunc(func(context.Context) error { cleared++; return nil })))
		signIn(t, h)
		h.api.Respond(http.MethodPost, "/logout", http.StatusOK, `{"data":{"message":"Logout successful"}}`)

		if err := h.auth.Logout(ctx); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if h.store.Current().Authenticated {
			t.Error("session should be cleared")
		}
		if _, err := h.storage.Get(ctx, session.DefaultKey); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("persisted session should be removed, got %v", err)
		}
		if cleared != 1 {
			t.Errorf("credentials cleared %d times", cleared)
		}
		if to, replace := h.nav.Last(); to != routes.Login || !replace {
			t.Errorf("navigation = %s replace=%v", to, replace)
		}

		fresh := session.NewStore(h.storage)
		if s, _ := fresh.Load(ctx); s.Authenticated {
			t.Error("a new store should rehydrate as signed out")
		}
	})

	t.Run("server failure still signs out locally", func(t *testing.T) {
		h := newHarness(t)
		signIn(t, h)
		h.api.Respond(http.MethodPost, "/logout", http.StatusInternalServerError, `{"error":"database down"}`)

		err := h.auth.Logout(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected server error to be reported, got %v", err)
		}
		if h.store.Current().Authenticated {
			t.Error("session should be cleared despite the server error")
		}
		if to, _ := h.nav.Last(); to != routes.Login {
			t.Errorf("navigation = %s", to)
		}
	})
}

func TestAuthFailureHandler(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.Set(ctx, session.Session{Authenticated: true})

	h.api.Respond(http.MethodGet, "/users/in/user", http.StatusForbidden, `{"error":"expired"}`)
	h.api.Respond(http.MethodGet, "/users/refresh", http.StatusForbidden, `{"error":"expired"}`)

	svc := services.NewAPIService(h.api.URL, nil, services.WithAuthFailure(AuthFailureHandler(h.store, h.nav, nil)))
	if _, err := svc.Profile(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Fatalf("expected auth failure, got %v", err)
	}

	if h.store.Current().Authenticated {
		t.Error("expired credentials should sign the session out")
	}
	if to, replace := h.nav.Last(); to != routes.Login || !replace {
		t.Errorf("navigation = %s replace=%v", to, replace)
	}
}
