package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hmx/internal/formatter"
	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/pipeline"
)

// AuthLogin signs in and reports the landing view for the resolved role.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{Username: cmd.String("username"), Password: cmd.String("password")}
	if err := creds.Validate(); err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.logger.Info("signing in", "username", creds.Username)
	role, err := r.auth.Login(ctx, creds)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Signed in as %s (%s)\n", creds.Username, role.Label())
}

// AuthLogout signs out. Local credentials are cleared even when the server call fails,
// in which case the server error is reported as a warning.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.auth.Logout(ctx); err != nil {
		r.logger.Warn("signed out locally", "error", pipeline.Message(err))
	}
	return r.writePlain("✓ Signed out\n")
}

// sessionStatus is the JSON shape of "auth status".
type sessionStatus struct {
	API           string      `json:"api"`
	Cookies       int         `json:"cookies"`
	Authenticated bool        `json:"authenticated"`
	Role          models.Role `json:"role,omitempty"`
}

// AuthStatus prints the persisted session and, when signed in, verifies it with the server.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	status := sessionStatus{API: r.api.BaseURL(), Cookies: r.jar.Len(), Authenticated: r.store.Current().Authenticated}
	if status.Authenticated {
		if err := r.api.Access(ctx); err != nil {
			return fmt.Errorf("session rejected by server: %w", err)
		}
		role, err := r.api.Role(ctx)
		if err != nil {
			return err
		}
		status.Role = role
	}

	if r.format == formatter.FormatJSON {
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("Session")
	r.writePlain("API:           %s\n", status.API)
	r.writePlain("Cookies:       %d\n", status.Cookies)
	if !status.Authenticated {
		return r.writePlain("Authenticated: no\n")
	}
	r.writePlain("Authenticated: yes\n")
	return r.writePlain("Role:          %s\n", status.Role.Label())
}
