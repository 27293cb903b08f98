package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hmx/internal/formatter"
	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/shared"
)

// AccountProfile prints the signed-in user.
func (r *Runner) AccountProfile(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	user, err := r.api.Profile(ctx)
	if err != nil {
		return err
	}
	return formatter.WriteUser(r.output, r.format, user)
}

func (r *Runner) AccountEmail(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	change := models.NewEmail{CurrentPassword: cmd.String("password"), NewEmail: email, ConfirmEmail: email}
	if err := change.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.api.ChangeEmail(ctx, change); err != nil {
		return err
	}
	return r.writePlain("✓ Email changed to %s\n", email)
}

func (r *Runner) AccountPassword(ctx context.Context, cmd *cli.Command) error {
	next := cmd.String("new")
	change := models.ChangePassword{CurrentPassword: cmd.String("current"), NewPassword: next, ConfirmPassword: next}
	if err := change.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.api.ChangePassword(ctx, change); err != nil {
		return err
	}
	return r.writePlain("✓ Password changed\n")
}

// AccountLost requests a password reset token by email.
func (r *Runner) AccountLost(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	email := cmd.String("email")
	if err := r.api.LostPassword(ctx, email); err != nil {
		return err
	}
	r.writePlain("✓ Reset token sent to %s\n", email)
	return r.writePlain("Run 'hmx account reset --token <token> --password <new>' to finish\n")
}

// AccountReset sets a new password with an emailed token.
func (r *Runner) AccountReset(ctx context.Context, cmd *cli.Command) error {
	password := cmd.String("password")
	reset := models.NewPassword{Token: cmd.String("token"), NewPassword: password, ConfirmPassword: password}
	if err := reset.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.api.NewPassword(ctx, reset); err != nil {
		return err
	}
	return r.writePlain("✓ Password updated, you can sign in\n")
}

// AccountDelete removes the signed-in account and then the local session.
func (r *Runner) AccountDelete(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete your account", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.api.DeleteAccount(ctx); err != nil {
		return err
	}
	if err := r.auth.Logout(ctx); err != nil {
		r.logger.Debug("logout after account deletion", "error", pipeline.Message(err))
	}
	return r.writePlain("✓ Account deleted\n")
}
