package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hmx/internal/formatter"
	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/shared"
)

// UsersRegister creates an account that must be activated before sign in.
func (r *Runner) UsersRegister(ctx context.Context, cmd *cli.Command) error {
	user := models.CreateUser{
		Name:     cmd.String("name"),
		Surname:  cmd.String("surname"),
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Age:      int(cmd.Int("age")),
		Password: cmd.String("password"),
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	id, err := r.api.Register(ctx, user)
	if err != nil {
		return err
	}
	r.writePlain("✓ Account %d created for %s\n", id, user.Username)
	return r.writePlain("Check %s for the activation token, then run 'hmx users activate <token>'\n", user.Email)
}

func (r *Runner) UsersActivate(ctx context.Context, cmd *cli.Command) error {
	token := cmd.StringArg("token")
	if token == "" {
		return fmt.Errorf("%w: activation token", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.api.Activate(ctx, token); err != nil {
		return err
	}
	return r.writePlain("✓ Account activated, you can sign in\n")
}

func (r *Runner) UsersResend(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	email := cmd.String("email")
	if err := r.api.ResendActivation(ctx, email); err != nil {
		return err
	}
	return r.writePlain("✓ Activation email sent to %s\n", email)
}

// UsersGet prints one user.
func (r *Runner) UsersGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	user, err := r.api.User(ctx, cmd.Int64("id"))
	if err != nil {
		return err
	}
	return formatter.WriteUser(r.output, r.format, user)
}

// UsersFilter prints users matching the flags. Unset flags do not constrain the listing.
func (r *Runner) UsersFilter(ctx context.Context, cmd *cli.Command) error {
	filter := models.UserFilter{
		Name:     cmd.String("name"),
		Surname:  cmd.String("surname"),
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
	}
	if cmd.IsSet("min-age") {
		v := int(cmd.Int("min-age"))
		filter.MinAge = &v
	}
	if cmd.IsSet("max-age") {
		v := int(cmd.Int("max-age"))
		filter.MaxAge = &v
	}
	if cmd.IsSet("min-hours") {
		v := cmd.Int64("min-hours")
		filter.MinHolidayHours = &v
	}
	if cmd.IsSet("max-hours") {
		v := cmd.Int64("max-hours")
		filter.MaxHolidayHours = &v
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	users, err := r.api.FilterUsers(ctx, filter)
	if err != nil {
		return err
	}
	return formatter.WriteUsers(r.output, r.format, users)
}

// UsersUpdate changes a user's allowance and role.
func (r *Runner) UsersUpdate(ctx context.Context, cmd *cli.Command) error {
	update := models.UpdateUser{UserID: cmd.Int64("id")}
	if cmd.IsSet("hours") {
		hours := cmd.Int64("hours")
		if hours < 0 {
			return fmt.Errorf("%w: --hours must not be negative", shared.ErrInvalidFlag)
		}
		update.HolidayHours = &hours
	}
	if raw := cmd.String("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		update.Role = &role
	}
	if update.HolidayHours == nil && update.Role == nil {
		return fmt.Errorf("%w: pass --hours or --role", shared.ErrMissingArgument)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}
	if err := r.api.UpdateUser(ctx, update); err != nil {
		return err
	}
	return r.writePlain("✓ User %d updated\n", update.UserID)
}

func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	id := cmd.Int64("id")
	if err := r.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ User %d deleted\n", id)
}
