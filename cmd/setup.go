package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/shared"
)

// SetupConfig writes the embedded example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Storage.Path)

	db, err := shared.NewDatabase(r.config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Storage.MaxOpenConns, r.config.Storage.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Storage.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Storage.Path)
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return r.writePlain("✓ Rolled back the latest migration\n")
}

// SetupStatus lists migrations and whether each has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations: " + r.config.Storage.Path)
	for _, s := range statuses {
		mark := "pending"
		if s.Applied {
			mark = "applied"
		}
		r.writePlain("%03d  %-30s %s\n", s.Version, s.Name, mark)
	}
	return nil
}

// SetupCookies imports credential cookies from a browser cURL command.
//
// The imported session is verified against the server before it is marked as signed in.
func (r *Runner) SetupCookies(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var req *shared.CurlRequest
	var err error
	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
	}

	cookies, err := req.Cookies()
	if err != nil {
		return err
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	origin, err := req.Origin(r.config.API.BaseURL)
	if err != nil {
		return err
	}
	r.jar.Import(origin, cookies)
	r.logger.Info("imported cookies", "origin", origin.Host, "count", len(cookies))

	role, err := r.api.Role(ctx)
	if err != nil {
		return fmt.Errorf("imported cookies were not accepted: %w", err)
	}
	if err := r.store.Set(ctx, session.Session{Authenticated: true}); err != nil {
		return err
	}

	r.writePlain("✓ Imported %d cookies for %s\n", len(cookies), origin.Host)
	return r.writePlain("Signed in as %s\n", role.Label())
}

// SetupKeys lists the entries held in local key/value storage.
func (r *Runner) SetupKeys(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	keys, err := r.storage.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return r.writePlain("No stored keys\n")
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		r.writePlain("%-20s updated %s\n", k, keys[k].Local().Format(time.DateTime))
	}
	return nil
}
