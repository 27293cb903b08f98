// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles local configuration, storage and imported credentials
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration, storage and credentials",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the local database and apply pending migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:  "cookies",
				Usage: "Import credential cookies from a browser cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from the browser's network tab",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "File containing the cURL command",
					},
				},
				Action: r.SetupCookies,
			},
			{
				Name:   "keys",
				Usage:  "List the keys held in local storage",
				Action: r.SetupKeys,
			},
		},
	}
}

// authCommand handles sign in and sign out
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign out and inspect the session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with username and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Sources:  cli.EnvVars("HMX_USERNAME"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("HMX_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear local credentials",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the local session and verify it with the server",
				Action: r.AuthStatus,
			},
		},
	}
}

// holidaysCommand handles holiday requests and reviews
func holidaysCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "holidays",
		Aliases: []string{"hol"},
		Usage:   "Request, list and review holidays",
		Commands: []*cli.Command{
			{
				Name:  "request",
				Usage: "Request a holiday",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "start",
						Usage:    "Start (2006-01-02T15:04 or 2006-01-02)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "end",
						Usage:    "End (2006-01-02T15:04 or 2006-01-02)",
						Required: true,
					},
				},
				Action: r.HolidaysRequest,
			},
			{
				Name:  "list",
				Usage: "List your holidays",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "Only holidays starting after this time"},
					&cli.StringFlag{Name: "end", Usage: "Only holidays ending before this time"},
				},
				Action: r.HolidaysList,
			},
			{
				Name:  "filter",
				Usage: "Filter holidays across users (admin)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "Holiday ID"},
					&cli.Int64Flag{Name: "user", Usage: "User ID"},
					&cli.StringFlag{Name: "start", Usage: "Starting after this time"},
					&cli.StringFlag{Name: "end", Usage: "Ending before this time"},
					&cli.StringFlag{Name: "status", Usage: "PROCESSING, ACCEPTED or REJECTED"},
				},
				Action: r.HolidaysFilter,
			},
			{
				Name:  "status",
				Usage: "Set the status of one holiday (admin)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "Holiday ID", Required: true},
					&cli.StringFlag{Name: "status", Usage: "ACCEPTED or REJECTED", Required: true},
				},
				Action: r.HolidaysStatus,
			},
			{
				Name:  "review",
				Usage: "Apply review decisions in bulk (admin)",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "accept", Usage: "Holiday IDs to accept"},
					&cli.StringSliceFlag{Name: "reject", Usage: "Holiday IDs to reject"},
					&cli.StringFlag{
						Name:  "pending",
						Usage: "Apply ACCEPTED or REJECTED to every pending request",
					},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent requests", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Requests per second", Value: 5},
					&cli.StringFlag{Name: "report", Usage: "Write a report of the run to this path"},
				},
				Action: r.HolidaysReview,
			},
			{
				Name:  "log",
				Usage: "Show recorded review decisions",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "holiday", Usage: "Only decisions for this holiday"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum entries", Value: 50},
				},
				Action: r.HolidaysLog,
			},
		},
	}
}

// usersCommand handles registration and user administration
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Register accounts and administer users",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "surname", Required: true},
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.IntFlag{Name: "age"},
					&cli.StringFlag{Name: "password", Sources: cli.EnvVars("HMX_PASSWORD"), Required: true},
				},
				Action: r.UsersRegister,
			},
			{
				Name:      "activate",
				Usage:     "Activate an account with the emailed token",
				ArgsUsage: "<token>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "token"},
				},
				Action: r.UsersActivate,
			},
			{
				Name:  "resend",
				Usage: "Send a new activation email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: r.UsersResend,
			},
			{
				Name:  "get",
				Usage: "Show one user (admin)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
				},
				Action: r.UsersGet,
			},
			{
				Name:  "filter",
				Usage: "List users matching the given criteria (admin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "surname"},
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "email"},
					&cli.IntFlag{Name: "min-age"},
					&cli.IntFlag{Name: "max-age"},
					&cli.Int64Flag{Name: "min-hours"},
					&cli.Int64Flag{Name: "max-hours"},
				},
				Action: r.UsersFilter,
			},
			{
				Name:  "update",
				Usage: "Change a user's holiday allowance or role (admin)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
					&cli.Int64Flag{Name: "hours", Usage: "Holiday hours"},
					&cli.StringFlag{Name: "role", Usage: "ROLE_WORKER or ROLE_ADMIN"},
				},
				Action: r.UsersUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a user (admin)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
				},
				Action: r.UsersDelete,
			},
		},
	}
}

// accountCommand handles the signed-in user's own account
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "account",
		Aliases: []string{"me"},
		Usage:   "Manage your own account",
		Commands: []*cli.Command{
			{
				Name:   "profile",
				Usage:  "Show your profile",
				Action: r.AccountProfile,
			},
			{
				Name:  "email",
				Usage: "Change your email address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Sources: cli.EnvVars("HMX_PASSWORD"), Required: true},
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: r.AccountEmail,
			},
			{
				Name:  "password",
				Usage: "Change your password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Required: true},
					&cli.StringFlag{Name: "new", Required: true},
				},
				Action: r.AccountPassword,
			},
			{
				Name:  "lost",
				Usage: "Email a password reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: r.AccountLost,
			},
			{
				Name:  "reset",
				Usage: "Set a new password with a reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: r.AccountReset,
			},
			{
				Name:  "delete",
				Usage: "Delete your account",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "Confirm deletion"},
				},
				Action: r.AccountDelete,
			},
		},
	}
}

// tuiCommand launches the interactive interface
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}
