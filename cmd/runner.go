package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/desertthunder/hmx/internal/flows"
	"github.com/desertthunder/hmx/internal/formatter"
	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/repositories"
	"github.com/desertthunder/hmx/internal/routes"
	"github.com/desertthunder/hmx/internal/services"
	"github.com/desertthunder/hmx/internal/session"
	"github.com/desertthunder/hmx/internal/shared"
	"github.com/desertthunder/hmx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage, credentials and the API client are wired lazily by [Runner.connect] so that
// commands such as "setup config" work without a reachable database.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	format     formatter.Format

	db      *sql.DB
	storage *repositories.SQLStorage
	jar     *repositories.PersistentJar
	store   *session.Store
	api     *services.APIService
	auth    *flows.Auth
	reviews *repositories.ReviewLogRepository
	engine  *tasks.ReviewEngine
	history *routes.History
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// A nil Config is resolved from the --config and --env-file flags before the first command runs.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		format:     formatter.FormatTable,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "hmx",
		Usage:   "Manage holiday requests, users and accounts from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file with HMX_* overrides",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, csv, json or markdown",
				Value:   string(formatter.FormatTable),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, holidaysCommand, usersCommand, accountCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before resolves configuration, log level and output format from the global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := r.loadConfig(cmd.String("config"), cmd.String("env-file"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := cmd.String("log-level")
	if level == "" {
		level = r.config.Log.Level
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return ctx, err
	}
	r.format = format
	return ctx, nil
}

func (r *Runner) loadConfig(path, envFile string) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := shared.LoadEnv(config, envFile); err != nil {
		return nil, err
	}
	return config, nil
}

// SetLogger replaces the logger used by the runner and everything it wires afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	if r.config != nil {
		shared.SetLogLevel(l, shared.ParseLogLevel(r.config.Log.Level))
	}
	r.logger = l
}

// connect opens local storage, restores persisted credentials and wires the API client.
// It is safe to call more than once.
func (r *Runner) connect(ctx context.Context) error {
	if r.api != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	db, err := shared.OpenStorageDatabase(ctx, r.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	r.db = db
	r.storage = repositories.NewSQLStorage(db)

	jar, err := repositories.NewPersistentJar(r.storage, r.config.Storage.CookieKey, r.logger)
	if err != nil {
		return err
	}
	if err := jar.Load(ctx); err != nil {
		return err
	}
	r.jar = jar
	r.httpClient.Jar = jar

	opts := []pipeline.Option{
		pipeline.WithHTTPClient(r.httpClient),
		pipeline.WithLogger(shared.WithLogger(r.logger, "component", "pipeline")),
	}
	if r.config.API.RateLimit > 0 {
		opts = append(opts, pipeline.WithLimiter(rate.NewLimiter(rate.Limit(r.config.API.RateLimit), r.config.API.Burst)))
	}
	p := pipeline.New(r.config.API.BaseURL, opts...)

	r.store = session.NewStore(r.storage, session.WithKey(r.config.Storage.SessionKey), session.WithStoreLogger(r.logger))
	if _, err := r.store.Load(ctx); err != nil {
		return err
	}

	nav := routes.NavigatorFunc(r.navigate)
	r.api = services.NewAPIService(r.config.API.BaseURL, p,
		services.WithAuthFailure(flows.AuthFailureHandler(r.store, nav, r.logger)),
		services.WithLogger(r.logger),
	)
	r.auth = flows.NewAuth(r.api, r.store, nav, flows.WithCredentialClearer(jar), flows.WithLogger(r.logger))
	r.reviews = repositories.NewReviewLogRepository(db)
	r.engine = tasks.NewReviewEngine(r.api, r.reviews, shared.WithLogger(r.logger, "component", "review"))

	r.logger.Debug("connected", "api", r.config.API.BaseURL, "storage", r.config.Storage.Path, "cookies", jar.Len())
	return nil
}

// navigate forwards to the TUI history when one is running; on the command line a
// redirect to the login view becomes a hint.
func (r *Runner) navigate(to routes.Route, replace bool) {
	if r.history != nil {
		r.history.Navigate(to, replace)
		return
	}
	if to == routes.Login {
		r.logger.Warn("sign-in required", "hint", "run 'hmx auth login'")
		return
	}
	r.logger.Debug("navigate", "route", to, "replace", replace)
}

// Close releases the storage connection.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
