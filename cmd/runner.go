package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/transx/internal/repositories"
	"github.com/desertthunder/transx/internal/services"
	"github.com/desertthunder/transx/internal/session"
	"github.com/desertthunder/transx/internal/shared"
	"github.com/desertthunder/transx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies that need the configuration (database, client, controller) are built on first use so that setup commands work without them.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	ownsDB     bool
	httpClient *http.Client
	client     *services.Client
	identities *repositories.IdentityRepository
	ctrl       *tasks.Controller
	progress   chan tasks.ProgressUpdate // set by the TUI before the controller is built
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // skips loading the config file when set
	ConfigPath string
	DB         *sql.DB // skips opening the configured database when set
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		openURL:    opts.OpenURL,
	}
}

// SetLogger replaces the logger of the runner and everything built from it.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.client != nil {
		r.client.SetLogger(l)
	}
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() {
	if r.db != nil && r.ownsDB {
		r.db.Close()
		r.db = nil
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, identityCommand, uploadCommand, chaptersCommand, statusCommand, translateCommand, exportCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies the global flags. It runs before every command.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// loadConfig loads the configuration once. A missing default config file falls back to the embedded defaults, an explicitly named one is an error.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config == nil {
		path := r.configPath
		if path == "" {
			path = defaultConfigPath
		}

		config, err := shared.LoadConfig(path)
		switch {
		case err == nil:
			r.logger.Debug("loaded config", "path", path)
		case errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config"):
			r.logger.Debug("config file not found, using defaults", "path", path)
			config = shared.DefaultConfig()
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		default:
			return nil, err
		}

		config.ApplyEnv()
		r.config = config
		if !cmd.Bool("debug") {
			shared.SetLogLevel(r.logger, config.Logging.LogLevel())
		}
	}

	if server := cmd.String("server"); server != "" {
		r.config.Server.BaseURL = server
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	return r.config, nil
}

// controller builds the session controller and ensures the identity cookie.
func (r *Runner) controller(cmd *cli.Command, presenter tasks.Presenter) (*tasks.Controller, error) {
	if r.ctrl != nil {
		r.ctrl.SetPresenter(presenter)
		return r.ctrl, nil
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		r.db, r.ownsDB = db, true
	}

	httpClient := r.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Server.Timeout()}
	}
	client, err := services.NewClient(config.Server.BaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	client.SetLogger(r.logger)
	r.client = client

	r.identities = repositories.NewIdentityRepository(r.db)
	identity := session.NewIdentityManager(session.IdentityOpts{
		Name:   config.Identity.CookieName,
		MaxAge: config.Identity.MaxAge(),
		Repo:   r.identities,
		Jar:    client,
		Logger: r.logger,
	})

	ctrl, err := tasks.NewController(tasks.ControllerOpts{
		Backend:      client,
		Identity:     identity,
		Chapters:     repositories.NewChapterRepository(r.db),
		Presenter:    presenter,
		Prompter:     tasks.LinePrompter{In: r.input, Out: r.output},
		Progress:     r.progress,
		OpenURL:      r.openURL,
		Logger:       r.logger,
		Author:       config.Export.Author,
		DefaultTitle: config.Export.DefaultTitle,
		APIKeys:      config.Translate.APIKeys,
		Prompt:       config.Translate.Prompt,
		OutputDir:    config.Export.OutputDir,
	})
	if err != nil {
		return nil, err
	}

	if _, err := ctrl.EnsureIdentity(); err != nil {
		return nil, err
	}
	ctrl.Restore()

	r.ctrl = ctrl
	return ctrl, nil
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
