package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/memoru/internal/apiclient"
	"github.com/desertthunder/memoru/internal/auth"
	"github.com/desertthunder/memoru/internal/repositories"
	"github.com/desertthunder/memoru/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, session provider and API client are created on first use so commands
// that need none of them (setup config, --help) work without a valid configuration.
type Runner struct {
	config       *shared.Config
	configPath   string
	configLoaded bool
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer
	browser      shared.BrowserOpener

	db       *sql.DB
	sessions *repositories.SessionRepository
	cache    *repositories.CardCacheRepository
	auth     *auth.Provider
	api      *apiclient.Client
	stopAPI  context.CancelFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Browser    shared.BrowserOpener
	DB         *sql.DB
	Auth       *auth.Provider
	API        *apiclient.Client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		configLoaded: opts.Config != nil,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		output:       opts.Output,
		browser:      opts.Browser,
		auth:         opts.Auth,
		api:          opts.API,
	}

	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if opts.DB != nil {
		r.setDatabase(opts.DB)
	}

	return r
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "memoru",
		Usage:   "Create and review flashcards from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, cardsCommand, reviewCommand, settingsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration file named by --config and applies logging flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !r.configLoaded {
		r.configPath = cmd.String("config")
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
		r.config.ApplyEnv()
		r.configLoaded = true
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	}

	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.config.API.Timeout()}
	}
	return ctx, nil
}

// SetLogger replaces the logger used by commands created after the call.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close waits for background sign-in work and closes the database.
// The wait is abandoned once ctx is done.
func (r *Runner) Close(ctx context.Context) {
	if r.api != nil {
		if r.stopAPI != nil {
			stop := context.AfterFunc(ctx, r.stopAPI)
			r.api.Wait()
			stop()
			r.stopAPI()
		} else {
			r.api.Wait()
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db = nil
	}
}

func (r *Runner) setDatabase(db *sql.DB) {
	r.db = db
	r.sessions = repositories.NewSessionRepository(db)
	r.cache = repositories.NewCardCacheRepository(db)
}

// database opens the configured database and runs pending migrations.
func (r *Runner) database() error {
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	r.setDatabase(db)
	return nil
}

// provider returns the OIDC session provider, backed by the session table.
func (r *Runner) provider(ctx context.Context) (*auth.Provider, error) {
	if r.auth != nil {
		return r.auth, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	if err := r.database(); err != nil {
		return nil, err
	}

	opts := []auth.Option{auth.WithOutput(r.output)}
	if r.httpClient != nil {
		opts = append(opts, auth.WithHTTPClient(r.httpClient))
	}
	if r.browser != nil {
		opts = append(opts, auth.WithBrowser(r.browser))
	}

	p, err := auth.NewProvider(ctx, r.config.OIDC, r.sessions, r.logger, opts...)
	if err != nil {
		return nil, err
	}
	r.auth = p
	return p, nil
}

// client returns the API client seeded with the stored access token.
func (r *Runner) client(ctx context.Context) (*apiclient.Client, error) {
	if r.api != nil {
		return r.api, nil
	}

	p, err := r.provider(ctx)
	if err != nil {
		return nil, err
	}

	token, err := p.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var doer apiclient.Doer
	if r.httpClient != nil {
		doer = r.httpClient
	}

	// background sign-in outlives the command and is stopped by Close
	lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.stopAPI = cancel

	r.api = apiclient.New(apiclient.Options{
		BaseURL:           r.config.API.BaseURL,
		HTTPClient:        doer,
		Session:           p,
		Logger:            r.logger,
		MaxRefreshRetries: r.config.API.MaxRefreshRetries,
		Context:           lctx,
	})
	r.api.SetAccessToken(token)
	return r.api, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
