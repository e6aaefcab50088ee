package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tapedeck/internal/services"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/desertthunder/tapedeck/internal/tasks"
	"github.com/desertthunder/tapedeck/internal/ui"
	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	backend     *services.BackendService
	provider    services.MusicProvider
	credentials services.CredentialProvider
	events      tasks.EventSink
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	styles      *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Provider and Credentials are built from Config on first use when nil.
type RunnerOpts struct {
	Config      *shared.Config
	Backend     *services.BackendService
	Provider    services.MusicProvider
	Credentials services.CredentialProvider
	Events      tasks.EventSink
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
	Styles      *ui.Palette
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Styles == nil {
		opts.Styles = ui.DefaultPalette()
	}
	if opts.Backend == nil {
		opts.Backend = services.NewBackendService(opts.Config.Backend.BaseURL, opts.Config.Backend.Timeout, opts.HTTPClient)
	}
	if opts.Events == nil {
		opts.Events = opts.Backend
	}

	return &Runner{
		config:      opts.Config,
		backend:     opts.Backend,
		provider:    opts.Provider,
		credentials: opts.Credentials,
		events:      opts.Events,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
		styles:      opts.Styles,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, exportCommand, searchCommand, tokenCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// musicProvider returns the configured provider, building it from config on first use.
func (r *Runner) musicProvider() (services.MusicProvider, services.CredentialProvider, error) {
	if r.provider != nil && r.credentials != nil {
		return r.provider, r.credentials, nil
	}

	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}

	provider, credentials, err := services.NewProvider(r.config, r.backend, r.httpClient)
	if err != nil {
		return nil, nil, err
	}

	r.provider, r.credentials = provider, credentials
	return provider, credentials, nil
}

// useProvider switches the configured provider when name is set.
func (r *Runner) useProvider(name string) {
	if name == "" || name == r.config.Provider.Name {
		return
	}
	r.config.Provider.Name = name
	r.provider, r.credentials = nil, nil
}

// newExporter wires an [tasks.Exporter] for the configured provider.
func (r *Runner) newExporter(assumeYes bool) (*tasks.Exporter, error) {
	provider, credentials, err := r.musicProvider()
	if err != nil {
		return nil, err
	}

	return tasks.NewExporter(tasks.ExporterOpts{
		Provider:       provider,
		Credentials:    credentials,
		Authorizer:     r.authorizer(provider, assumeYes),
		Events:         r.events,
		SearchInterval: r.config.Export.SearchInterval,
		Description:    r.config.Export.Description,
		Logger:         r.logger,
	})
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s", r.styles.Header(title))
}
