package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/cirrusrun/internal/api"
	"git.home.luguber.info/inful/cirrusrun/internal/build"
	"git.home.luguber.info/inful/cirrusrun/internal/config"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
	"git.home.luguber.info/inful/cirrusrun/internal/metrics"
	"git.home.luguber.info/inful/cirrusrun/internal/observability"
	"git.home.luguber.info/inful/cirrusrun/internal/version"
)

// Global carries process-level handles into commands.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	// Interactive enables the progress ticker.
	Interactive bool
}

// CLI definition & global flags.
type CLI struct {
	Verbose     int              `short:"v" type:"counter" help:"Increase output verbosity. Repeat for more (-vv debug, -vvv trace)."`
	LogFile     string           `name:"log-file" env:"CIRRUS_LOG_FILE" placeholder:"PATH" help:"Also write debug logs to this file."`
	Token       string           `env:"CIRRUS_API_TOKEN" required:"" placeholder:"TOKEN" help:"API token for the Cirrus CI API. Prefer the environment variable."`
	APIURL      string           `name:"api-url" env:"CIRRUS_API_URL" default:"${api_url}" hidden:""`
	MetricsFile string           `name:"metrics-file" env:"CIRRUS_METRICS_FILE" placeholder:"PATH" help:"Write Prometheus metrics in textfile format after the command."`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit."`

	Run       RunCmd       `cmd:"" default:"withargs" help:"Trigger a build and wait for the result (default)."`
	Status    StatusCmd    `cmd:"" help:"Watch the detailed status of a build until it stops running."`
	Log       LogCmd       `cmd:"" help:"Print the log of a build."`
	Multitask MultitaskCmd `cmd:"" help:"List recent builds that ran more than one task."`

	logger   *slog.Logger
	logFile  *os.File
	prom     *metrics.PrometheusRecorder
	recorder metrics.Recorder
}

// NewParser builds the kong parser for cli. Extra options are applied last.
func NewParser(cli *CLI, g *Global, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("cirrus-run"),
		kong.Description("Execute CI jobs in Cirrus CI."),
		kong.UsageOnError(),
		kong.Vars{
			"version":   version.String(),
			"api_url":   api.DefaultURL,
			"ci_config": config.DefaultCIConfig,
		},
		kong.Bind(g),
	}
	if g.Stdout != nil && g.Stderr != nil {
		base = append(base, kong.Writers(g.Stdout, g.Stderr))
	}
	return kong.New(cli, append(base, opts...)...)
}

// AfterApply runs after flag parsing; sets up logging and metrics once.
func (c *CLI) AfterApply(g *Global) error {
	var file io.Writer
	if c.LogFile != "" {
		f, err := observability.OpenLogFile(c.LogFile)
		if err != nil {
			return err
		}
		c.logFile = f
		file = f
	}
	stderr := g.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	c.logger, _ = observability.WithRunTrace(observability.NewLogger(c.Verbose, stderr, file))

	c.recorder = metrics.NoopRecorder{}
	if c.MetricsFile != "" {
		c.prom = metrics.NewPrometheusRecorder(prom.NewRegistry())
		c.recorder = c.prom
	}
	return nil
}

// AfterRun exports metrics whether or not the command succeeded.
func (c *CLI) AfterRun() error {
	if c.prom == nil {
		return nil
	}
	if err := c.prom.WriteTextfile(c.MetricsFile); err != nil {
		c.Logger().Warn("Failed to write metrics", logfields.Error(err))
	}
	return nil
}

// Logger returns the configured logger, or a discarding one before AfterApply.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Close releases the log file.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

func (c *CLI) newService() (*build.Service, error) {
	client, err := api.New(c.Token,
		api.WithURL(c.APIURL),
		api.WithLogger(c.Logger()),
		api.WithRecorder(c.recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	c.Logger().Debug("API client ready", logfields.URL(client.Endpoint()))
	return build.NewService(client, build.WithLogger(c.Logger()), build.WithRecorder(c.recorder)), nil
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}
