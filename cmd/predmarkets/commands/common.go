package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/openclaw/predmarkets/internal/config"
	"github.com/openclaw/predmarkets/internal/logfields"
	"github.com/openclaw/predmarkets/internal/metrics"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"predmarkets.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Publish  PublishCmd  `cmd:"" help:"Run the generator and publish changed artifacts to the remote"`
	Generate GenerateCmd `cmd:"" help:"Generate today's report artifacts without publishing"`
	History  HistoryCmd  `cmd:"" help:"Update the rolling daily-history dataset"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; set up default logging once. Commands
// that load a config re-apply its logging section afterwards.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file and applies its logging section.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	cfg.Logging.SetupLogging(root.Verbose)
	return cfg, nil
}

// newRecorder builds the metrics recorder for one run. When no textfile is
// configured metrics stay in-process and are discarded.
func newRecorder(cfg *config.Config) (metrics.Recorder, func()) {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	rec := metrics.NewPrometheusRecorder(nil)
	flush := func() {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Warn("Failed to write metrics textfile",
				logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	return rec, flush
}
