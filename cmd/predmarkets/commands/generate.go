package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openclaw/predmarkets/internal/market"
	"github.com/openclaw/predmarkets/internal/report"
)

// GenerateCmd implements the 'generate' command: fetch platform data and write
// today's report artifacts into the repository, without touching git.
type GenerateCmd struct {
	Output string `short:"o" help:"Directory to write artifacts into (defaults to repo.path)"`
}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	recorder, flush := newRecorder(cfg)
	defer flush()

	client, err := market.NewClient(cfg.Market)
	if err != nil {
		return fmt.Errorf("market client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	outputDir := g.Output
	if outputDir == "" {
		outputDir = cfg.Repo.Path
	}

	gen := report.NewGenerator(client, client.Location()).WithRecorder(recorder)
	r := gen.Build(ctx)
	return gen.Write(outputDir, r, os.Stdout)
}
