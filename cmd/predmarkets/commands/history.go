package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openclaw/predmarkets/internal/history"
	"github.com/openclaw/predmarkets/internal/market"
)

// HistoryCmd implements the 'history' command: refresh the rolling 90-day
// daily-history dataset and its chart page.
type HistoryCmd struct {
	Output string `short:"o" help:"Directory to write the dataset into (defaults to repo.path)"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := market.NewClient(cfg.Market)
	if err != nil {
		return fmt.Errorf("market client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	outputDir := h.Output
	if outputDir == "" {
		outputDir = cfg.Repo.Path
	}

	updater := history.NewUpdater(client, client.Location())
	return updater.Run(ctx, outputDir, os.Stdout)
}
