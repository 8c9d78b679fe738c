package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/openclaw/predmarkets/internal/publish"
)

// PublishCmd implements the 'publish' command: the full generate → stage →
// commit → push pipeline.
type PublishCmd struct {
	DryRun       bool `name:"dry-run" help:"Run generation and change detection but skip commit and push"`
	SkipGenerate bool `name:"skip-generate" help:"Stage and publish the current worktree without running the generator"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	recorder, flush := newRecorder(cfg)
	defer flush()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := publish.NewService().WithRecorder(recorder)
	result, err := svc.Run(ctx, publish.Request{
		Config: cfg,
		Options: publish.Options{
			DryRun:       p.DryRun,
			SkipGenerate: p.SkipGenerate,
		},
	})
	if err != nil {
		return err
	}

	switch result.Status {
	case publish.StatusPublished:
		fmt.Printf("Published %s (%s)\n", result.CommitHash, result.CommitMessage)
	case publish.StatusNoop:
		if result.Changed {
			fmt.Println("Dry run: changes detected, nothing published")
		} else {
			fmt.Println("No changes to publish")
		}
	}
	return nil
}
