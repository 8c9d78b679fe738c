package commands

import (
	"log/slog"

	"github.com/openclaw/predmarkets/internal/config"
	"github.com/openclaw/predmarkets/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	slog.Info("Initializing configuration", logfields.Path(root.Config))
	return config.Init(root.Config, i.Force)
}
