package commands

import (
	"fmt"
	"log/slog"

	"github.com/stitchdocs/sitegen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return fmt.Errorf("init config: %w", err)
	}
	slog.Info("configuration file created", "path", root.Config)
	return nil
}
