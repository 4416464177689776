package commands

import (
	"fmt"
	"log/slog"

	"github.com/stitchdocs/sitegen/internal/config"
	"github.com/stitchdocs/sitegen/internal/linkcheck"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Dir     string `short:"d" help:"Rendered output directory to check (defaults to the configured output directory)"`
	BaseURL string `name:"base-url" help:"Site base URL; links to this host count as internal (overrides config)"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	dir := c.Dir
	baseURL := c.BaseURL
	if dir == "" || baseURL == "" {
		cfg, err := config.Load(root.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dir == "" {
			dir = cfg.Output.Directory
		}
		if baseURL == "" {
			baseURL = cfg.Site.BaseURL
		}
	}

	result, err := linkcheck.Check(dir, baseURL)
	if err != nil {
		return fmt.Errorf("check %s: %w", dir, err)
	}

	slog.Info("link check finished",
		"pages", result.Pages,
		"links", result.Links,
		"internal", result.Internal,
		"problems", len(result.Problems))

	if !result.OK() {
		for _, p := range result.Problems {
			slog.Error("dangling internal link", "page", p.Page, "target", p.Target, "tag", p.Tag, "text", p.Text)
		}
		return fmt.Errorf("%d dangling internal link(s)", len(result.Problems))
	}
	return nil
}
