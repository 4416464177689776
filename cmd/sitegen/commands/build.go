package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stitchdocs/sitegen/internal/config"
	"github.com/stitchdocs/sitegen/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Out    string   `short:"o" help:"Output directory for the generated site (overrides config)"`
	Locale []string `short:"l" help:"Restrict the build to the given locales (repeatable)"`
	Full   bool     `help:"Ignore the render cache and rebuild every page"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cfg.Output.Directory
	if b.Out != "" {
		out = b.Out
	}

	builder := site.NewBuilder(cfg, out,
		site.WithLocales(b.Locale),
		site.WithFullRebuild(b.Full),
	)
	report, err := builder.Run(context.Background())
	if err != nil {
		return fmt.Errorf("build aborted: %w", err)
	}

	if report.Outcome == site.OutcomeFailed {
		for _, issue := range report.Issues {
			slog.Error("build issue", "code", issue.Code, "path", issue.Path, "message", issue.Message)
		}
		return fmt.Errorf("build failed with %d error(s)", report.Errors())
	}
	return nil
}
