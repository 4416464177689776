package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stitchdocs/sitegen/internal/config"
	"github.com/stitchdocs/sitegen/internal/metrics"
	"github.com/stitchdocs/sitegen/internal/server"
	"github.com/stitchdocs/sitegen/internal/site"
)

// ServeCmd implements the 'serve' command: build once, serve the output,
// and rebuild whenever the content tree changes.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)"`
	Out  string `short:"o" help:"Output directory for the generated site (overrides config)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cfg.Output.Directory
	if s.Out != "" {
		out = s.Out
	}
	addr := cfg.Serve.Addr
	if s.Addr != "" {
		addr = s.Addr
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	// Rebuilds from the watcher and the periodic scheduler may overlap;
	// serialize them so two builds never write the same tree at once.
	var buildMu sync.Mutex
	rebuild := func(ctx context.Context) error {
		buildMu.Lock()
		defer buildMu.Unlock()
		report, err := site.NewBuilder(cfg, out, site.WithRecorder(recorder)).Run(ctx)
		if err != nil {
			return err
		}
		if report.Outcome != site.OutcomeSuccess {
			slog.Warn("rebuild finished with issues", "outcome", report.Outcome, "errors", report.Errors(), "warnings", report.Warnings())
		}
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	watcher, err := server.NewWatcher(cfg.Content.Dir, rebuild)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	if every := cfg.Serve.RebuildEvery.Std(); every > 0 {
		scheduler, err := server.SchedulePeriodicRebuild(every, rebuild)
		if err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Error("shut down rebuild scheduler", "error", err)
			}
		}()
	}

	srv := server.NewServer(addr, out, registry)
	errChan := make(chan error, 1)
	go func() {
		slog.Info("preview server listening", "addr", addr, "dir", out)
		errChan <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
