package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
)

// RebuildFunc is invoked whenever the content tree needs regenerating.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors the content tree and triggers debounced rebuilds.
type Watcher struct {
	contentDir   string
	rebuild      RebuildFunc
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	rebuildChan  chan struct{}
	debounceTime time.Duration
}

// NewWatcher creates a watcher over contentDir that calls rebuild on changes.
func NewWatcher(contentDir string, rebuild RebuildFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(contentDir)
	if err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("resolve content directory: %w", err)
	}

	return &Watcher{
		contentDir:   absDir,
		rebuild:      rebuild,
		watcher:      fsWatcher,
		stopChan:     make(chan struct{}),
		rebuildChan:  make(chan struct{}, 1),
		debounceTime: 500 * time.Millisecond,
	}, nil
}

// Start begins monitoring the content tree.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.contentDir); err != nil {
		return fmt.Errorf("watch content directory %s: %w", w.contentDir, err)
	}

	slog.Info("watching content for changes", "dir", w.contentDir)

	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
	if err := w.watcher.Close(); err != nil {
		slog.Error("close file watcher", "error", err)
	}
}

// addRecursive registers every directory below root. fsnotify watches are
// not recursive, so each subdirectory needs its own watch.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			return fs.SkipDir
		}
		return w.watcher.Add(p)
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				// A new directory must be watched before anything
				// written inside it can be seen.
				if err := w.addRecursive(event.Name); err != nil {
					slog.Debug("watch new path", "path", event.Name, "error", err)
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("content change detected", "file", event.Name, "op", event.Op.String())
				w.triggerRebuild()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("content watcher error", "error", err)
		}
	}
}

func (w *Watcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.rebuildChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				if err := w.rebuild(ctx); err != nil {
					slog.Error("rebuild after content change", "error", err)
				}
			})
		}
	}
}

func (w *Watcher) triggerRebuild() {
	select {
	case w.rebuildChan <- struct{}{}:
	default:
		// Rebuild already pending.
	}
}

// SchedulePeriodicRebuild starts a scheduler that reruns the build at a
// fixed interval, catching changes the file watcher cannot see, such as
// edits on network mounts. The returned scheduler must be shut down by
// the caller.
func SchedulePeriodicRebuild(interval time.Duration, rebuild RebuildFunc) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := rebuild(context.Background()); err != nil {
				slog.Error("periodic rebuild", "error", err)
			}
		}),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}

	scheduler.Start()
	return scheduler, nil
}
