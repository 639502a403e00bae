// Package watch re-runs validation when the docs tree changes.
//
// File events are debounced so an editor save burst triggers one run. An
// optional gocron job forces a periodic full revalidation even without
// changes, which catches cross-document breakage introduced outside the
// watched tree (e.g. a changed placeholder mapping).
package watch

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

	"git.home.luguber.info/inful/docexpand/internal/logfields"
)

// RunFunc executes one validation run. reason describes the trigger and is
// only used for logging.
type RunFunc func(ctx context.Context, reason string) error

// Watcher monitors a docs root and triggers runs.
type Watcher struct {
	root       string
	debounce   time.Duration
	interval   time.Duration
	run        RunFunc
	extensions []string

	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	trigger   chan string
	stopChan  chan struct{}
}

// New creates a watcher over root. interval 0 disables periodic
// revalidation.
func New(root string, extensions []string, debounce, interval time.Duration, run RunFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("resolve docs root: %w", err)
	}

	return &Watcher{
		root:       absRoot,
		debounce:   debounce,
		interval:   interval,
		run:        run,
		extensions: extensions,
		watcher:    fsw,
		trigger:    make(chan string, 16),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns after the watch goroutines are running.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	if w.interval > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(w.interval),
			gocron.NewTask(func() {
				select {
				case w.trigger <- "scheduled revalidation":
				default:
				}
			}),
			gocron.WithName("revalidate"),
		)
		if err != nil {
			return fmt.Errorf("schedule revalidation job: %w", err)
		}
		w.scheduler = scheduler
		scheduler.Start()
	}

	slog.Info("Watching docs root", "root", w.root, "debounce", w.debounce.String())

	go w.watchLoop(ctx)
	go w.runLoop(ctx)
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.Error("Error stopping scheduler", logfields.Error(err))
		}
	}
	return w.watcher.Close()
}

// addWatchesRecursive registers the root and every subdirectory. fsnotify
// watches are not recursive on any supported platform.
func (w *Watcher) addWatchesRecursive(root string) error {
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
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
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
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be added to the watch set before their contents
	// produce events.
	if event.Op.Has(fsnotify.Create) {
		if err := w.addWatchesRecursive(event.Name); err == nil {
			slog.Debug("Watch added", "path", event.Name)
		}
	}

	if !w.isDocFile(event.Name) {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	select {
	case w.trigger <- fmt.Sprintf("%s %s", event.Op, event.Name):
	default:
		// A run is already pending; dropping the trigger loses nothing.
	}
}

// runLoop debounces triggers and executes runs.
func (w *Watcher) runLoop(ctx context.Context) {
	var (
		timer  *time.Timer
		fire   <-chan time.Time
		reason string
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case r := <-w.trigger:
			reason = r
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			slog.Info("Change detected, revalidating", "reason", reason)
			if err := w.run(ctx, reason); err != nil {
				slog.Error("Validation run failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) isDocFile(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
