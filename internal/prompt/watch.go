package prompt

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the library whenever a template in its override directory
// changes, until ctx is cancelled. Bursts of events are debounced. onReload,
// if non-nil, is called after every successful reload.
func (l *Library) Watch(ctx context.Context, logger *slog.Logger, onReload func()) error {
	if l.dir == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(l.dir); err != nil {
		return err
	}
	logger.Info("prompt watcher: started", slog.String("dir", l.dir))

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
			reload = timer.C
		} else {
			timer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("prompt watcher: stopped")
			return nil

		case <-reload:
			if err := l.Reload(); err != nil {
				logger.Warn("prompt watcher: reload failed, keeping previous templates", slog.String("error", err.Error()))
				continue
			}
			logger.Info("prompt watcher: templates reloaded")
			if onReload != nil {
				onReload()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".tmpl") || strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("prompt watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("prompt watcher: error", slog.String("error", werr.Error()))
		}
	}
}
