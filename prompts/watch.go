package prompts

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates the loader cache whenever a file in the templates
// directory changes, so long-running sessions pick up prompt edits without a
// restart. It blocks until ctx is done. Returns immediately when no
// templates directory is configured.
func (l *Loader) Watch(ctx context.Context) error {
	if l.templatesDir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(l.templatesDir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				l.Invalidate()
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; stale prompts are acceptable
			// until the next explicit Invalidate.
		}
	}
}
