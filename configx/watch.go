package configx

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Abraxas-365/exceptionx/logx"
)

// WatchFile calls fn each time the file at path is written or created. The parent directory is watched so editors that
// replace files atomically are still seen. Watching stops when ctx is done.
func WatchFile(ctx context.Context, path string, fn func(path string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					fn(abs)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logx.Warn("config watcher error on %s: %v", abs, err)
			}
		}
	}()
	return nil
}
