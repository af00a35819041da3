package settings

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch loads path and reloads it whenever it changes on disk, until ctx is
// done. The directory is watched rather than the file so editors that save
// by rename are followed. Reload failures are logged and the previous
// values kept.
func (s *Store) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if err := s.LoadFile(abs); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("settings: %w", err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := s.LoadFile(abs); err != nil {
					s.logger.Warn("vecscene: reload settings", "path", abs, "err", err)
					continue
				}
				s.logger.Debug("vecscene: settings reloaded", "path", abs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("vecscene: settings watcher", "err", err)
			}
		}
	}()
	return nil
}
