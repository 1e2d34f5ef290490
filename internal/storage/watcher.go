// internal/storage/watcher.go
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// Watcher reports changes below a set of directory trees.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
	logger   *utils.Logger
}

// NewWatcher creates a watcher calling onChange for every changed path.
func NewWatcher(onChange func(path string), logger *utils.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Watcher{watcher: w, onChange: onChange, logger: logger}, nil
}

// AddTree watches root and every directory below it.
func (w *Watcher) AddTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Run dispatches events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				// new subdirectories need their own watch
				if err := w.AddTree(event.Name); err != nil {
					w.logger.Debug("watch add skipped", map[string]interface{}{"path": event.Name, "error": err.Error()})
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.onChange(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Stop closes the watcher; a running Run returns.
func (w *Watcher) Stop() {
	w.watcher.Close()
}
