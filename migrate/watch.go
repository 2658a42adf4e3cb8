package migrate

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies a caller when a migration file is added to a directory
// out-of-band (e.g. checked out from version control by another developer),
// so a long-running process can pick it up without polling.
type Watcher struct {
	fsw *fsnotify.Watcher
	dir string
}

// Watch starts watching dir for new migration-*.ts artefacts.
func Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{fsw: fsw, dir: dir}, nil
}

// Run invokes onAdded with the added file's name (relative to dir) for
// every new migration-*.ts file, until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context, onAdded func(name string)) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, "migration-") && strings.HasSuffix(name, ".ts") {
				onAdded(name)
			}
		case <-w.fsw.Errors:
			// Best-effort: a watch error doesn't stop the loop, the next
			// successful event still fires.
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the underlying OS watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
