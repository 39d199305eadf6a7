package imports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/willibrandon/projsys/dataflow"
	"github.com/willibrandon/projsys/observability"
)

// DefaultDebounce is how long a Watcher waits for more changes before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a project's imports whenever one of the files in its
// last snapshot changes, and publishes each new snapshot to a source.
type Watcher struct {
	loader      *Loader
	projectPath string
	source      *dataflow.Broadcaster[*Snapshot]
	logger      observability.Logger
	debounce    time.Duration

	fs *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher creates a watcher for projectPath. A debounce of zero uses
// DefaultDebounce.
func NewWatcher(loader *Loader, projectPath string, source *dataflow.Broadcaster[*Snapshot], debounce time.Duration, logger observability.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		loader:      loader,
		projectPath: projectPath,
		source:      source,
		logger:      observability.OrNull(logger),
		debounce:    debounce,
		fs:          fsw,
		files:       make(map[string]bool),
		dirs:        make(map[string]bool),
	}, nil
}

// Run publishes an initial snapshot, then republishes after every change
// until ctx is done. Reload failures are logged and the previous snapshot
// stays current.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	if err := w.reload(ctx); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		timeout <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Import file {File} changed ({Op})", event.Name, event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timeout = timer.C

		case <-timeout:
			timeout = nil
			if err := w.reload(ctx); err != nil {
				w.logger.Warn("Failed to reload imports of {Project}: {Error}", w.projectPath, err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error: {Error}", err)
		}
	}
}

// Files returns the files watched for changes.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	base := filepath.Base(name)

	w.mu.Lock()
	defer w.mu.Unlock()
	// A new Directory.Build.* or nuget.g.* file changes the implicit imports.
	return w.files[name] || base == "Directory.Build.props" || base == "Directory.Build.targets" ||
		strings.Contains(base, ".nuget.g.")
}

func (w *Watcher) reload(ctx context.Context) error {
	s, err := w.loader.Load(ctx, w.projectPath)
	if err != nil {
		return err
	}

	files := make(map[string]bool)
	for _, f := range s.Files() {
		files[filepath.Clean(f)] = true
		w.watchDir(filepath.Dir(f))
	}
	// Watch obj even before restore creates the nuget files.
	if info, err := os.Stat(s.ProjectExtensionsPath); err == nil && info.IsDir() {
		w.watchDir(s.ProjectExtensionsPath)
	}

	w.mu.Lock()
	w.files = files
	w.mu.Unlock()

	w.source.Publish(s)
	return nil
}

func (w *Watcher) watchDir(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		w.logger.Warn("Cannot watch {Directory}: {Error}", dir, err)
		return
	}
	w.dirs[dir] = true
}
