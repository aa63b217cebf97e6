package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	Extensions  []string // nil -> constants.AllowedExtensions
	SkipHidden  bool
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // coalesce rapid update/rename bursts
}

// StartWatcher emits batches of changed files under the configured roots. Each batch is the
// set of paths touched during one debounce window, sorted. Removed files are included; callers
// find them gone when they open them. Both channels close when ctx ends.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan []string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	exts := extSet(cfg.Extensions)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watcher.create.failed", "error", err)
		return nil, nil, err
	}

	var mu sync.Mutex
	pending := map[string]struct{}{}
	evCh := make(chan []string, 16)
	errCh := make(chan error, 1)

	take := func() []string {
		mu.Lock()
		defer mu.Unlock()
		if len(pending) == 0 {
			return nil
		}
		batch := make([]string, 0, len(pending))
		for p := range pending {
			batch = append(batch, p)
		}
		clear(pending)
		sort.Strings(batch)
		return batch
	}
	add := func(path string) {
		mu.Lock()
		pending[path] = struct{}{}
		mu.Unlock()
	}

	// Add roots recursively
	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path), exts) {
				add(path)
			}
			return nil
		})
		if err != nil {
			logger.Error("watcher.root.failed", "root", root, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(errCh)
		defer close(evCh)
		defer func() { _ = w.Close() }()

		flush := func() {
			if batch := take(); batch != nil {
				select {
				case evCh <- batch:
				case <-ctx.Done():
				}
			}
		}
		flush()

		debounce := cfg.Debounce
		if debounce <= 0 {
			debounce = time.Millisecond
		}
		timer := time.NewTimer(debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				flush()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				if e.Op.Has(fsnotify.Create) {
					// new directories are watched too; Add fails harmlessly for files
					_ = w.Add(e.Name)
				}
				if AllowedExt(filepath.Ext(e.Name), exts) && queued(e.Op) {
					add(e.Name)
					timer.Reset(debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func queued(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) || op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
