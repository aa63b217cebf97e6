package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docextract/internal/common"
)

// ScanDirectory walks root in lexical order and returns the matching files with their hashes.
// Unreadable files are reported as failures and do not stop the walk. A missing or
// non-directory root is an input error.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions, logger *slog.Logger) ([]Source, []Failure, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, nil, stats, common.NewAppError(common.CodeInput, "input directory is required", common.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, stats, common.NewAppError(common.CodeInput, "resolve input directory", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, stats, common.NewAppError(common.CodeInput,
			fmt.Sprintf("input directory %s not found", root), fmt.Errorf("%w: %v", common.ErrNotFound, err))
	}
	if !info.IsDir() {
		return nil, nil, stats, common.NewAppError(common.CodeInput,
			fmt.Sprintf("input path %s is not a directory", root), common.ErrInvalidInput)
	}

	exts := extSet(opts.Extensions)
	var sources []Source
	var failures []Failure

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == abs {
			return walkErr
		}
		stats.Scanned++
		if walkErr != nil {
			failures = append(failures, Failure{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !AllowedExt(filepath.Ext(path), exts) {
			return nil
		}
		stats.Matched++

		src, err := NewSource(path)
		if err != nil {
			logger.Warn("ingest.hash.failed", "path", path, "err", err)
			failures = append(failures, Failure{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		sources = append(sources, src)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return sources, failures, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("ingest.scan.done",
		"root", abs,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed,
	)
	return sources, failures, stats, nil
}
