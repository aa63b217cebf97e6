package main

import (
	"context"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/pipeline"
	"github.com/joseph-ayodele/docextract/internal/policy"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process documents as they appear in the input directory",
		Long: `Watch processes everything already in the input directory, then keeps
running and reprocesses files as they are created or rewritten. Outputs are
rewritten after every change and always cover the whole directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context(), cmd.OutOrStdout(), debounce)
		},
	}

	fs := cmd.Flags()
	fs.String("input", "", "directory to watch")
	fs.String("output", "", "directory for output files")
	fs.StringSlice("formats", nil, "output formats: json, yaml, xlsx")
	fs.Int("workers", 0, "documents processed concurrently")
	fs.Bool("mark-duplicates", false, "keep duplicates in the output, flagged with is_duplicate")
	fs.Bool("store", false, "save records to the configured database")
	fs.DurationVar(&debounce, "debounce", 2*time.Second, "quiet period before a burst of changes is processed")

	bindKey(fs, "input", "input.dir")
	bindKey(fs, "output", "output.dir")
	bindKey(fs, "formats", "output.formats")
	bindKey(fs, "workers", "pipeline.workers")
	bindKey(fs, "mark-duplicates", "pipeline.mark_duplicates")
	bindKey(fs, "store", "database.store")
	return cmd
}

func (a *app) runWatch(ctx context.Context, out io.Writer, debounce time.Duration) error {
	cfg := a.cfg
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Input.Dir},
		Extensions:  cfg.Input.Extensions,
		SkipHidden:  cfg.Input.SkipHidden,
		InitialScan: true,
		Debounce:    debounce,
	}, a.logger)
	if err != nil {
		return common.NewAppError(common.CodeInput, "watch "+cfg.Input.Dir, err)
	}
	a.logger.Info("watch.start", "dir", cfg.Input.Dir, "debounce", debounce.String())

	pol := policy.FromConfig(cfg.Policy)
	w := &watchState{app: a, pol: pol, batch: a.newBatch(pol), known: map[string]entity.DocumentRecord{}}
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("watch.stop")
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn("watch.error", "error", err)
		case paths, ok := <-events:
			if !ok {
				return nil
			}
			if err := w.apply(ctx, out, paths); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// watchState keeps the latest record per source path across change batches.
type watchState struct {
	app   *app
	pol   policy.Policy
	batch *pipeline.Batch
	known map[string]entity.DocumentRecord
}

func (w *watchState) apply(ctx context.Context, out io.Writer, paths []string) error {
	logger := w.app.logger
	var srcs []ingest.Source
	for _, p := range paths {
		src, err := ingest.NewSource(p)
		if err != nil {
			// renamed away or unreadable
			if abs, aerr := filepath.Abs(p); aerr == nil {
				delete(w.known, abs)
			}
			logger.Warn("watch.source.skipped", "path", p, "error", err)
			continue
		}
		srcs = append(srcs, src)
	}

	batchID := uuid.NewString()
	fresh, err := w.batch.Process(ctx, batchID, srcs)
	if err != nil {
		return err
	}
	ids := make(map[uuid.UUID]struct{}, len(fresh))
	for _, r := range fresh {
		w.known[r.SourcePath] = r
		ids[r.ID] = struct{}{}
	}

	all := make([]entity.DocumentRecord, 0, len(w.known))
	for _, p := range slices.Sorted(maps.Keys(w.known)) {
		all = append(all, w.known[p])
	}
	res := w.batch.Finalize(batchID, all)

	outPaths, err := w.app.writeOutputs(w.pol, res)
	if err != nil {
		return err
	}
	stored := -1
	if w.app.cfg.Database.Store {
		var changed []entity.DocumentRecord
		for _, r := range res.Records {
			if _, ok := ids[r.ID]; ok {
				changed = append(changed, r)
			}
		}
		toStore := pipeline.Result{BatchID: batchID, Records: changed}
		if stored, err = w.app.store(ctx, toStore); err != nil {
			return err
		}
	}

	logger.Info("watch.batch.done", "batch_id", batchID, "changed", len(fresh), "total", len(all))
	printSummary(out, res, outPaths, stored)
	return nil
}
