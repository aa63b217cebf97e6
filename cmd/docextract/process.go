package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docextract/internal/async"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/dedup"
	"github.com/joseph-ayodele/docextract/internal/export"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/pipeline"
	"github.com/joseph-ayodele/docextract/internal/policy"
	"github.com/joseph-ayodele/docextract/internal/repository"
	"github.com/joseph-ayodele/docextract/internal/textprovider"
)

func newProcessCmd(a *app) *cobra.Command {
	var dryRun, noDedup bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process every document in the input directory",
		Long: `Process scans the input directory, extracts and validates fields from every
document in parallel, removes duplicates, and writes extracted_data and
validation_report files to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noDedup {
				a.cfg.Pipeline.Deduplicate = false
			}
			return a.runProcess(cmd.Context(), cmd.OutOrStdout(), dryRun)
		},
	}

	fs := cmd.Flags()
	fs.String("input", "", "directory containing input documents")
	fs.String("output", "", "directory for output files")
	fs.Bool("recursive", false, "descend into subdirectories")
	fs.StringSlice("formats", nil, "output formats: json, yaml, xlsx")
	fs.Int("workers", 0, "documents processed concurrently")
	fs.Bool("mark-duplicates", false, "keep duplicates in the output, flagged with is_duplicate")
	fs.Bool("store", false, "save records to the configured database")
	fs.BoolVar(&dryRun, "dry-run", false, "list the documents that would be processed and exit")
	fs.BoolVar(&noDedup, "no-deduplication", false, "disable duplicate detection")

	bindKey(fs, "input", "input.dir")
	bindKey(fs, "output", "output.dir")
	bindKey(fs, "recursive", "input.recursive")
	bindKey(fs, "formats", "output.formats")
	bindKey(fs, "workers", "pipeline.workers")
	bindKey(fs, "mark-duplicates", "pipeline.mark_duplicates")
	bindKey(fs, "store", "database.store")
	return cmd
}

func (a *app) runProcess(ctx context.Context, out io.Writer, dryRun bool) error {
	cfg := a.cfg
	srcs, failures, stats, err := ingest.ScanDirectory(ctx, cfg.Input.Dir, a.scanOptions(), a.logger)
	if err != nil {
		return err
	}
	for _, f := range failures {
		a.logger.Warn("ingest.file.failed", "path", f.Path, "error", f.Err)
	}
	if len(srcs) == 0 {
		a.logger.Warn("no documents found", "dir", cfg.Input.Dir, "scanned", stats.Scanned)
		_, _ = fmt.Fprintf(out, "No documents found in %s\n", cfg.Input.Dir)
		return nil
	}

	if dryRun {
		_, _ = fmt.Fprintf(out, "Dry run: %d document(s) would be processed\n", len(srcs))
		for _, s := range srcs {
			a.logger.Info("would process", "source", s.Name, "size", s.Size)
			_, _ = fmt.Fprintf(out, "  - %s\n", s.Path)
		}
		return nil
	}

	pol := policy.FromConfig(cfg.Policy)
	res, err := a.newBatch(pol).Run(ctx, srcs)
	if err != nil {
		return err
	}

	paths, err := a.writeOutputs(pol, res)
	if err != nil {
		return err
	}
	stored := -1
	if cfg.Database.Store {
		if stored, err = a.store(ctx, res); err != nil {
			return err
		}
	}

	printSummary(out, res, paths, stored)
	return nil
}

func (a *app) scanOptions() ingest.ScanOptions {
	return ingest.ScanOptions{
		Recursive:  a.cfg.Input.Recursive,
		SkipHidden: a.cfg.Input.SkipHidden,
		Extensions: a.cfg.Input.Extensions,
	}
}

func dedupMode(c common.PipelineConfig) pipeline.DedupMode {
	switch {
	case !c.Deduplicate:
		return pipeline.DedupOff
	case c.MarkDuplicates:
		return pipeline.DedupMark
	default:
		return pipeline.DedupRemove
	}
}

func (a *app) newBatch(pol policy.Policy) *pipeline.Batch {
	pc := a.cfg.Pipeline
	proc := pipeline.NewProcessor(pol, pc.MinTextLength, a.logger)
	pool := async.NewPool(a.logger,
		async.WithWorkers(pc.Workers),
		async.WithDocumentTimeout(pc.DocumentTimeout),
	)
	textCfg := textprovider.FromConfig(a.cfg.Text, pc.MinTextLength)

	return pipeline.NewBatch(proc, a.logger,
		pipeline.WithPool(pool),
		pipeline.WithDeduplicator(dedup.New(a.logger, dedup.WithSkipEmpty(pc.SkipEmptyFingerprints))),
		pipeline.WithDedupMode(dedupMode(pc)),
		pipeline.WithProviderFactory(pipeline.FileProviders(textCfg, a.logger)),
	)
}

func (a *app) writeOutputs(pol policy.Policy, res pipeline.Result) ([]string, error) {
	w, err := export.NewWriter(a.cfg.Output.Dir, a.cfg.Output.Formats, pol.Currencies, a.logger)
	if err != nil {
		return nil, err
	}
	recPaths, err := w.WriteRecords(res.Records)
	if err != nil {
		return nil, err
	}
	repPaths, err := w.WriteReport(res.Report)
	if err != nil {
		return nil, err
	}
	return append(recPaths, repPaths...), nil
}

func (a *app) store(ctx context.Context, res pipeline.Result) (int, error) {
	db, err := repository.Open(ctx, repository.ConfigFrom(a.cfg.Database), a.logger)
	if err != nil {
		return 0, err
	}
	defer db.Close(a.logger)

	repo := repository.NewDocumentRepository(db, a.logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	return repo.SaveBatch(ctx, res.BatchID, res.Records)
}

// printSummary writes the end-of-run totals; stored < 0 means records were not stored.
func printSummary(out io.Writer, res pipeline.Result, paths []string, stored int) {
	r := res.Report
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }

	p("Processing complete (batch %s)\n", res.BatchID)
	p("- Total processed: %d\n", r.TotalProcessed)
	p("- Passed: %d\n", r.Passed)
	p("- Partial: %d\n", r.Partial)
	p("- Failed: %d\n", r.Failed)
	p("- Duplicates: %d\n", r.Duplicates)
	p("- Average validation score: %.2f\n", r.AverageScore)
	if stored >= 0 {
		p("- Stored records: %d\n", stored)
	}
	for _, path := range paths {
		p("- Output: %s\n", path)
	}
}
