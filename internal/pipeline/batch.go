package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/internal/async"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/dedup"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/report"
	"github.com/joseph-ayodele/docextract/internal/textprovider"
)

// DedupMode selects what happens to repeated documents after the parallel phase.
type DedupMode int

const (
	DedupRemove DedupMode = iota // drop repeats from the output
	DedupMark                    // keep repeats, flagged
	DedupOff
)

// ProviderFactory opens the text source for one input.
type ProviderFactory func(src ingest.Source) textprovider.TextProvider

// FileProviders reads every source from disk.
func FileProviders(cfg textprovider.Config, logger *slog.Logger) ProviderFactory {
	return func(src ingest.Source) textprovider.TextProvider {
		return textprovider.NewFile(src.Path, cfg, logger)
	}
}

// Result is the output of one batch run.
type Result struct {
	BatchID    string
	Records    []entity.DocumentRecord // unique records, or every record when marking
	Duplicates []entity.DocumentRecord
	Report     entity.BatchReport
}

type Batch struct {
	processor *Processor
	pool      *async.Pool
	dedup     *dedup.Deduplicator
	mode      DedupMode
	providers ProviderFactory
	logger    *slog.Logger
	now       func() time.Time
}

type BatchOption func(*Batch)

func WithPool(p *async.Pool) BatchOption {
	return func(b *Batch) {
		if p != nil {
			b.pool = p
		}
	}
}

func WithDedupMode(m DedupMode) BatchOption {
	return func(b *Batch) { b.mode = m }
}

func WithDeduplicator(d *dedup.Deduplicator) BatchOption {
	return func(b *Batch) {
		if d != nil {
			b.dedup = d
		}
	}
}

func WithProviderFactory(f ProviderFactory) BatchOption {
	return func(b *Batch) {
		if f != nil {
			b.providers = f
		}
	}
}

func NewBatch(proc *Processor, logger *slog.Logger, opts ...BatchOption) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Batch{
		processor: proc,
		pool:      async.NewPool(logger),
		dedup:     dedup.New(logger),
		mode:      DedupRemove,
		providers: FileProviders(textprovider.Config{}, logger),
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Run processes sources in parallel, then deduplicates and reports on the completed set.
// Only cancellation of ctx fails the run.
func (b *Batch) Run(ctx context.Context, sources []ingest.Source) (Result, error) {
	batchID := uuid.NewString()
	start := b.now()
	b.logger.Info("pipeline.batch.start", "batch_id", batchID, "documents", len(sources), "workers", b.pool.Workers())

	records, err := b.Process(ctx, batchID, sources)
	if err != nil {
		return Result{BatchID: batchID}, err
	}
	res := b.Finalize(batchID, records)

	b.logger.Info("pipeline.batch.done",
		"batch_id", batchID,
		"documents", len(sources),
		"records", len(res.Records),
		"duplicates", len(res.Duplicates),
		"passed", res.Report.Passed,
		"partial", res.Report.Partial,
		"failed", res.Report.Failed,
		"elapsed_ms", b.now().Sub(start).Milliseconds(),
	)
	return res, nil
}

// Process runs every source through the processor on the pool. Records keep input order.
func (b *Batch) Process(ctx context.Context, batchID string, sources []ingest.Source) ([]entity.DocumentRecord, error) {
	ctx = common.WithBatchID(ctx, batchID)
	records, err := async.Map(ctx, b.pool, sources, func(ctx context.Context, _ int, src ingest.Source) entity.DocumentRecord {
		return b.processor.ProcessDocument(ctx, b.providers(src), src)
	})
	if err != nil {
		return nil, common.WrapError(err, "batch cancelled")
	}
	return records, nil
}

// Finalize applies the dedup mode to completed records and builds the report over the output set.
func (b *Batch) Finalize(batchID string, records []entity.DocumentRecord) Result {
	res := Result{BatchID: batchID}
	switch b.mode {
	case DedupMark:
		res.Records = b.dedup.Mark(records)
		for _, r := range res.Records {
			if r.IsDuplicate {
				res.Duplicates = append(res.Duplicates, r)
			}
		}
	case DedupOff:
		out := make([]entity.DocumentRecord, len(records))
		for i, r := range records {
			r.Fingerprint = dedup.Fingerprint(r.Fields)
			out[i] = r
		}
		res.Records = out
	default:
		res.Records, res.Duplicates = b.dedup.Partition(records)
	}
	res.Report = report.Build(res.Records, len(res.Duplicates), b.now())
	return res
}
