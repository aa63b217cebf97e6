// Package pipeline turns source documents into validated records and runs batches of them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/extract"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/normalize"
	"github.com/joseph-ayodele/docextract/internal/policy"
	"github.com/joseph-ayodele/docextract/internal/textprovider"
	"github.com/joseph-ayodele/docextract/internal/utils"
	"github.com/joseph-ayodele/docextract/internal/validate"
)

// ErrNoText is the record error for documents whose text is empty or too short.
const ErrNoText = "No text extracted from document"

// Processor runs extraction, normalization and validation for one document.
type Processor struct {
	extractor     *extract.Extractor
	normalizer    *normalize.Normalizer
	validator     *validate.Engine
	minTextLength int
	logger        *slog.Logger
	now           func() time.Time
}

func NewProcessor(p policy.Policy, minTextLength int, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if minTextLength <= 0 {
		minTextLength = 10
	}
	return &Processor{
		extractor:     extract.New(p, logger),
		normalizer:    normalize.New(p, logger),
		validator:     validate.New(p, logger),
		minTextLength: minTextLength,
		logger:        logger,
		now:           time.Now,
	}
}

// ProcessDocument never fails: text errors, short text and panics all produce a FAILED
// record with score 0 and Error set.
func (p *Processor) ProcessDocument(ctx context.Context, provider textprovider.TextProvider, src ingest.Source) (rec entity.DocumentRecord) {
	start := p.now()
	rec = entity.DocumentRecord{
		ID:             uuid.New(),
		SourceFileName: src.Name,
		SourcePath:     src.Path,
		ContentHash:    src.HashHex,
		ProcessedAt:    start.UTC(),
	}
	ctx = common.WithContentHash(common.WithDocumentID(ctx, rec.ID.String()), src.HashHex)
	logger := p.logger.With("document_id", rec.ID.String(), "source", src.Name, "batch_id", common.BatchIDFromContext(ctx), "content_hash", src.HashHex)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline.document.panic", "panic", r)
			rec = p.failed(rec, fmt.Sprintf("panic: %v", r))
		}
	}()

	text, err := provider.Extract(ctx)
	rec.PageCount = provider.PageCount()
	rec.TextBased = provider.IsTextBased()
	if m, ok := provider.(interface{ Method() string }); ok {
		rec.ExtractionMethod = m.Method()
	}
	if err != nil {
		logger.Warn("pipeline.text.failed", "err", err)
		return p.failed(rec, err.Error())
	}
	if textprovider.VisibleLen(text) < p.minTextLength {
		logger.Warn("pipeline.text.empty", "chars", textprovider.VisibleLen(text))
		return p.failed(rec, ErrNoText)
	}

	rec.Fields = p.Fields(rec, text)
	rec.Validation = p.validator.Validate(rec.Fields)

	logger.Info("pipeline.document.ok",
		"status", rec.Validation.Status,
		"score", rec.Validation.Score,
		"errors", len(rec.Validation.Violations),
		"method", rec.ExtractionMethod,
		"elapsed_ms", p.now().Sub(start).Milliseconds(),
	)
	return rec
}

// Fields extracts and normalizes text, with the identity fields of rec set first so they
// count toward completeness.
func (p *Processor) Fields(rec entity.DocumentRecord, text string) entity.NormalizedRecord {
	raw := p.extractor.ExtractAll(text)
	raw[constants.FieldDocumentID] = entity.StringValue(rec.ID.String())
	raw[constants.FieldSourceFileName] = entity.StringValue(rec.SourceFileName)
	raw[constants.FieldProcessedTimestamp] = entity.StringValue(utils.FormatTimestamp(rec.ProcessedAt))
	return p.normalizer.Normalize(raw)
}

func (p *Processor) failed(rec entity.DocumentRecord, msg string) entity.DocumentRecord {
	rec.Error = msg
	rec.Fields = entity.NormalizedRecord{
		DocumentID:         entity.Ptr(rec.ID.String()),
		SourceFileName:     entity.Ptr(rec.SourceFileName),
		ProcessedTimestamp: entity.Ptr(utils.FormatTimestamp(rec.ProcessedAt)),
	}
	rec.Validation = entity.ValidationResult{
		Score:  0,
		Status: constants.StatusFailed,
	}
	return rec
}
