package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/async"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	"github.com/joseph-ayodele/docextract/internal/policy"
	"github.com/joseph-ayodele/docextract/internal/textprovider"
)

const fullInvoice = `ACME SUPPLIES LTD
From: Acme Supplies Ltd
Bill To: Globex Corporation
Invoice Number: INV-2025-001
Issue Date: 2025-01-15
Due Date: 2025-02-15
Payment Terms: Net 30
PO Number: PO-7781
Subtotal: $850.00
TAX: $102.00
TOTAL: $952.00
USD`

const bareInvoice = `Invoice Number: INV-2025-001
Issue Date: 2025-01-15
Due Date: 2025-02-15
TOTAL: $952.00
TAX: $102.00
USD`

type errProvider struct{ err error }

func (p errProvider) Extract(context.Context) (string, error) { return "", p.err }
func (errProvider) Snapshot(int) string                       { return "" }
func (errProvider) IsTextBased() bool                         { return false }
func (errProvider) PageCount() int                            { return 0 }

type panicProvider struct{ errProvider }

func (panicProvider) Extract(context.Context) (string, error) { panic("boom") }

// hashProvider records the content hash it sees in its context.
type hashProvider struct {
	*textprovider.Static
	seen string
}

func (p *hashProvider) Extract(ctx context.Context) (string, error) {
	p.seen, _ = common.ContentHashFromContext(ctx)
	return p.Static.Extract(ctx)
}

func newProcessor() *Processor { return NewProcessor(policy.Default(), 10, nil) }

func source(name string) ingest.Source {
	return ingest.Source{Path: "/in/" + name, Name: name, Ext: "txt", HashHex: "abc"}
}

func TestProcessDocument_FullInvoice(t *testing.T) {
	rec := newProcessor().ProcessDocument(context.Background(), textprovider.NewStatic(fullInvoice), source("acme.txt"))

	require.Empty(t, rec.Error)
	f := rec.Fields
	assert.Equal(t, rec.ID.String(), entity.StrOrEmpty(f.DocumentID))
	assert.Equal(t, "acme.txt", entity.StrOrEmpty(f.SourceFileName))
	assert.NotEmpty(t, entity.StrOrEmpty(f.ProcessedTimestamp))
	assert.Equal(t, "invoice", entity.StrOrEmpty(f.DocumentType))
	assert.Equal(t, "Acme Supplies", entity.StrOrEmpty(f.VendorName))
	assert.Equal(t, "Globex", entity.StrOrEmpty(f.ClientName))
	assert.Equal(t, "2025-001", entity.StrOrEmpty(f.InvoiceNumber))
	assert.Equal(t, "2025-01-15", entity.StrOrEmpty(f.IssueDate))
	assert.Equal(t, "2025-02-15", entity.StrOrEmpty(f.DueDate))
	require.NotNil(t, f.TotalAmount)
	assert.Equal(t, 952.0, *f.TotalAmount)
	require.NotNil(t, f.TaxAmount)
	assert.Equal(t, 102.0, *f.TaxAmount)
	assert.Equal(t, "USD", entity.StrOrEmpty(f.Currency))
	assert.Equal(t, "Net 30", entity.StrOrEmpty(f.PaymentTerms))
	assert.Equal(t, "PO-7781", entity.StrOrEmpty(f.ReferenceNumber))
	assert.Nil(t, f.ContractNumber)

	assert.Empty(t, rec.Validation.Errors())
	assert.Empty(t, rec.Validation.MissingFields)
	assert.Equal(t, 0.94, rec.Validation.Score)
	assert.Equal(t, constants.StatusPassed, rec.Validation.Status)

	assert.Equal(t, "abc", rec.ContentHash)
	assert.Equal(t, "/in/acme.txt", rec.SourcePath)
	assert.Equal(t, textprovider.MethodStatic, rec.ExtractionMethod)
	assert.Equal(t, 1, rec.PageCount)
	assert.True(t, rec.TextBased)
}

func TestProcessDocument_BareInvoice(t *testing.T) {
	rec := newProcessor().ProcessDocument(context.Background(), textprovider.NewStatic(bareInvoice), source("bare.txt"))

	f := rec.Fields
	assert.Equal(t, "2025-001", entity.StrOrEmpty(f.InvoiceNumber))
	assert.Equal(t, "2025-01-15", entity.StrOrEmpty(f.IssueDate))
	assert.Equal(t, "2025-02-15", entity.StrOrEmpty(f.DueDate))
	assert.Equal(t, 952.0, *f.TotalAmount)
	assert.Equal(t, 102.0, *f.TaxAmount)
	assert.Equal(t, "USD", entity.StrOrEmpty(f.Currency))

	assert.Empty(t, rec.Validation.Errors())
	assert.Equal(t, 0.69, rec.Validation.Score) // 11 of 16 fields
	assert.Equal(t, constants.StatusPartial, rec.Validation.Status)
}

func TestProcessDocument_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider textprovider.TextProvider
		wantErr  string
	}{
		{name: "empty text", provider: textprovider.NewStatic("   \n "), wantErr: ErrNoText},
		{name: "too short", provider: textprovider.NewStatic("Inv 12"), wantErr: ErrNoText},
		{name: "provider error", provider: errProvider{err: errors.New("pdf is encrypted")}, wantErr: "pdf is encrypted"},
		{name: "panic", provider: panicProvider{}, wantErr: "panic: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newProcessor().ProcessDocument(context.Background(), tt.provider, source("x.pdf"))

			assert.Equal(t, tt.wantErr, rec.Error)
			assert.True(t, rec.Failed())
			assert.Equal(t, constants.StatusFailed, rec.Validation.Status)
			assert.Zero(t, rec.Validation.Score)
			assert.Equal(t, "x.pdf", entity.StrOrEmpty(rec.Fields.SourceFileName))
			assert.Equal(t, rec.ID.String(), entity.StrOrEmpty(rec.Fields.DocumentID))
			assert.Nil(t, rec.Fields.InvoiceNumber)
		})
	}
}

// texts maps source names to document text.
func texts(m map[string]string) ProviderFactory {
	return func(src ingest.Source) textprovider.TextProvider {
		return textprovider.NewStatic(m[src.Name])
	}
}

func batchSources(names ...string) []ingest.Source {
	out := make([]ingest.Source, len(names))
	for i, n := range names {
		out[i] = source(n)
	}
	return out
}

func recordNames(rs []entity.DocumentRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.SourceFileName
	}
	return out
}

func TestBatchRun_DedupModes(t *testing.T) {
	docs := map[string]string{
		"a.txt":      fullInvoice,
		"b.txt":      strings.Replace(fullInvoice, "INV-2025-001", "INV-2025-002", 1),
		"a-copy.txt": fullInvoice,
		"empty.txt":  "",
	}
	srcs := batchSources("a.txt", "b.txt", "a-copy.txt", "empty.txt")
	pool := async.NewPool(nil, async.WithWorkers(3))

	t.Run("remove", func(t *testing.T) {
		b := NewBatch(newProcessor(), nil, WithPool(pool), WithProviderFactory(texts(docs)))
		res, err := b.Run(context.Background(), srcs)
		require.NoError(t, err)

		assert.NotEmpty(t, res.BatchID)
		assert.Equal(t, []string{"a.txt", "b.txt", "empty.txt"}, recordNames(res.Records))
		assert.Equal(t, []string{"a-copy.txt"}, recordNames(res.Duplicates))
		assert.Equal(t, 3, res.Report.TotalProcessed)
		assert.Equal(t, 2, res.Report.Passed)
		assert.Equal(t, 1, res.Report.Failed)
		assert.Equal(t, 1, res.Report.Duplicates)
		require.Len(t, res.Report.ErrorDetails, 1)
		assert.Equal(t, []string{ErrNoText}, res.Report.ErrorDetails[0].Errors)
	})

	t.Run("mark", func(t *testing.T) {
		b := NewBatch(newProcessor(), nil, WithPool(pool), WithProviderFactory(texts(docs)), WithDedupMode(DedupMark))
		res, err := b.Run(context.Background(), srcs)
		require.NoError(t, err)

		require.Len(t, res.Records, 4)
		assert.Equal(t, []bool{false, false, true, false}, []bool{
			res.Records[0].IsDuplicate, res.Records[1].IsDuplicate, res.Records[2].IsDuplicate, res.Records[3].IsDuplicate,
		})
		assert.Equal(t, res.Records[0].Fingerprint, res.Records[2].Fingerprint)
		assert.Equal(t, 4, res.Report.TotalProcessed)
		assert.Equal(t, 1, res.Report.Duplicates)
	})

	t.Run("off", func(t *testing.T) {
		b := NewBatch(newProcessor(), nil, WithPool(pool), WithProviderFactory(texts(docs)), WithDedupMode(DedupOff))
		res, err := b.Run(context.Background(), srcs)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt", "b.txt", "a-copy.txt", "empty.txt"}, recordNames(res.Records))
		assert.Empty(t, res.Duplicates)
		for _, r := range res.Records {
			assert.False(t, r.IsDuplicate)
			assert.NotEmpty(t, r.Fingerprint)
		}
	})
}

func TestBatchRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatch(newProcessor(), nil, WithProviderFactory(texts(nil)))
	_, err := b.Run(ctx, batchSources("a.txt"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatch_ProcessThenFinalize(t *testing.T) {
	docs := map[string]string{"a.txt": fullInvoice, "b.txt": fullInvoice}
	b := NewBatch(newProcessor(), nil, WithProviderFactory(texts(docs)))

	first, err := b.Process(context.Background(), "w-1", batchSources("a.txt"))
	require.NoError(t, err)
	second, err := b.Process(context.Background(), "w-2", batchSources("b.txt"))
	require.NoError(t, err)

	res := b.Finalize("w-2", append(first, second...))
	assert.Equal(t, "w-2", res.BatchID)
	assert.Equal(t, []string{"a.txt"}, recordNames(res.Records))
	assert.Equal(t, []string{"b.txt"}, recordNames(res.Duplicates))
	assert.Equal(t, 1, res.Report.Duplicates)
	assert.Empty(t, first[0].Fingerprint)
}

func TestProcessDocument_ContentHashInContext(t *testing.T) {
	p := &hashProvider{Static: textprovider.NewStatic(fullInvoice)}
	rec := newProcessor().ProcessDocument(context.Background(), p, source("acme.txt"))

	require.Empty(t, rec.Error)
	assert.Equal(t, "abc", p.seen)
	assert.Equal(t, "abc", rec.ContentHash)
}
