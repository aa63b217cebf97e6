package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn, DialTimeout: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	return db
}

func newRepo(t *testing.T) DocumentRepository {
	t.Helper()
	repo := NewDocumentRepository(openMemory(t), nil)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

var processedAt = time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)

func record(name string, status constants.ValidationStatus) entity.DocumentRecord {
	return entity.DocumentRecord{
		ID:               uuid.New(),
		SourceFileName:   name,
		SourcePath:       "/in/" + name,
		ContentHash:      "abc",
		ProcessedAt:      processedAt,
		PageCount:        2,
		ExtractionMethod: "pdftotext",
		Fingerprint:      "fp-" + name,
		Fields: entity.NormalizedRecord{
			DocumentType:  entity.Ptr("invoice"),
			InvoiceNumber: entity.Ptr("2025-001"),
			IssueDate:     entity.Ptr("2025-01-15"),
			TotalAmount:   entity.Ptr(952.5),
			Currency:      entity.Ptr("USD"),
		},
		Validation: entity.ValidationResult{Score: 0.75, Status: status},
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	require.Error(t, err)
	assert.Equal(t, common.CodeConfig, common.CodeOf(err))
}

func TestHealthCheck(t *testing.T) {
	db := openMemory(t)
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second, nil))
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	repo := NewDocumentRepository(openMemory(t), nil)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestSaveBatch_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	failed := record("scan.pdf", constants.StatusFailed)
	failed.Fields = entity.NormalizedRecord{}
	failed.Error = "No text extracted from document"
	failed.IsDuplicate = true
	failed.Validation = entity.ValidationResult{
		Status:        constants.StatusFailed,
		MissingFields: []string{"invoice_number", "currency"},
		Violations: []entity.Violation{
			{Category: entity.CategoryCurrency, Field: constants.FieldCurrency, Message: "Currency is required"},
		},
	}

	n, err := repo.SaveBatch(ctx, "batch-1", []entity.DocumentRecord{record("acme.pdf", constants.StatusPassed), failed})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ok := docs[0]
	assert.Equal(t, "acme.pdf", ok.SourceFileName)
	assert.Equal(t, "batch-1", ok.BatchID)
	assert.Equal(t, "/in/acme.pdf", ok.SourcePath)
	assert.Equal(t, "fp-acme.pdf", ok.Fingerprint)
	assert.Equal(t, "pdftotext", ok.ExtractionMethod)
	assert.Equal(t, 2, ok.PageCount)
	assert.Equal(t, "2025-001", entity.StrOrEmpty(ok.InvoiceNumber))
	require.NotNil(t, ok.TotalAmount)
	assert.Equal(t, 952.5, *ok.TotalAmount)
	assert.Nil(t, ok.TaxAmount)
	assert.Nil(t, ok.VendorName)
	assert.Equal(t, "2025-01-20T09:30:00Z", ok.ProcessedTimestamp)
	assert.Equal(t, "PASSED", ok.ValidationStatus)
	assert.Equal(t, 0.75, ok.ValidationScore)
	assert.Equal(t, []string{}, ok.MissingFields)
	assert.False(t, ok.IsDuplicate)

	bad := docs[1]
	assert.Equal(t, "scan.pdf", bad.SourceFileName)
	assert.Equal(t, failed.ID.String(), bad.DocumentID)
	assert.Equal(t, []string{"invoice_number", "currency"}, bad.MissingFields)
	assert.Equal(t, []string{"Currency is required"}, bad.ValidationErrors)
	assert.Equal(t, "No text extracted from document", bad.Error)
	assert.True(t, bad.IsDuplicate)
	assert.Nil(t, bad.DocumentType)
}

func TestSaveBatch_Empty(t *testing.T) {
	n, err := newRepo(t).SaveBatch(context.Background(), "batch-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveBatch_Chunks(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	recs := make([]entity.DocumentRecord, insertChunk+5)
	for i := range recs {
		recs[i] = record(fmt.Sprintf("doc-%03d.pdf", i), constants.StatusPartial)
	}
	n, err := repo.SaveBatch(ctx, "big", recs)
	require.NoError(t, err)
	assert.Equal(t, len(recs), n)

	docs, err := repo.List(ctx, ListFilter{BatchID: "big", Limit: 3})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-000.pdf", docs[0].SourceFileName)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.SaveBatch(ctx, "b1", []entity.DocumentRecord{
		record("a.pdf", constants.StatusPassed),
		record("b.pdf", constants.StatusPartial),
	})
	require.NoError(t, err)
	_, err = repo.SaveBatch(ctx, "b2", []entity.DocumentRecord{
		record("c.pdf", constants.StatusPassed),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{name: "all", filter: ListFilter{}, want: []string{"a.pdf", "b.pdf", "c.pdf"}},
		{name: "status", filter: ListFilter{Status: constants.StatusPassed}, want: []string{"a.pdf", "c.pdf"}},
		{name: "batch", filter: ListFilter{BatchID: "b1"}, want: []string{"a.pdf", "b.pdf"}},
		{name: "status and batch", filter: ListFilter{Status: constants.StatusPassed, BatchID: "b2"}, want: []string{"c.pdf"}},
		{name: "limit", filter: ListFilter{Limit: 1}, want: []string{"a.pdf"}},
		{name: "no match", filter: ListFilter{Status: constants.StatusFailed}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, len(docs))
			for i, d := range docs {
				names[i] = d.SourceFileName
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	_, err = repo.SaveBatch(ctx, "b1", []entity.DocumentRecord{
		record("a.pdf", constants.StatusPassed),
		record("b.pdf", constants.StatusPassed),
		record("c.pdf", constants.StatusFailed),
	})
	require.NoError(t, err)

	counts, err = repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[constants.ValidationStatus]int{
		constants.StatusPassed: 2,
		constants.StatusFailed: 1,
	}, counts)
}
