package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/policy"
)

// fullRecord has every scored field set and passes every rule.
func fullRecord() entity.NormalizedRecord {
	return entity.NormalizedRecord{
		DocumentID:         entity.Ptr("6a1e9c1e-8a8f-4a51-9d55-3c4f1f7a0b11"),
		DocumentType:       entity.Ptr("invoice"),
		SourceFileName:     entity.Ptr("acme.pdf"),
		VendorName:         entity.Ptr("Acme Supplies"),
		ClientName:         entity.Ptr("Globex"),
		InvoiceNumber:      entity.Ptr("2025-001"),
		IssueDate:          entity.Ptr("2025-01-15"),
		DueDate:            entity.Ptr("2025-02-15"),
		TotalAmount:        entity.Ptr(952.0),
		TaxAmount:          entity.Ptr(102.0),
		Currency:           entity.Ptr("USD"),
		PaymentTerms:       entity.Ptr("Net 30"),
		ReferenceNumber:    entity.Ptr("PO-7781"),
		ContractNumber:     entity.Ptr("CTR-9"),
		RawTextSnapshot:    entity.Ptr("Invoice Number: INV-2025-001"),
		ProcessedTimestamp: entity.Ptr("2025-01-15T10:00:00Z"),
	}
}

func TestValidate_FullRecordPasses(t *testing.T) {
	res := New(policy.Default(), nil).Validate(fullRecord())

	assert.Empty(t, res.MissingFields)
	assert.Empty(t, res.Violations)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, constants.StatusPassed, res.Status)
}

func TestValidate_InvoiceWithoutContractPasses(t *testing.T) {
	rec := fullRecord()
	rec.ContractNumber = nil

	res := New(policy.Default(), nil).Validate(rec)

	assert.Empty(t, res.Errors())
	assert.Equal(t, 0.94, res.Score) // 15/16
	assert.Equal(t, constants.StatusPassed, res.Status)
}

func TestValidate_TaxExceedsTotal(t *testing.T) {
	rec := fullRecord()
	rec.TotalAmount = entity.Ptr(50.0)
	rec.TaxAmount = entity.Ptr(75.0)

	res := New(policy.Default(), nil).Validate(rec)

	assert.Equal(t, []string{"Total amount (50) must be greater than tax amount (75)"}, res.Errors())
	assert.Equal(t, 0.9, res.Score)
	assert.Equal(t, constants.StatusPartial, res.Status, "an error alone does not force FAILED")
	assert.True(t, res.HasCategory(entity.CategoryNumeric))
	assert.False(t, res.HasCategory(entity.CategoryDate))
}

func TestValidate_MissingRequiredForcesFailed(t *testing.T) {
	rec := fullRecord()
	rec.Currency = nil

	res := New(policy.Default(), nil).Validate(rec)

	assert.Equal(t, []string{"currency"}, res.MissingFields)
	assert.Equal(t, []string{"Currency is required"}, res.Errors())
	assert.Equal(t, 0.64, res.Score) // 15/16 - 0.1 - 0.2
	assert.Equal(t, constants.StatusFailed, res.Status)
}

func TestValidate_EmptyRecord(t *testing.T) {
	res := New(policy.Default(), nil).Validate(entity.NormalizedRecord{})

	assert.Equal(t, []string{"invoice_number", "issue_date", "total_amount", "currency"}, res.MissingFields)
	assert.Equal(t, []string{"total_amount must be a valid number", "Currency is required"}, res.Errors())
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, constants.StatusFailed, res.Status)
}

func TestValidate_RequiredFieldsFromPolicy(t *testing.T) {
	p := policy.Default()
	p.RequiredFields = []constants.Field{constants.FieldVendorName}
	rec := fullRecord()
	rec.VendorName = entity.Ptr("   ")
	rec.InvoiceNumber = nil

	res := New(p, nil).Validate(rec)

	assert.Equal(t, []string{"vendor_name"}, res.MissingFields)
	assert.Equal(t, constants.StatusFailed, res.Status)
}

func TestValidate_Dates(t *testing.T) {
	tests := []struct {
		name  string
		issue *string
		due   *string
		want  []string
	}{
		{name: "ordered", issue: entity.Ptr("2025-01-15"), due: entity.Ptr("2025-02-15")},
		{name: "same day", issue: entity.Ptr("2025-01-15"), due: entity.Ptr("2025-01-15"),
			want: []string{"Due date (2025-01-15) must be after issue date (2025-01-15)"}},
		{name: "reversed", issue: entity.Ptr("2025-03-01"), due: entity.Ptr("2025-02-01"),
			want: []string{"Due date (2025-02-01) must be after issue date (2025-03-01)"}},
		{name: "impossible issue skips order", issue: entity.Ptr("2025-02-30"), due: entity.Ptr("2025-01-01"),
			want: []string{"issue_date must be in ISO format (YYYY-MM-DD), got: 2025-02-30"}},
		{name: "bad due", issue: entity.Ptr("2025-01-15"), due: entity.Ptr("15/02/2025"),
			want: []string{"due_date must be in ISO format (YYYY-MM-DD), got: 15/02/2025"}},
		{name: "due absent", issue: entity.Ptr("2025-01-15")},
		{name: "both absent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			rec.IssueDate, rec.DueDate = tt.issue, tt.due

			res := New(policy.Default(), nil).Validate(rec)

			if tt.want == nil {
				assert.False(t, res.HasCategory(entity.CategoryDate))
				return
			}
			assert.Equal(t, tt.want, res.Errors())
			assert.True(t, res.HasCategory(entity.CategoryDate))
		})
	}
}

func TestValidate_Amounts(t *testing.T) {
	tests := []struct {
		name  string
		total *float64
		tax   *float64
		want  []string
	}{
		{name: "no tax", total: entity.Ptr(10.0)},
		{name: "zero tax", total: entity.Ptr(10.0), tax: entity.Ptr(0.0)},
		{name: "missing total", tax: entity.Ptr(1.0), want: []string{"total_amount must be a valid number"}},
		{name: "nan total", total: entity.Ptr(math.NaN()), want: []string{"total_amount must be a valid number"}},
		{name: "zero total and tax", total: entity.Ptr(0.0), tax: entity.Ptr(0.0), want: []string{
			"total_amount must be positive, got: 0",
			"Total amount (0) must be greater than tax amount (0)",
		}},
		{name: "negative tax", total: entity.Ptr(100.0), tax: entity.Ptr(-5.5), want: []string{
			"tax_amount must be non-negative, got: -5.5",
		}},
		{name: "infinite tax", total: entity.Ptr(100.0), tax: entity.Ptr(math.Inf(1)), want: []string{
			"tax_amount must be a valid number",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			rec.TotalAmount, rec.TaxAmount = tt.total, tt.tax

			res := New(policy.Default(), nil).Validate(rec)

			if tt.want == nil {
				assert.Empty(t, res.Errors())
				return
			}
			assert.Equal(t, tt.want, res.Errors())
		})
	}
}

func TestValidate_CurrencyOutsideWhitelist(t *testing.T) {
	p := policy.Default()
	p.Currencies = []string{"USD", "EUR"}
	rec := fullRecord()
	rec.Currency = entity.Ptr("GBP")

	res := New(p, nil).Validate(rec)

	require.Len(t, res.Violations, 1)
	assert.Equal(t, entity.CategoryCurrency, res.Violations[0].Category)
	assert.Equal(t, "Invalid currency code: GBP. Must be one of: USD, EUR", res.Violations[0].Message)
}

func TestScore(t *testing.T) {
	s := policy.Default().Scoring
	full := fullRecord()
	partial := fullRecord()
	partial.VendorName, partial.ClientName, partial.PaymentTerms = nil, nil, nil
	partial.ReferenceNumber, partial.ContractNumber = nil, nil // 11 of 16

	tests := []struct {
		name    string
		rec     entity.NormalizedRecord
		errors  int
		missing int
		want    float64
	}{
		{name: "complete", rec: full, want: 1},
		{name: "rounds half away from zero", rec: partial, want: 0.69},
		{name: "error penalty", rec: full, errors: 2, want: 0.8},
		{name: "error penalty capped", rec: full, errors: 9, want: 0.5},
		{name: "missing penalty uncapped", rec: full, missing: 4, want: 0.2},
		{name: "clamped at zero", rec: partial, errors: 5, missing: 2, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.rec, tt.errors, tt.missing, s))
		})
	}
}

func TestStatus(t *testing.T) {
	s := policy.Default().Scoring
	tests := []struct {
		name    string
		score   float64
		errors  int
		missing int
		want    constants.ValidationStatus
	}{
		{name: "clean and high", score: 0.8, want: constants.StatusPassed},
		{name: "missing overrides score", score: 1, missing: 1, want: constants.StatusFailed},
		{name: "errors demote to partial", score: 0.95, errors: 1, want: constants.StatusPartial},
		{name: "partial floor", score: 0.5, want: constants.StatusPartial},
		{name: "below partial", score: 0.49, want: constants.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.score, tt.errors, tt.missing, s))
		})
	}
}
