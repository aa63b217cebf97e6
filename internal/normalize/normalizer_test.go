package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/policy"
)

func TestNormalize_FullRecord(t *testing.T) {
	n := New(policy.Default(), nil)
	raw := entity.RawFieldMap{
		constants.FieldDocumentID:         entity.StringValue("0b6f7c9e-3f0a-4d8e-9d7a-1a2b3c4d5e6f"),
		constants.FieldSourceFileName:     entity.StringValue("acme #1.pdf"),
		constants.FieldDocumentType:       entity.StringValue("invoice"),
		constants.FieldVendorName:         entity.StringValue("  Acme   Supplies™ "),
		constants.FieldInvoiceNumber:      entity.StringValue("inv 2025 001"),
		constants.FieldIssueDate:          entity.StringValue(" 2025-01-15 "),
		constants.FieldDueDate:            entity.StringValue("02/15/2025"),
		constants.FieldTotalAmount:        entity.StringValue("$1,234.50"),
		constants.FieldTaxAmount:          entity.NumberValue(102),
		constants.FieldCurrency:           entity.StringValue("usd"),
		constants.FieldPaymentTerms:       entity.StringValue("Net 30 (days)!"),
		constants.FieldProcessedTimestamp: entity.StringValue("2025-01-15T10:00:00Z"),
	}

	got := n.Normalize(raw)

	assert.Equal(t, "0b6f7c9e-3f0a-4d8e-9d7a-1a2b3c4d5e6f", entity.StrOrEmpty(got.DocumentID))
	assert.Equal(t, "acme #1.pdf", entity.StrOrEmpty(got.SourceFileName), "identity fields pass through")
	assert.Equal(t, "2025-01-15T10:00:00Z", entity.StrOrEmpty(got.ProcessedTimestamp))
	assert.Equal(t, "invoice", entity.StrOrEmpty(got.DocumentType))
	assert.Equal(t, "Acme Supplies", entity.StrOrEmpty(got.VendorName))
	assert.Equal(t, "2025-001", entity.StrOrEmpty(got.InvoiceNumber))
	assert.Equal(t, "2025-01-15", entity.StrOrEmpty(got.IssueDate))
	assert.Nil(t, got.DueDate, "non-ISO dates are dropped")
	require.NotNil(t, got.TotalAmount)
	assert.Equal(t, 1234.5, *got.TotalAmount)
	require.NotNil(t, got.TaxAmount)
	assert.Equal(t, 102.0, *got.TaxAmount)
	assert.Equal(t, "USD", entity.StrOrEmpty(got.Currency))
	assert.Equal(t, "Net 30 (days)", entity.StrOrEmpty(got.PaymentTerms))
	assert.Nil(t, got.ClientName)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(policy.Default(), nil)
	raw := entity.RawFieldMap{
		constants.FieldVendorName:    entity.StringValue("Acme & Sons, Ltd."),
		constants.FieldInvoiceNumber: entity.StringValue("#A 778"),
		constants.FieldIssueDate:     entity.StringValue("2025-01-15"),
		constants.FieldTotalAmount:   entity.NumberValue(952),
		constants.FieldCurrency:      entity.StringValue("EUR"),
	}
	first := n.Normalize(raw)

	again := entity.RawFieldMap{}
	for _, f := range constants.ScoredFields {
		if v, ok := first.Get(f); ok {
			again[f] = v
		}
	}
	second := n.Normalize(again)

	assert.Equal(t, first, second)
	assert.Equal(t, "A-778", entity.StrOrEmpty(first.InvoiceNumber))
}

func TestNormalize_InvalidValuesBecomeAbsent(t *testing.T) {
	n := New(policy.Default(), nil)
	got := n.Normalize(entity.RawFieldMap{
		constants.FieldTotalAmount: entity.StringValue("twelve"),
		constants.FieldTaxAmount:   entity.StringValue(""),
		constants.FieldCurrency:    entity.StringValue("XYZ"),
		constants.FieldClientName:  entity.StringValue("™ ®"),
		constants.FieldIssueDate:   entity.StringValue("2025-1-5"),
	})
	assert.Nil(t, got.TotalAmount)
	assert.Nil(t, got.TaxAmount)
	assert.Nil(t, got.Currency)
	assert.Nil(t, got.ClientName)
	assert.Nil(t, got.IssueDate)
	assert.Equal(t, 0, got.FilledCount(constants.ScoredFields))
}

func TestNormalize_CurrencyWhitelistFromPolicy(t *testing.T) {
	p := policy.Default()
	p.Currencies = []string{"CAD"}
	n := New(p, nil)

	got := n.Normalize(entity.RawFieldMap{constants.FieldCurrency: entity.StringValue("usd")})
	assert.Nil(t, got.Currency)

	got = n.Normalize(entity.RawFieldMap{constants.FieldCurrency: entity.StringValue(" cad ")})
	assert.Equal(t, "CAD", entity.StrOrEmpty(got.Currency))
}

func TestInvoiceNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INV-2025-001", "2025-001"},
		{"invoice: 42", "42"},
		{"# 981", "981"},
		{"ab 12 cd", "AB-12-CD"},
		{"INVENTORY7", "INVENTORY7"},
		{"INV-", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, entity.StrOrEmpty(InvoiceNumber(tt.in)))
		})
	}
}

func TestCleanString(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"  Globex\tCorp  ", entity.Ptr("Globex Corp")},
		{"Smith & Co. (EU), Ltd", entity.Ptr("Smith & Co. (EU), Ltd")},
		{"Café Noir", entity.Ptr("Café Noir")},
		{"@@@", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanString(tt.in), tt.in)
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, entity.Ptr("2025-01-15"), Date("2025-01-15"))
	assert.Equal(t, entity.Ptr("2025-13-45"), Date("2025-13-45"), "shape only; calendar checks belong to validation")
	assert.Nil(t, Date("15/01/2025"))
	assert.Nil(t, Date(""))
}
