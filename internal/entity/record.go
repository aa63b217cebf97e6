package entity

import (
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
)

// NormalizedRecord holds the canonical field values of one document.
// A nil pointer means the field is absent; any present value already passed coercion.
type NormalizedRecord struct {
	DocumentID         *string  `json:"document_id"`
	DocumentType       *string  `json:"document_type"`
	SourceFileName     *string  `json:"source_file_name"`
	VendorName         *string  `json:"vendor_name"`
	ClientName         *string  `json:"client_name"`
	InvoiceNumber      *string  `json:"invoice_number"`
	IssueDate          *string  `json:"issue_date"` // YYYY-MM-DD
	DueDate            *string  `json:"due_date"`   // YYYY-MM-DD
	TotalAmount        *float64 `json:"total_amount"`
	TaxAmount          *float64 `json:"tax_amount"`
	Currency           *string  `json:"currency"`
	PaymentTerms       *string  `json:"payment_terms"`
	ReferenceNumber    *string  `json:"reference_number"`
	ContractNumber     *string  `json:"contract_number"`
	RawTextSnapshot    *string  `json:"raw_text_snapshot"`
	ProcessedTimestamp *string  `json:"processed_timestamp"`
}

// Get returns the value of a schema field; ok is false when it is absent or not a record field.
func (r NormalizedRecord) Get(f constants.Field) (RawValue, bool) {
	switch f {
	case constants.FieldTotalAmount:
		return numberOf(r.TotalAmount)
	case constants.FieldTaxAmount:
		return numberOf(r.TaxAmount)
	}
	if p := r.stringField(f); p != nil {
		return stringOf(*p)
	}
	return RawValue{}, false
}

// Has reports whether f is present with a non-blank value.
func (r NormalizedRecord) Has(f constants.Field) bool {
	v, ok := r.Get(f)
	if !ok {
		return false
	}
	if s, isStr := v.Str(); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// FilledCount counts the present fields among fields.
func (r NormalizedRecord) FilledCount(fields []constants.Field) int {
	n := 0
	for _, f := range fields {
		if r.Has(f) {
			n++
		}
	}
	return n
}

func (r *NormalizedRecord) stringField(f constants.Field) **string {
	switch f {
	case constants.FieldDocumentID:
		return &r.DocumentID
	case constants.FieldDocumentType:
		return &r.DocumentType
	case constants.FieldSourceFileName:
		return &r.SourceFileName
	case constants.FieldVendorName:
		return &r.VendorName
	case constants.FieldClientName:
		return &r.ClientName
	case constants.FieldInvoiceNumber:
		return &r.InvoiceNumber
	case constants.FieldIssueDate:
		return &r.IssueDate
	case constants.FieldDueDate:
		return &r.DueDate
	case constants.FieldCurrency:
		return &r.Currency
	case constants.FieldPaymentTerms:
		return &r.PaymentTerms
	case constants.FieldReferenceNumber:
		return &r.ReferenceNumber
	case constants.FieldContractNumber:
		return &r.ContractNumber
	case constants.FieldRawTextSnapshot:
		return &r.RawTextSnapshot
	case constants.FieldProcessedTimestamp:
		return &r.ProcessedTimestamp
	default:
		return nil
	}
}

// SetString assigns a text field; a nil value clears it. Unknown or numeric fields are ignored.
func (r *NormalizedRecord) SetString(f constants.Field, value *string) {
	if p := r.stringField(f); p != nil {
		*p = value
	}
}

// SetNumber assigns an amount field; a nil value clears it.
func (r *NormalizedRecord) SetNumber(f constants.Field, value *float64) {
	switch f {
	case constants.FieldTotalAmount:
		r.TotalAmount = value
	case constants.FieldTaxAmount:
		r.TaxAmount = value
	}
}

func stringOf(p *string) (RawValue, bool) {
	if p == nil {
		return RawValue{}, false
	}
	return StringValue(*p), true
}

func numberOf(p *float64) (RawValue, bool) {
	if p == nil {
		return RawValue{}, false
	}
	return NumberValue(*p), true
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// StrOrEmpty dereferences p, returning "" for nil.
func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
