package entity

import (
	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/utils"
)

// FlatRecord is the tabular projection of a DocumentRecord; field order follows constants.Columns.
type FlatRecord struct {
	DocumentID         string   `json:"document_id" yaml:"document_id"`
	DocumentType       *string  `json:"document_type" yaml:"document_type"`
	SourceFileName     string   `json:"source_file_name" yaml:"source_file_name"`
	VendorName         *string  `json:"vendor_name" yaml:"vendor_name"`
	ClientName         *string  `json:"client_name" yaml:"client_name"`
	InvoiceNumber      *string  `json:"invoice_number" yaml:"invoice_number"`
	IssueDate          *string  `json:"issue_date" yaml:"issue_date"`
	DueDate            *string  `json:"due_date" yaml:"due_date"`
	TotalAmount        *float64 `json:"total_amount" yaml:"total_amount"`
	TaxAmount          *float64 `json:"tax_amount" yaml:"tax_amount"`
	Currency           *string  `json:"currency" yaml:"currency"`
	PaymentTerms       *string  `json:"payment_terms" yaml:"payment_terms"`
	ReferenceNumber    *string  `json:"reference_number" yaml:"reference_number"`
	ContractNumber     *string  `json:"contract_number" yaml:"contract_number"`
	RawTextSnapshot    *string  `json:"raw_text_snapshot" yaml:"raw_text_snapshot"`
	ProcessedTimestamp string   `json:"processed_timestamp" yaml:"processed_timestamp"`
	ValidationStatus   string   `json:"validation_status" yaml:"validation_status"`
	ValidationScore    float64  `json:"validation_score" yaml:"validation_score"`
	MissingFields      []string `json:"missing_fields" yaml:"missing_fields"`
	ValidationErrors   []string `json:"validation_errors" yaml:"validation_errors"`
	IsDuplicate        bool     `json:"is_duplicate" yaml:"is_duplicate"`
	Error              string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Flatten projects d onto the export schema. Identity columns come from d itself.
func Flatten(d DocumentRecord) FlatRecord {
	f := d.Fields
	missing := d.Validation.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return FlatRecord{
		DocumentID:         d.ID.String(),
		DocumentType:       f.DocumentType,
		SourceFileName:     d.SourceFileName,
		VendorName:         f.VendorName,
		ClientName:         f.ClientName,
		InvoiceNumber:      f.InvoiceNumber,
		IssueDate:          f.IssueDate,
		DueDate:            f.DueDate,
		TotalAmount:        f.TotalAmount,
		TaxAmount:          f.TaxAmount,
		Currency:           f.Currency,
		PaymentTerms:       f.PaymentTerms,
		ReferenceNumber:    f.ReferenceNumber,
		ContractNumber:     f.ContractNumber,
		RawTextSnapshot:    f.RawTextSnapshot,
		ProcessedTimestamp: utils.FormatTimestamp(d.ProcessedAt),
		ValidationStatus:   string(d.Validation.Status),
		ValidationScore:    d.Validation.Score,
		MissingFields:      missing,
		ValidationErrors:   d.Validation.Errors(),
		IsDuplicate:        d.IsDuplicate,
		Error:              d.Error,
	}
}

// Cell returns the value of column c for tabular writers; absent values are nil.
func (r FlatRecord) Cell(c constants.Field) any {
	switch c {
	case constants.FieldDocumentID:
		return r.DocumentID
	case constants.FieldDocumentType:
		return deref(r.DocumentType)
	case constants.FieldSourceFileName:
		return r.SourceFileName
	case constants.FieldVendorName:
		return deref(r.VendorName)
	case constants.FieldClientName:
		return deref(r.ClientName)
	case constants.FieldInvoiceNumber:
		return deref(r.InvoiceNumber)
	case constants.FieldIssueDate:
		return deref(r.IssueDate)
	case constants.FieldDueDate:
		return deref(r.DueDate)
	case constants.FieldTotalAmount:
		return deref(r.TotalAmount)
	case constants.FieldTaxAmount:
		return deref(r.TaxAmount)
	case constants.FieldCurrency:
		return deref(r.Currency)
	case constants.FieldPaymentTerms:
		return deref(r.PaymentTerms)
	case constants.FieldReferenceNumber:
		return deref(r.ReferenceNumber)
	case constants.FieldContractNumber:
		return deref(r.ContractNumber)
	case constants.FieldRawTextSnapshot:
		return deref(r.RawTextSnapshot)
	case constants.FieldProcessedTimestamp:
		return r.ProcessedTimestamp
	case constants.FieldValidationStatus:
		return r.ValidationStatus
	case constants.FieldValidationScore:
		return r.ValidationScore
	case constants.FieldMissingFields:
		return r.MissingFields
	case constants.FieldValidationErrors:
		return r.ValidationErrors
	default:
		return nil
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
