package constants

// Field names a column of the record schema.
type Field string

const (
	FieldDocumentID         Field = "document_id"
	FieldDocumentType       Field = "document_type"
	FieldSourceFileName     Field = "source_file_name"
	FieldVendorName         Field = "vendor_name"
	FieldClientName         Field = "client_name"
	FieldInvoiceNumber      Field = "invoice_number"
	FieldIssueDate          Field = "issue_date"
	FieldDueDate            Field = "due_date"
	FieldTotalAmount        Field = "total_amount"
	FieldTaxAmount          Field = "tax_amount"
	FieldCurrency           Field = "currency"
	FieldPaymentTerms       Field = "payment_terms"
	FieldReferenceNumber    Field = "reference_number"
	FieldContractNumber     Field = "contract_number"
	FieldRawTextSnapshot    Field = "raw_text_snapshot"
	FieldProcessedTimestamp Field = "processed_timestamp"
	FieldValidationStatus   Field = "validation_status"
	FieldValidationScore    Field = "validation_score"
	FieldMissingFields      Field = "missing_fields"
	FieldValidationErrors   Field = "validation_errors"
)

// Columns is the fixed tabular order used by every export.
var Columns = []Field{
	FieldDocumentID,
	FieldDocumentType,
	FieldSourceFileName,
	FieldVendorName,
	FieldClientName,
	FieldInvoiceNumber,
	FieldIssueDate,
	FieldDueDate,
	FieldTotalAmount,
	FieldTaxAmount,
	FieldCurrency,
	FieldPaymentTerms,
	FieldReferenceNumber,
	FieldContractNumber,
	FieldRawTextSnapshot,
	FieldProcessedTimestamp,
	FieldValidationStatus,
	FieldValidationScore,
	FieldMissingFields,
	FieldValidationErrors,
}

// ScoredFields is the completeness schema: every column except the validation outputs.
var ScoredFields = Columns[:16]

// DefaultRequiredFields must be present for a record to avoid FAILED.
var DefaultRequiredFields = []Field{
	FieldInvoiceNumber,
	FieldIssueDate,
	FieldTotalAmount,
	FieldCurrency,
}

// DefaultCurrencies is the ISO 4217 whitelist accepted out of the box.
var DefaultCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "CNY", "INR", "BRL"}

func IsKnownField(name string) bool {
	for _, f := range Columns {
		if string(f) == name {
			return true
		}
	}
	return false
}
