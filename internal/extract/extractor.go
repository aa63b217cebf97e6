// Package extract finds business fields in document text with ordered pattern tables.
package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/policy"
	"github.com/joseph-ayodele/docextract/internal/textprovider"
)

// Extractor holds the policy and compiled tables; every method is a pure function of its input text.
type Extractor struct {
	policy    policy.Policy
	codeRules []currencyRule
	logger    *slog.Logger
}

func New(p policy.Policy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{policy: p, codeRules: codeRules(p.Currencies), logger: logger}
}

// ExtractAll runs every field extractor and returns the fields that were found,
// plus the leading text snapshot and the document type.
func (e *Extractor) ExtractAll(text string) entity.RawFieldMap {
	out := entity.RawFieldMap{}
	putString := func(f constants.Field, v string, ok bool) {
		if ok {
			out[f] = entity.StringValue(v)
		}
	}
	putNumber := func(f constants.Field, v float64, ok bool) {
		if ok {
			out[f] = entity.NumberValue(v)
		}
	}

	out[constants.FieldDocumentType] = entity.StringValue(string(DocumentType(text)))

	v, ok := e.VendorName(text)
	putString(constants.FieldVendorName, v, ok)
	v, ok = e.ClientName(text)
	putString(constants.FieldClientName, v, ok)
	v, ok = e.InvoiceNumber(text)
	putString(constants.FieldInvoiceNumber, v, ok)
	v, ok = e.ContractNumber(text)
	putString(constants.FieldContractNumber, v, ok)
	v, ok = e.ReferenceNumber(text)
	putString(constants.FieldReferenceNumber, v, ok)
	v, ok = e.PaymentTerms(text)
	putString(constants.FieldPaymentTerms, v, ok)
	v, ok = e.Currency(text)
	putString(constants.FieldCurrency, v, ok)

	issue, due := e.Dates(text)
	putString(constants.FieldIssueDate, issue, issue != "")
	putString(constants.FieldDueDate, due, due != "")

	n, ok := TotalAmount(text)
	putNumber(constants.FieldTotalAmount, n, ok)
	n, ok = TaxAmount(text)
	putNumber(constants.FieldTaxAmount, n, ok)

	if snap := textprovider.Snapshot(text, e.policy.SnapshotLength); snap != "" {
		out[constants.FieldRawTextSnapshot] = entity.StringValue(snap)
	}
	return out
}
