// Package normalize coerces raw extracted values into canonical record fields.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/policy"
)

var (
	disallowedRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,&()]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	amountNoiseRe  = regexp.MustCompile(`[$€£,\s]`)
	isoDateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	invoiceLabelRe = regexp.MustCompile(`^(?:INVOICE|INV)[\s\-:#]+`)
	leadingHashRe  = regexp.MustCompile(`^#\s*`)
)

// textFields get the generic cleaning rule.
var textFields = map[constants.Field]bool{
	constants.FieldVendorName:      true,
	constants.FieldClientName:      true,
	constants.FieldPaymentTerms:    true,
	constants.FieldReferenceNumber: true,
	constants.FieldContractNumber:  true,
	constants.FieldDocumentType:    true,
	constants.FieldRawTextSnapshot: true,
}

type Normalizer struct {
	policy policy.Policy
	logger *slog.Logger
}

func New(p policy.Policy, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{policy: p, logger: logger}
}

// Normalize maps every raw value through its field rule. Values that fail coercion are dropped.
// The input map is not modified.
func (n *Normalizer) Normalize(raw entity.RawFieldMap) entity.NormalizedRecord {
	var rec entity.NormalizedRecord
	for f, v := range raw {
		switch {
		case f == constants.FieldTotalAmount || f == constants.FieldTaxAmount:
			rec.SetNumber(f, n.amount(f, v))
		case f == constants.FieldIssueDate || f == constants.FieldDueDate:
			rec.SetString(f, Date(v.String()))
		case f == constants.FieldCurrency:
			rec.SetString(f, n.currency(v.String()))
		case f == constants.FieldInvoiceNumber:
			rec.SetString(f, InvoiceNumber(v.String()))
		case textFields[f]:
			rec.SetString(f, CleanString(v.String()))
		default:
			// identity fields and anything else without a rule pass through
			s := v.String()
			rec.SetString(f, &s)
		}
	}
	return rec
}

// CleanString drops unexpected characters and collapses whitespace. Empty results are absent.
func CleanString(s string) *string {
	s = disallowedRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return nil
	}
	return &s
}

// Date keeps a value only when it is already YYYY-MM-DD.
func Date(s string) *string {
	s = strings.TrimSpace(s)
	if !isoDateRe.MatchString(s) {
		return nil
	}
	return &s
}

// InvoiceNumber upper-cases the identifier and removes a leading label or hash.
func InvoiceNumber(s string) *string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = invoiceLabelRe.ReplaceAllString(s, "")
	s = leadingHashRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	if s == "" {
		return nil
	}
	return &s
}

func (n *Normalizer) currency(s string) *string {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" || !n.policy.AllowsCurrency(code) {
		if code != "" {
			n.logger.Debug("normalize.currency.rejected", "value", code)
		}
		return nil
	}
	return &code
}

func (n *Normalizer) amount(f constants.Field, v entity.RawValue) *float64 {
	if num, ok := v.Num(); ok {
		return &num
	}
	s, _ := v.Str()
	cleaned := amountNoiseRe.ReplaceAllString(s, "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		n.logger.Warn("normalize.amount.invalid", "field", string(f), "value", s, "err", err)
		return nil
	}
	out := d.InexactFloat64()
	return &out
}
