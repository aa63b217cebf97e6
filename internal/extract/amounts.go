package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	amountSep   = `[ \t]*(?:\([^)\n]*\)|\d{1,2}(?:\.\d+)?[ \t]*%)?[ \t]*[:\-]?[ \t]*`
	amountValue = `(-?[ \t]*(?:[$€£]|USD|EUR|GBP)?[ \t]*-?\d[\d,]*(?:\.\d+)?)([ \t]*%)?`
)

// amountRule is a label-anchored amount pattern; matches right after
// notAfter (e.g. "Sub-") are ignored.
type amountRule struct {
	re       *regexp.Regexp
	notAfter *regexp.Regexp
}

func amount(label string) amountRule {
	return amountRule{re: regexp.MustCompile(`(?i)\b` + label + `\b` + amountSep + amountValue)}
}

var subBeforeRe = regexp.MustCompile(`(?i)\bsub[ \t\-]*$`)

var totalRules = []amountRule{
	amount(`grand\s+total`),
	amount(`total\s+due`),
	amount(`amount\s+due`),
	amount(`balance\s+due`),
	amount(`total\s+amount`),
	{re: amount(`total`).re, notAfter: subBeforeRe},
	amount(`amount`),
}

var taxRules = []amountRule{
	amount(`tax\s+amount`),
	amount(`total\s+tax`),
	amount(`sales\s+tax`),
	amount(`tax`),
	amount(`vat`),
	amount(`gst`),
}

// decimalCommaTailRe spots the ",56" of "1.234,56"; such a match would read as 1.234.
var decimalCommaTailRe = regexp.MustCompile(`^,\d{2}\b`)

var amountNoiseRe = regexp.MustCompile(`[$€£,\s]|USD|EUR|GBP`)

// TotalAmount returns the document total.
func TotalAmount(text string) (float64, bool) { return firstAmount(text, totalRules) }

// TaxAmount returns the tax line amount; percentages are never taken as amounts.
func TaxAmount(text string) (float64, bool) { return firstAmount(text, taxRules) }

func firstAmount(text string, rules []amountRule) (float64, bool) {
	for _, rl := range rules {
		for _, m := range rl.re.FindAllStringSubmatchIndex(text, -1) {
			if rl.notAfter != nil && rl.notAfter.MatchString(text[:m[0]]) {
				continue
			}
			if m[4] >= 0 { // trailing %
				continue
			}
			if decimalCommaTailRe.MatchString(text[m[3]:]) {
				continue
			}
			if v, ok := ParseAmount(text[m[2]:m[3]]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// ParseAmount strips currency symbols, codes and thousands separators and
// parses the rest as a decimal.
func ParseAmount(s string) (float64, bool) {
	cleaned := amountNoiseRe.ReplaceAllString(strings.ToUpper(s), "")
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
