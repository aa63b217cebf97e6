package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// rule is one entry of an ordered pattern table; group 0 means the whole match.
type rule struct {
	re    *regexp.Regexp
	group int
}

func r(pattern string, group int) rule {
	return rule{re: regexp.MustCompile(pattern), group: group}
}

const idChars = `[A-Z0-9][A-Z0-9\-/]*`

var invoiceRules = []rule{
	r(`(?i)\binvoice\s*(?:number|num\.?|no\.?|#)\s*[:#.]?\s*(`+idChars+`)`, 1),
	r(`(?i)\bINV[-\s]?#?\d[\w\-/]*`, 0),
	r(`(?i)\binvoice\b[ \t]*[-#:]?[ \t]*([A-Z0-9\-/]*\d[A-Z0-9\-/]*)`, 1),
	r(`#[ \t]*([A-Z0-9\-/]*\d[A-Z0-9\-/]*)`, 1),
}

var referenceRules = []rule{
	r(`(?i)\bpurchase\s+order\b\s*(?:number|no\.?|#)?\s*[:#.]?\s*(`+idChars+`)`, 1),
	r(`(?i)\bP\.?O\b\.?\s*(?:number|no\.?|#)?\s*[:#.\-]?\s*(`+idChars+`)`, 1),
	r(`(?i)\breference\b\s*(?:number|no\.?|#)?\s*[:#.]?\s*(`+idChars+`)`, 1),
	r(`(?i)\bref\b\.?\s*(?:number|no\.?|#)?\s*[:#.]?\s*(`+idChars+`)`, 1),
}

var contractRules = []rule{
	r(`(?i)\bcontract\b\s*(?:number|no\.?|id|#)?\s*[:#.]?\s*(`+idChars+`)`, 1),
	r(`(?i)\bagreement\b\s*(?:number|no\.?|#)\s*[:#.]?\s*(`+idChars+`)`, 1),
}

var (
	invoicePrefixes   = []*regexp.Regexp{regexp.MustCompile(`(?i)^(?:INVOICE|INV)[\s\-:#]+`), regexp.MustCompile(`^#\s*`)}
	referencePrefixes = []*regexp.Regexp{regexp.MustCompile(`(?i)^(?:REFERENCE|REF)[\s\-:#.]+`), regexp.MustCompile(`^#\s*`)}
	contractPrefixes  = []*regexp.Regexp{regexp.MustCompile(`(?i)^CONTRACT[\s\-:#]+`), regexp.MustCompile(`^#\s*`)}
)

// InvoiceNumber returns the first accepted invoice identifier, label prefixes removed.
func (e *Extractor) InvoiceNumber(text string) (string, bool) {
	return e.identifier(text, invoiceRules, invoicePrefixes)
}

// ReferenceNumber returns a purchase-order or reference identifier.
func (e *Extractor) ReferenceNumber(text string) (string, bool) {
	return e.identifier(text, referenceRules, referencePrefixes)
}

func (e *Extractor) ContractNumber(text string) (string, bool) {
	return e.identifier(text, contractRules, contractPrefixes)
}

// identifier tries each rule in order and every match of a rule left to right.
func (e *Extractor) identifier(text string, rules []rule, prefixes []*regexp.Regexp) (string, bool) {
	for _, rl := range rules {
		for _, m := range rl.re.FindAllStringSubmatch(text, -1) {
			cand := cleanIdentifier(m[rl.group], prefixes)
			if e.acceptIdentifier(cand) {
				return cand, true
			}
		}
	}
	return "", false
}

func cleanIdentifier(s string, prefixes []*regexp.Regexp) string {
	s = strings.TrimSpace(s)
	for _, p := range prefixes {
		s = p.ReplaceAllString(s, "")
	}
	return strings.Trim(s, " -/.")
}

// acceptIdentifier rejects stop words and short tokens without digits.
func (e *Extractor) acceptIdentifier(s string) bool {
	if s == "" || e.policy.IsStopWord(s) {
		return false
	}
	if !strings.ContainsFunc(s, unicode.IsDigit) && len([]rune(s)) <= 3 {
		return false
	}
	return true
}
