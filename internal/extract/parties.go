package extract

import (
	"regexp"
	"strings"
)

const (
	nameCapture    = `([A-Za-z][A-Za-z0-9 &.,'\-]*?)`
	nameTerminator = `[ \t]*(?:$|\b(?:invoice|date|total|address|phone|tel|email)\b)`
	labelSep       = `\b[ \t]*:?[ \t]*(?:\n[ \t]*)?`
)

var vendorRules = []*regexp.Regexp{
	regexp.MustCompile(`(?im)\b(?:vendor|supplier|seller|sold\s+by|company|from)` + labelSep + nameCapture + nameTerminator),
}

// vendorFirstLineRe matches a line made only of name characters.
var vendorFirstLineRe = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z][A-Za-z &.,'\-]{3,60}?)[ \t]*$`)

// clientLabelLineRe matches a line that ends in a bare client label, so the next line is the client.
var clientLabelLineRe = regexp.MustCompile(`(?i)(?:\b(?:bill(?:ed)?\s+to|sold\s+to|ship\s+to|customer|client|buyer)[ \t]*:?|\bto[ \t]*:)[ \t]*$`)

var clientRules = []*regexp.Regexp{
	regexp.MustCompile(`(?im)\b(?:bill(?:ed)?\s+to|sold\s+to|customer|client|buyer)` + labelSep + nameCapture + nameTerminator),
	regexp.MustCompile(`(?im)\bto[ \t]*:[ \t]*(?:\n[ \t]*)?` + nameCapture + nameTerminator),
	regexp.MustCompile(`(?im)\bship\s+to` + labelSep + nameCapture + nameTerminator),
}

var (
	legalSuffixRe = regexp.MustCompile(`(?i)[,\s]+(?:ltd|llc|inc|corp|corporation|co|plc|gmbh|bv)\.?$`)
	structuralRe  = regexp.MustCompile(`(?i)\b(?:invoice|purchase\s+order|contract|statement|report|receipt|quote|bill\s+to|ship\s+to)\b`)
)

var termsRules = []rule{
	r(`(?im)\bpayment\s+terms\b[ \t]*[:\-]?[ \t]*([^\n]+)`, 1),
	r(`(?im)\bterms\b[ \t]*[:\-][ \t]*([^\n]+)`, 1),
	r(`(?i)\b(net[ \t]*\d{1,3})\b`, 1),
	r(`(?i)\b(due\s+(?:on|upon)\s+receipt)\b`, 1),
	r(`(?i)\b(\d{1,3}[ \t]+days)\b`, 1),
}

// VendorName prefers a labeled vendor and falls back to the first line that
// looks like a company name.
func (e *Extractor) VendorName(text string) (string, bool) {
	if name, ok := e.labeledName(text, vendorRules); ok {
		return name, true
	}
	for _, m := range vendorFirstLineRe.FindAllStringSubmatchIndex(text, -1) {
		line := text[m[2]:m[3]]
		if structuralRe.MatchString(line) || clientLabelLineRe.MatchString(previousLine(text, m[0])) {
			continue
		}
		if name := cleanName(line); e.policy.NameFits(name) {
			return name, true
		}
	}
	return "", false
}

func (e *Extractor) ClientName(text string) (string, bool) {
	return e.labeledName(text, clientRules)
}

func (e *Extractor) labeledName(text string, rules []*regexp.Regexp) (string, bool) {
	for _, re := range rules {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := cleanName(m[1])
			if e.policy.NameFits(name) && !e.policy.IsStopWord(name) {
				return name, true
			}
		}
	}
	return "", false
}

// previousLine returns the last non-blank line before offset.
func previousLine(text string, offset int) string {
	before := strings.TrimRight(text[:offset], " \t\r\n")
	return before[strings.LastIndexByte(before, '\n')+1:]
}

// cleanName trims legal-entity suffixes and trailing punctuation.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimRight(legalSuffixRe.ReplaceAllString(s, ""), " ,.-")
		if trimmed == s || trimmed == "" {
			break
		}
		s = trimmed
	}
	return strings.TrimRight(s, " ,.-")
}

// PaymentTerms returns the payment terms line, e.g. "Net 30".
func (e *Extractor) PaymentTerms(text string) (string, bool) {
	for _, rl := range termsRules {
		for _, m := range rl.re.FindAllStringSubmatch(text, -1) {
			t := strings.TrimSpace(m[rl.group])
			if t != "" && len([]rune(t)) <= e.policy.TermsMaxLength {
				return t, true
			}
		}
	}
	return "", false
}
