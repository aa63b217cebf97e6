package extract

import (
	"regexp"
	"slices"
)

type currencyRule struct {
	code string
	re   *regexp.Regexp
}

// currencyRules encode symbol precedence: euro, then dollar, then pound.
var currencyRules = []currencyRule{
	{"EUR", regexp.MustCompile(`(?i)€|\bEUROS?\b|\bEUR\b`)},
	{"USD", regexp.MustCompile(`(?i)\$|\bUSD\b|\bUS\s+DOLLARS?\b`)},
	{"GBP", regexp.MustCompile(`(?i)£|\bGBP\b`)},
}

// Currency returns the first whitelisted currency detected in text.
func (e *Extractor) Currency(text string) (string, bool) {
	for _, cr := range currencyRules {
		if e.policy.AllowsCurrency(cr.code) && cr.re.MatchString(text) {
			return cr.code, true
		}
	}
	for _, cr := range e.codeRules {
		if cr.re.MatchString(text) {
			return cr.code, true
		}
	}
	return "", false
}

// codeRules matches the remaining whitelisted codes as isolated words.
func codeRules(currencies []string) []currencyRule {
	var out []currencyRule
	for _, code := range currencies {
		if slices.ContainsFunc(currencyRules, func(cr currencyRule) bool { return cr.code == code }) {
			continue
		}
		out = append(out, currencyRule{code: code, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(code) + `\b`)})
	}
	return out
}
