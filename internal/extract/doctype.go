package extract

import (
	"regexp"

	"github.com/joseph-ayodele/docextract/constants"
)

var docTypeRules = []struct {
	docType constants.DocumentType
	re      *regexp.Regexp
}{
	{constants.DocInvoice, regexp.MustCompile(`(?i)\binvoice\b`)},
	{constants.DocPurchaseOrder, regexp.MustCompile(`(?i)\bpurchase\s+order\b`)},
	{constants.DocContract, regexp.MustCompile(`(?i)\bcontract\b`)},
	{constants.DocStatement, regexp.MustCompile(`(?i)\bstatement\b`)},
	{constants.DocReport, regexp.MustCompile(`(?i)\breport\b`)},
}

// DocumentType classifies text by keyword precedence; unknown when nothing matches.
func DocumentType(text string) constants.DocumentType {
	for _, rl := range docTypeRules {
		if rl.re.MatchString(text) {
			return rl.docType
		}
	}
	return constants.DocUnknown
}
