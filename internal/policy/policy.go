// Package policy holds the tunable rules shared by extraction, normalization and validation.
package policy

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
)

// DefaultDateLayouts is tried in order; the first layout that parses wins, so
// month-first numeric dates are preferred over day-first ones.
var DefaultDateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2 January 2006",
	"2 Jan 2006",
	"2 Jan. 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// DefaultStopWords are column headers and labels that identifier patterns tend to capture.
var DefaultStopWords = []string{
	"DESCRIPTION", "ITEM", "PRODUCT", "NAME", "TITLE", "ARTICLE",
	"OMSCHRIJVING", "BESCHRIJVING", "ARTIKEL", "PRODUKT", "NAAM", "TITEL",
	"DATE", "NUMBER", "NO", "TOTAL", "AMOUNT", "DUE", "TO", "FROM", "TERMS",
}

// Scoring weights and thresholds for the validation score.
type Scoring struct {
	ErrorPenalty           float64
	ErrorPenaltyCap        float64
	MissingRequiredPenalty float64
	PassThreshold          float64
	PartialThreshold       float64
}

type Policy struct {
	Currencies     []string
	RequiredFields []constants.Field
	DateLayouts    []string
	StopWords      []string
	NameMinLength  int
	NameMaxLength  int
	TermsMaxLength int
	SnapshotLength int
	Scoring        Scoring
}

// Default mirrors the defaults registered in common.SetDefaults.
func Default() Policy {
	return FromConfig(common.DefaultConfig().Policy)
}

// FromConfig fills empty lists with the built-in tables.
func FromConfig(c common.PolicyConfig) Policy {
	p := Policy{
		NameMinLength:  c.NameMinLength,
		NameMaxLength:  c.NameMaxLength,
		TermsMaxLength: c.TermsMaxLength,
		SnapshotLength: c.SnapshotLength,
		Scoring: Scoring{
			ErrorPenalty:           c.ErrorPenalty,
			ErrorPenaltyCap:        c.ErrorPenaltyCap,
			MissingRequiredPenalty: c.MissingRequiredPenalty,
			PassThreshold:          c.PassThreshold,
			PartialThreshold:       c.PartialThreshold,
		},
	}
	for _, cur := range c.Currencies {
		p.Currencies = append(p.Currencies, strings.ToUpper(strings.TrimSpace(cur)))
	}
	if len(p.Currencies) == 0 {
		p.Currencies = slices.Clone(constants.DefaultCurrencies)
	}
	for _, f := range c.RequiredFields {
		p.RequiredFields = append(p.RequiredFields, constants.Field(strings.TrimSpace(f)))
	}
	if len(c.RequiredFields) == 0 {
		p.RequiredFields = slices.Clone(constants.DefaultRequiredFields)
	}
	p.DateLayouts = slices.Clone(c.DateLayouts)
	if len(p.DateLayouts) == 0 {
		p.DateLayouts = slices.Clone(DefaultDateLayouts)
	}
	for _, w := range c.StopWords {
		p.StopWords = append(p.StopWords, strings.ToUpper(strings.TrimSpace(w)))
	}
	if len(p.StopWords) == 0 {
		p.StopWords = slices.Clone(DefaultStopWords)
	}
	return p
}

// AllowsCurrency reports whether code is whitelisted; code must already be upper-case.
func (p Policy) AllowsCurrency(code string) bool {
	return slices.Contains(p.Currencies, code)
}

func (p Policy) IsStopWord(s string) bool {
	return slices.Contains(p.StopWords, strings.ToUpper(strings.TrimSpace(s)))
}

// NameFits reports whether a cleaned name is inside the plausible length window.
func (p Policy) NameFits(name string) bool {
	n := len([]rune(name))
	return n >= p.NameMinLength && n <= p.NameMaxLength
}
