package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/internal/utils"
)

const dateShape = `(\d{4}[-/.]\d{1,2}[-/.]\d{1,2}` +
	`|\d{1,2}[-/.]\d{1,2}[-/.]\d{4}` +
	`|\d{1,2}[ \t]+[A-Za-z]{3,9}\.?,?[ \t]+\d{4}` +
	`|[A-Za-z]{3,9}\.?[ \t]+\d{1,2},?[ \t]+\d{4})`

var (
	issueDateRe = regexp.MustCompile(`(?i)\b(issue\s+date|invoice\s+date|date\s+of\s+issue|date\s+issued|issued\s+on|issued|issue|dated|date)\b[ \t]*[:\-]?[ \t]*` + dateShape)
	dueDateRe   = regexp.MustCompile(`(?i)\b(payment\s+due\s+date|payment\s+due|due\s+date|due\s+on|due|pay\s+by)\b[ \t]*[:\-]?[ \t]*` + dateShape)
	anyDateRe   = regexp.MustCompile(`(?i)\b` + dateShape + `\b`)

	dueBeforeRe = regexp.MustCompile(`(?i)\bdue[ \t]*$`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// Dates returns the issue and due dates as YYYY-MM-DD; "" means not found.
// A labeled issue date wins; otherwise the earliest parseable date-shaped
// token outside the due date's span is used.
func (e *Extractor) Dates(text string) (issue, due string) {
	dueStart, dueEnd := -1, -1
	for _, m := range dueDateRe.FindAllStringSubmatchIndex(text, -1) {
		if d, ok := e.parseDate(text[m[4]:m[5]]); ok {
			due, dueStart, dueEnd = d, m[4], m[5]
			break
		}
	}

	for _, m := range issueDateRe.FindAllStringSubmatchIndex(text, -1) {
		label := strings.ToLower(text[m[2]:m[3]])
		if label == "date" && dueBeforeRe.MatchString(text[:m[2]]) {
			continue
		}
		if d, ok := e.parseDate(text[m[4]:m[5]]); ok {
			return d, due
		}
	}

	for _, m := range anyDateRe.FindAllStringSubmatchIndex(text, -1) {
		if dueStart >= 0 && m[2] < dueEnd && m[3] > dueStart {
			continue
		}
		if d, ok := e.parseDate(text[m[2]:m[3]]); ok {
			return d, due
		}
	}
	return "", due
}

func (e *Extractor) IssueDate(text string) (string, bool) {
	d, _ := e.Dates(text)
	return d, d != ""
}

func (e *Extractor) DueDate(text string) (string, bool) {
	_, d := e.Dates(text)
	return d, d != ""
}

// parseDate tries the policy layouts in order and renders the first success as YYYY-MM-DD.
func (e *Extractor) parseDate(raw string) (string, bool) {
	s := spacesRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	candidates := []string{s}
	if alt := strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), ". ", " "); alt != s {
		candidates = append(candidates, alt)
	}
	for _, c := range candidates {
		for _, layout := range e.policy.DateLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return utils.FormatYMD(t), true
			}
		}
	}
	e.logger.Warn("unparseable date", "raw", raw)
	return "", false
}
