package validate

import (
	"fmt"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/utils"
)

// checkDates validates the format of each present date, then their order when both are usable.
// A missing date is never an error here.
func checkDates(rec entity.NormalizedRecord) []entity.Violation {
	var out []entity.Violation

	issue, issueOK := dateField(rec.IssueDate, constants.FieldIssueDate, &out)
	due, dueOK := dateField(rec.DueDate, constants.FieldDueDate, &out)

	if issueOK && dueOK {
		issueAt, _ := utils.ParseYMD(issue)
		dueAt, _ := utils.ParseYMD(due)
		if !dueAt.After(issueAt) {
			out = append(out, entity.Violation{
				Category: entity.CategoryDate,
				Field:    constants.FieldDueDate,
				Message:  fmt.Sprintf("Due date (%s) must be after issue date (%s)", due, issue),
			})
		}
	}
	return out
}

func dateField(p *string, f constants.Field, out *[]entity.Violation) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	if _, err := utils.ParseYMD(*p); err != nil {
		*out = append(*out, entity.Violation{
			Category: entity.CategoryDate,
			Field:    f,
			Message:  fmt.Sprintf("%s must be in ISO format (YYYY-MM-DD), got: %s", f, *p),
		})
		return "", false
	}
	return *p, true
}
