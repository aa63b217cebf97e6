package export

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docextract/internal/entity"
)

// RecordsJSON renders rows as an indented array and checks the result against schema.
func RecordsJSON(rows []entity.FlatRecord, schema *jsonschema.Schema) ([]byte, error) {
	if rows == nil {
		rows = []entity.FlatRecord{}
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	if schema != nil {
		if err := ValidateJSONAgainstSchema(schema, b); err != nil {
			return nil, err
		}
	}
	return append(b, '\n'), nil
}

func ReportJSON(r entity.BatchReport) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(b, '\n'), nil
}
