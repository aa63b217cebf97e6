package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docextract/constants"
)

// BuildRecordsJSONSchema returns a JSON-Schema (draft 2020-12 subset) for extracted_data.json
// as a generic map. Optional columns accept null.
func BuildRecordsJSONSchema(currencies []string) map[string]any {
	currency := []any{nil}
	for _, c := range currencies {
		currency = append(currency, c)
	}
	docTypes := []any{nil}
	for _, dt := range constants.DocumentTypes() {
		docTypes = append(docTypes, dt)
	}
	statuses := []any{}
	for _, s := range constants.Statuses() {
		statuses = append(statuses, string(s))
	}

	props := map[string]any{
		"document_id":         map[string]any{"type": "string", "pattern": `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`},
		"document_type":       map[string]any{"enum": docTypes},
		"source_file_name":    map[string]any{"type": "string", "minLength": 1},
		"vendor_name":         nullable("string"),
		"client_name":         nullable("string"),
		"invoice_number":      nullable("string"),
		"issue_date":          dateProp(),
		"due_date":            dateProp(),
		"total_amount":        nullable("number"),
		"tax_amount":          nullable("number"),
		"currency":            map[string]any{"enum": currency},
		"payment_terms":       nullable("string"),
		"reference_number":    nullable("string"),
		"contract_number":     nullable("string"),
		"raw_text_snapshot":   nullable("string"),
		"processed_timestamp": map[string]any{"type": "string", "minLength": 1},
		"validation_status":   map[string]any{"enum": statuses},
		"validation_score":    map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"missing_fields":      stringList(),
		"validation_errors":   stringList(),
		"is_duplicate":        map[string]any{"type": "boolean"},
		"error":               map[string]any{"type": "string"},
	}
	required := make([]string, len(constants.Columns))
	for i, c := range constants.Columns {
		required[i] = string(c)
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             required,
		},
	}
}

func nullable(typ string) map[string]any {
	return map[string]any{"type": []any{typ, "null"}}
}

func dateProp() map[string]any {
	return map[string]any{
		"type":    []any{"string", "null"},
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

func stringList() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

// CompileSchema compiles a schema map for repeated validation.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against a compiled schema.
func ValidateJSONAgainstSchema(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
