package entity

import "time"

// ErrorDetail lists the problems of one record in a batch report.
type ErrorDetail struct {
	SourceFileName string   `json:"source_file_name" yaml:"source_file_name"`
	DocumentID     string   `json:"document_id" yaml:"document_id"`
	Errors         []string `json:"errors" yaml:"errors"`
	MissingFields  []string `json:"missing_fields" yaml:"missing_fields"`
}

// BatchReport aggregates validation outcomes over a batch.
type BatchReport struct {
	TotalProcessed     int           `json:"total_processed" yaml:"total_processed"`
	Passed             int           `json:"passed" yaml:"passed"`
	Partial            int           `json:"partial" yaml:"partial"`
	Failed             int           `json:"failed" yaml:"failed"`
	Duplicates         int           `json:"duplicates" yaml:"duplicates"`
	MissingFieldsCount int           `json:"missing_fields_count" yaml:"missing_fields_count"`
	DateErrorsCount    int           `json:"date_errors_count" yaml:"date_errors_count"`
	NumericErrorsCount int           `json:"numeric_errors_count" yaml:"numeric_errors_count"`
	AverageScore       float64       `json:"average_score" yaml:"average_score"`
	ErrorDetails       []ErrorDetail `json:"error_details" yaml:"error_details"`
	GeneratedAt        time.Time     `json:"generated_at" yaml:"generated_at"`
}
