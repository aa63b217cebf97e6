package export

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/joseph-ayodele/docextract/internal/entity"
)

func RecordsYAML(rows []entity.FlatRecord) ([]byte, error) {
	if rows == nil {
		rows = []entity.FlatRecord{}
	}
	data, err := yaml.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return data, nil
}

func ReportYAML(r entity.BatchReport) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
