// Package export writes records and batch reports as JSON, YAML and XLSX files.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"

	RecordsBaseName = "extracted_data"
	ReportBaseName  = "validation_report"
)

// Formats lists every supported output format.
func Formats() []string { return []string{FormatJSON, FormatYAML, FormatXLSX} }

// Writer puts one file per format into a directory.
type Writer struct {
	dir     string
	formats []string
	schema  *jsonschema.Schema
	logger  *slog.Logger
}

// NewWriter checks formats and compiles the records schema for the given currency whitelist.
func NewWriter(dir string, formats, currencies []string, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var picked []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(Formats(), f) {
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown output format %q", f), common.ErrInvalidInput)
		}
		if !slices.Contains(picked, f) {
			picked = append(picked, f)
		}
	}
	schema, err := CompileSchema(BuildRecordsJSONSchema(currencies))
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "records schema", err)
	}
	return &Writer{dir: dir, formats: picked, schema: schema, logger: logger}, nil
}

// WriteRecords writes the records files and returns their paths.
func (w *Writer) WriteRecords(records []entity.DocumentRecord) ([]string, error) {
	rows := make([]entity.FlatRecord, len(records))
	for i, r := range records {
		rows[i] = entity.Flatten(r)
	}
	return w.write(RecordsBaseName, len(rows), map[string]func() ([]byte, error){
		FormatJSON: func() ([]byte, error) { return RecordsJSON(rows, w.schema) },
		FormatYAML: func() ([]byte, error) { return RecordsYAML(rows) },
		FormatXLSX: func() ([]byte, error) { return RecordsXLSX(rows) },
	})
}

// WriteReport writes the report files and returns their paths.
func (w *Writer) WriteReport(r entity.BatchReport) ([]string, error) {
	return w.write(ReportBaseName, r.TotalProcessed, map[string]func() ([]byte, error){
		FormatJSON: func() ([]byte, error) { return ReportJSON(r) },
		FormatYAML: func() ([]byte, error) { return ReportYAML(r) },
		FormatXLSX: func() ([]byte, error) { return ReportXLSX(r) },
	})
}

func (w *Writer) write(base string, rows int, render map[string]func() ([]byte, error)) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, exportErr("create output directory", err)
	}

	var paths []string
	for _, format := range w.formats {
		data, err := render[format]()
		if err != nil {
			return paths, exportErr("render "+base+"."+format, err)
		}
		path := filepath.Join(w.dir, base+"."+format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, exportErr("write "+path, err)
		}
		paths = append(paths, path)
		w.logger.Info("export.write.ok",
			"path", path,
			"rows", rows,
			"bytes", len(data),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	return paths, nil
}

func exportErr(msg string, err error) error {
	return common.NewAppError(common.CodeExport, msg, fmt.Errorf("%w: %w", common.ErrExport, err))
}
