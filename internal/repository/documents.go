package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/utils"
)

const documentsTable = "documents"

// insertChunk keeps multi-row inserts under sqlite's bound-parameter limit.
const insertChunk = 200

// StoredDocument is one persisted row: the export projection plus batch bookkeeping.
type StoredDocument struct {
	entity.FlatRecord `yaml:",inline"`

	BatchID          string `json:"batch_id" yaml:"batch_id"`
	SourcePath       string `json:"source_path" yaml:"source_path"`
	ContentHash      string `json:"content_hash" yaml:"content_hash"`
	Fingerprint      string `json:"fingerprint" yaml:"fingerprint"`
	ExtractionMethod string `json:"extraction_method" yaml:"extraction_method"`
	PageCount        int    `json:"page_count" yaml:"page_count"`
}

// ListFilter narrows List; zero values match everything.
type ListFilter struct {
	Status  constants.ValidationStatus
	BatchID string
	Limit   int
}

type DocumentRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveBatch(ctx context.Context, batchID string, records []entity.DocumentRecord) (int, error)
	List(ctx context.Context, f ListFilter) ([]StoredDocument, error)
	CountByStatus(ctx context.Context) (map[constants.ValidationStatus]int, error)
}

type documentRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger}
}

var documentColumns = []string{
	"id", "batch_id", "document_type", "source_file_name", "source_path", "content_hash",
	"vendor_name", "client_name", "invoice_number", "issue_date", "due_date",
	"total_amount", "tax_amount", "currency", "payment_terms", "reference_number", "contract_number",
	"raw_text_snapshot", "processed_timestamp", "validation_status", "validation_score",
	"missing_fields", "validation_errors", "fingerprint", "is_duplicate", "error",
	"page_count", "extraction_method",
}

func schemaDDL(d string) []string {
	floatType := "DOUBLE PRECISION"
	if d == dialect.SQLite {
		floatType = "REAL"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	document_type TEXT,
	source_file_name TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	vendor_name TEXT,
	client_name TEXT,
	invoice_number TEXT,
	issue_date TEXT,
	due_date TEXT,
	total_amount ` + floatType + `,
	tax_amount ` + floatType + `,
	currency TEXT,
	payment_terms TEXT,
	reference_number TEXT,
	contract_number TEXT,
	raw_text_snapshot TEXT,
	processed_timestamp TEXT NOT NULL,
	validation_status TEXT NOT NULL,
	validation_score ` + floatType + ` NOT NULL,
	missing_fields TEXT NOT NULL DEFAULT '',
	validation_errors TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL DEFAULT '',
	is_duplicate BOOLEAN NOT NULL DEFAULT FALSE,
	error TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (validation_status)`,
		`CREATE INDEX IF NOT EXISTS documents_batch_idx ON documents (batch_id)`,
		`CREATE INDEX IF NOT EXISTS documents_fingerprint_idx ON documents (fingerprint)`,
	}
}

// EnsureSchema creates the documents table and its indexes when missing.
func (r *documentRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL(r.db.Dialect) {
		if err := r.db.Driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			r.logger.Error("failed to ensure schema", "dialect", r.db.Dialect, "error", err)
			return dbErr("ensure schema", err)
		}
	}
	return nil
}

// SaveBatch inserts every record in one transaction and returns the number of rows written.
func (r *documentRepo) SaveBatch(ctx context.Context, batchID string, records []entity.DocumentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		r.logger.Error("failed to begin transaction", "batch_id", batchID, "error", err)
		return 0, dbErr("begin transaction", err)
	}

	var n int64
	for start := 0; start < len(records); start += insertChunk {
		end := min(start+insertChunk, len(records))
		ins := entsql.Dialect(r.db.Dialect).Insert(documentsTable).Columns(documentColumns...)
		for _, rec := range records[start:end] {
			ins.Values(rowValues(batchID, rec)...)
		}
		query, args := ins.Query()

		var res sql.Result
		if err := tx.Exec(ctx, query, args, &res); err != nil {
			_ = tx.Rollback()
			r.logger.Error("failed to save documents", "batch_id", batchID, "count", len(records), "error", err)
			return 0, dbErr("insert documents", err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			n += affected
		} else {
			n += int64(end - start)
		}
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit documents", "batch_id", batchID, "error", err)
		return 0, dbErr("commit documents", err)
	}

	r.logger.Info("repository.save.ok", "batch_id", batchID, "rows", n)
	return int(n), nil
}

func rowValues(batchID string, rec entity.DocumentRecord) []any {
	flat := entity.Flatten(rec)
	cell := func(f constants.Field) any { return flat.Cell(f) }
	return []any{
		flat.DocumentID,
		batchID,
		cell(constants.FieldDocumentType),
		flat.SourceFileName,
		rec.SourcePath,
		rec.ContentHash,
		cell(constants.FieldVendorName),
		cell(constants.FieldClientName),
		cell(constants.FieldInvoiceNumber),
		cell(constants.FieldIssueDate),
		cell(constants.FieldDueDate),
		cell(constants.FieldTotalAmount),
		cell(constants.FieldTaxAmount),
		cell(constants.FieldCurrency),
		cell(constants.FieldPaymentTerms),
		cell(constants.FieldReferenceNumber),
		cell(constants.FieldContractNumber),
		cell(constants.FieldRawTextSnapshot),
		flat.ProcessedTimestamp,
		flat.ValidationStatus,
		flat.ValidationScore,
		utils.JoinList(flat.MissingFields),
		utils.JoinList(flat.ValidationErrors),
		rec.Fingerprint,
		rec.IsDuplicate,
		rec.Error,
		rec.PageCount,
		rec.ExtractionMethod,
	}
}

// List returns stored documents, newest first.
func (r *documentRepo) List(ctx context.Context, f ListFilter) ([]StoredDocument, error) {
	t := entsql.Table(documentsTable)
	cols := make([]string, len(documentColumns))
	for i, c := range documentColumns {
		cols[i] = t.C(c)
	}
	sel := entsql.Dialect(r.db.Dialect).Select(cols...).From(t)

	var preds []*entsql.Predicate
	if f.Status != "" {
		preds = append(preds, entsql.EQ(t.C("validation_status"), string(f.Status)))
	}
	if f.BatchID != "" {
		preds = append(preds, entsql.EQ(t.C("batch_id"), f.BatchID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc(t.C("processed_timestamp")), t.C("source_file_name"))
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to list documents", "status", f.Status, "error", err)
		return nil, dbErr("list documents", err)
	}
	defer func() { _ = rows.Close() }()

	out := []StoredDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			r.logger.Error("failed to scan document", "error", err)
			return nil, dbErr("scan document", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate documents", err)
	}
	return out, nil
}

func scanDocument(rows *entsql.Rows) (StoredDocument, error) {
	var (
		d                       StoredDocument
		docType, vendor, client sql.NullString
		invoice, issue, due     sql.NullString
		currency, terms, ref    sql.NullString
		contract, snapshot      sql.NullString
		total, tax              sql.NullFloat64
		missing, errs           string
	)
	err := rows.Scan(
		&d.DocumentID, &d.BatchID, &docType, &d.SourceFileName, &d.SourcePath, &d.ContentHash,
		&vendor, &client, &invoice, &issue, &due,
		&total, &tax, &currency, &terms, &ref, &contract,
		&snapshot, &d.ProcessedTimestamp, &d.ValidationStatus, &d.ValidationScore,
		&missing, &errs, &d.Fingerprint, &d.IsDuplicate, &d.Error,
		&d.PageCount, &d.ExtractionMethod,
	)
	if err != nil {
		return StoredDocument{}, err
	}
	d.DocumentType = nullStr(docType)
	d.VendorName = nullStr(vendor)
	d.ClientName = nullStr(client)
	d.InvoiceNumber = nullStr(invoice)
	d.IssueDate = nullStr(issue)
	d.DueDate = nullStr(due)
	d.TotalAmount = nullFloat(total)
	d.TaxAmount = nullFloat(tax)
	d.Currency = nullStr(currency)
	d.PaymentTerms = nullStr(terms)
	d.ReferenceNumber = nullStr(ref)
	d.ContractNumber = nullStr(contract)
	d.RawTextSnapshot = nullStr(snapshot)
	d.MissingFields = utils.SplitList(missing)
	d.ValidationErrors = utils.SplitList(errs)
	return d, nil
}

// CountByStatus groups stored documents by validation status.
func (r *documentRepo) CountByStatus(ctx context.Context) (map[constants.ValidationStatus]int, error) {
	t := entsql.Table(documentsTable)
	query, args := entsql.Dialect(r.db.Dialect).
		Select(t.C("validation_status"), entsql.Count("*")).
		From(t).
		GroupBy(t.C("validation_status")).
		Query()

	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to count documents", "error", err)
		return nil, dbErr("count documents", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[constants.ValidationStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, dbErr("scan count", err)
		}
		out[constants.ValidationStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("iterate counts", err)
	}
	return out, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
