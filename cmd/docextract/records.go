package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

func newRecordsCmd(a *app) *cobra.Command {
	var (
		status  string
		batchID string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List records saved by process --store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := repository.ListFilter{BatchID: batchID, Limit: limit}
			if status != "" {
				st, ok := constants.ParseStatus(status)
				if !ok {
					return common.NewAppError(common.CodeInput, fmt.Sprintf("unknown status %q", status), common.ErrInvalidInput)
				}
				filter.Status = st
			}
			return a.runRecords(cmd, filter, asJSON)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&status, "status", "", "only records with this validation status (PASSED, PARTIAL, FAILED)")
	fs.StringVar(&batchID, "batch", "", "only records from this batch id")
	fs.IntVar(&limit, "limit", 50, "maximum number of records (0 for all)")
	fs.BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func (a *app) runRecords(cmd *cobra.Command, filter repository.ListFilter, asJSON bool) error {
	ctx := cmd.Context()
	db, err := repository.Open(ctx, repository.ConfigFrom(a.cfg.Database), a.logger)
	if err != nil {
		return err
	}
	defer db.Close(a.logger)

	repo := repository.NewDocumentRepository(db, a.logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	docs, err := repo.List(ctx, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	renderRecords(out, docs)
	return nil
}

func renderRecords(out io.Writer, docs []repository.StoredDocument) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Document", "Source", "Invoice", "Issue date", "Total", "Currency", "Status", "Score", "Duplicate"})
	table.SetAutoWrapText(false)
	for _, d := range docs {
		total := ""
		if d.TotalAmount != nil {
			total = entity.FormatAmount(*d.TotalAmount)
		}
		table.Append([]string{
			d.DocumentID,
			d.SourceFileName,
			entity.StrOrEmpty(d.InvoiceNumber),
			entity.StrOrEmpty(d.IssueDate),
			total,
			entity.StrOrEmpty(d.Currency),
			d.ValidationStatus,
			strconv.FormatFloat(d.ValidationScore, 'f', 2, 64),
			strconv.FormatBool(d.IsDuplicate),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "", "", "Count", strconv.Itoa(len(docs))})
	table.Render()
}
