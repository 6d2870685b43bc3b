// Package xlsx exports a report as an Excel workbook with a Transactions and
// a Summary sheet.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/export"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// Writer saves workbooks under dir as fintrack-YYYY-MM.xlsx.
type Writer struct {
	dir string
}

var _ export.Exporter = (*Writer)(nil)

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FileName is the workbook name for a report month.
func FileName(r export.Report) string {
	return fmt.Sprintf("fintrack-%s.xlsx", r.Month.String())
}

// Export writes the workbook and returns its path.
func (w *Writer) Export(ctx context.Context, r export.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:   "fintrack " + r.Month.Label(),
		Creator: "fintrack",
	})

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writeRows(f, transactionsSheet, export.TransactionRows(r)); err != nil {
		return "", err
	}
	if err := writeRows(f, summarySheet, export.SummaryRows(r)); err != nil {
		return "", err
	}
	styleSheet(f, transactionsSheet, len(export.TransactionHeader))

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(w.dir, FileName(r))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to xlsx",
		"path", path,
		"month", r.Month.String(),
		"transactions", len(r.Transactions))
	return path, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleSheet(f *excelize.File, sheet string, cols int) {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(cols, 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i := 1; i <= cols; i++ {
		col, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheet, col, col, 18)
	}
	f.SetColWidth(sheet, "D", "D", 36)
}
