// Package google exports a report to a Google Sheets tab per month.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

// Options configures the Sheets client. Inline JSON credentials win over a
// credentials file.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.Exporter = (*Client)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// NewFromOptions creates a client authenticated with a service account.
func NewFromOptions(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", opts.SpreadsheetID)
	return New(svc, opts.SpreadsheetID, opts.SheetName), nil
}

func credentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// SheetTitle is the tab a month is exported to, e.g. "Transactions 2024-06".
func SheetTitle(base string, m core.Month) string {
	if strings.TrimSpace(base) == "" {
		base = "Transactions"
	}
	return fmt.Sprintf("%s %s", base, m.String())
}

// Values lays out the tab: transactions, a blank row, then the summary.
func Values(r export.Report) [][]any {
	rows := export.TransactionRows(r)
	rows = append(rows, []any{})
	return append(rows, export.SummaryRows(r)...)
}

// Export replaces the month's tab, creating it when missing, and returns the
// updated range. Exporting the same month twice leaves one copy.
func (c *Client) Export(ctx context.Context, r export.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	title := SheetTitle(c.sheetName, r.Month)
	if err := c.ensureSheet(ctx, title); err != nil {
		return "", err
	}

	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoted, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: Values(r)}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoted+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", title, err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"sheet", title,
		"range", resp.UpdatedRange,
		"rows", resp.UpdatedRows)
	return resp.UpdatedRange, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created sheet", "sheet", title)
	return nil
}
