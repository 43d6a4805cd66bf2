package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gastos/internal/core"
	"gastos/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client stores the ledger in columns A:D of one sheet. Row 1 holds the header.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	mu          sync.Mutex
	headerReady bool
}

// Ensure interface conformance
var _ ledger.Ledger = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
// Extra options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	all := append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully", "sheet", cfg.SheetName)
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Gastos"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Append writes the header if row 1 is empty, then appends one row with
// RAW input so the amount keeps its two decimals. The reference is the
// range the API reports as updated.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if c.svc == nil {
		return "", core.WriteFault(errors.New("sheets service not initialized"))
	}

	if err := c.ensureHeader(ctx); err != nil {
		return "", core.WriteFault(err)
	}

	row := e.Row()
	vr := &gsheet.ValueRange{Values: [][]any{{row[0], row[1], row[2], row[3]}}}
	rng := fmt.Sprintf("%s!A:D", c.sheetName)

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", core.WriteFault(fmt.Errorf("append to sheet %s: %w", c.sheetName, err))
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

func (c *Client) ensureHeader(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headerReady {
		return nil
	}

	rng := fmt.Sprintf("%s!A1:D1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		header := core.Header()
		vr := &gsheet.ValueRange{Values: [][]any{{header[0], header[1], header[2], header[3]}}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Wrote ledger header", "sheet", c.sheetName)
	}

	c.headerReady = true
	return nil
}

// ListExpenses reads A:D. When the first row is the ledger header it is used
// to locate columns; otherwise the fixed column order applies.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Entry, error) {
	if c.svc == nil {
		return nil, core.ReadFault(errors.New("sheets service not initialized"))
	}

	rng := fmt.Sprintf("%s!A:D", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, core.ReadFault(fmt.Errorf("read %s: %w", rng, err))
	}
	return parseRows(resp.Values), nil
}

func parseRows(values [][]any) []core.Entry {
	entries := []core.Entry{}
	if len(values) == 0 {
		return entries
	}

	header := core.Header()
	first := toStrings(values[0])
	if len(first) > 0 && strings.EqualFold(first[0], core.FieldDate) {
		header = first
		values = values[1:]
	}

	for _, row := range values {
		cells := toStrings(row)
		if isBlank(cells) {
			continue
		}
		cols := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(cells) {
				cols[name] = cells[i]
			}
		}
		entries = append(entries, core.EntryFromColumns(cols))
	}
	return entries
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
