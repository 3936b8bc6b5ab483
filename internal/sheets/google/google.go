package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gastos/internal/core"
	ports "gastos/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	walletsSheet    string
	categoriesSheet string
	refundsSheet    string
	dataSheet       string
}

// Ensure interface conformance
var (
	_ ports.RecordAppender = (*Client)(nil)
	_ ports.WalletReader   = (*Client)(nil)
	_ ports.CategoryReader = (*Client)(nil)
	_ ports.RefundReader   = (*Client)(nil)
	_ ports.RowScanner     = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service-account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: WALLETS_SHEET_NAME (default "wallets"),
// CATEGORIES_SHEET_NAME (default "categories"),
// REFUNDS_SHEET_NAME (default "refunds_to"), DATA_SHEET_NAME (default "data").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		walletsSheet:    envOr("WALLETS_SHEET_NAME", "wallets"),
		categoriesSheet: envOr("CATEGORIES_SHEET_NAME", "categories"),
		refundsSheet:    envOr("REFUNDS_SHEET_NAME", "refunds_to"),
		dataSheet:       envOr("DATA_SHEET_NAME", "data"),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Append adds one record to the end of the data sheet. The date goes in as
// DD/MM/YYYY; the amount as a plain decimal number.
func (c *Client) Append(ctx context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", c.dataSheet)
	vr := &gsheet.ValueRange{Values: [][]any{{
		r.Date.Display(),
		r.Description,
		r.Amount.Float(),
		r.Currency,
		r.Category,
		r.Wallet,
		r.RefundTo,
	}}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.dataSheet, err)
	}
	return nil
}

// Wallets returns the first column of the wallets sheet, header dropped.
func (c *Client) Wallets(ctx context.Context) ([]string, error) {
	return c.readNames(ctx, c.walletsSheet)
}

// RefundTargets returns the first column of the refunds sheet, header dropped.
func (c *Client) RefundTargets(ctx context.Context) ([]string, error) {
	return c.readNames(ctx, c.refundsSheet)
}

// Categories returns name/description pairs from the categories sheet,
// header dropped. A missing description column yields an empty description.
func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	values, err := c.readValues(ctx, fmt.Sprintf("%s!A:B", c.categoriesSheet))
	if err != nil {
		return nil, err
	}
	var out []core.Category
	for _, row := range dropHeader(values) {
		cols := toStrings(row)
		if len(cols) == 0 || cols[0] == "" {
			continue
		}
		cat := core.Category{Name: cols[0]}
		if len(cols) > 1 {
			cat.Description = cols[1]
		}
		out = append(out, cat)
	}
	return out, nil
}

// Rows returns all data-sheet rows below the header as raw strings.
func (c *Client) Rows(ctx context.Context) ([][]string, error) {
	values, err := c.readValues(ctx, fmt.Sprintf("%s!A:G", c.dataSheet))
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(values))
	for _, row := range dropHeader(values) {
		rows = append(rows, toStrings(row))
	}
	return rows, nil
}

func (c *Client) readNames(ctx context.Context, sheetName string) ([]string, error) {
	values, err := c.readValues(ctx, fmt.Sprintf("%s!A:A", sheetName))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, row := range dropHeader(values) {
		cols := toStrings(row)
		if len(cols) == 0 || cols[0] == "" {
			continue
		}
		out = append(out, cols[0])
	}
	return out, nil
}

func (c *Client) readValues(ctx context.Context, rng string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// dropHeader removes the first row; every sub-store carries one header row.
func dropHeader(values [][]any) [][]any {
	if len(values) == 0 {
		return nil
	}
	return values[1:]
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
