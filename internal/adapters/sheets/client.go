package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// Client reads and appends rows in one spreadsheet.
type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// New builds a client authenticated with a service account key file.
// PRE: credentialsPath names a readable service account JSON file
// POST: Returns a client scoped to spreadsheetID
func New(ctx context.Context, credentialsPath, spreadsheetID string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// ReadAll returns every populated row of a tab, header included.
func (c *Client) ReadAll(ctx context.Context, tab string) ([][]any, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, tab+"!A:ZZ").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	return resp.Values, nil
}

// AppendRow adds one row after the last populated row of a tab.
func (c *Client) AppendRow(ctx context.Context, tab string, row []any) error {
	vr := &sheetsv4.ValueRange{Values: [][]any{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A:ZZ", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", tab, err)
	}
	return nil
}

// Cell returns row[i] as a string, or "" when the row is short.
func Cell(row []any, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}
