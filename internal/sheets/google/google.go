// Package google implements the sheets export ports on the Google Sheets
// API, authenticated with a user OAuth token minted by cmd/oauth-init.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finboard/internal/sheets"
)

// Columns written per transaction row: date, description, amount, type,
// category, and the transaction ID used to locate rows on deletion.
const idColumn = "F"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	mu      sync.Mutex
	sheetID int64
	haveID  bool
}

var _ sheets.Exporter = (*Client)(nil)

// Options carries the export destination and OAuth material. Inline JSON
// takes precedence over file paths.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	OAuthClientFile string
	OAuthTokenFile  string
	OAuthClientJSON string
	OAuthTokenJSON  string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	httpClient, err := oauthHTTPClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// oauthHTTPClient builds an HTTP client from the OAuth application config
// and a previously minted user token. The oauth2 transport refreshes the
// access token transparently.
func oauthHTTPClient(ctx context.Context, opts Options) (*http.Client, error) {
	clientJSON, err := readMaterial(opts.OAuthClientJSON, opts.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client config: %w", err)
	}
	conf, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	tokenJSON, err := readMaterial(opts.OAuthTokenJSON, opts.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	tok, err := parseToken(tokenJSON)
	if err != nil {
		return nil, err
	}

	return conf.Client(ctx, tok), nil
}

// Append writes one transaction to the next empty row and returns the A1
// reference of the written range.
func (c *Client) Append(ctx context.Context, row sheets.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:%s%d", c.sheetName, nextRow, idColumn, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		row.Date,
		row.Description,
		float64(row.AmountCents) / 100.0,
		row.Type,
		row.Category,
		row.ID,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}
	return dataRange, nil
}

// Remove deletes the row whose ID column matches the transaction. A row
// that is not present is not an error; the export is eventually consistent
// and the deletion may have already been applied.
func (c *Client) Remove(ctx context.Context, row sheets.Row) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s:%s", c.sheetName, idColumn, idColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	rowIndex := -1
	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(cells[0])) == row.ID {
			rowIndex = i
			break
		}
	}
	if rowIndex < 0 {
		slog.WarnContext(ctx, "Exported row not found for deletion",
			"transaction_id", row.ID, "sheet", c.sheetName)
		return nil
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowIndex+1, c.sheetName, err)
	}
	return nil
}

// resolveSheetID maps the sheet title to its numeric id, cached after the
// first lookup.
func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haveID {
		return c.sheetID, nil
	}

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			c.sheetID = sh.Properties.SheetId
			c.haveID = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

func readMaterial(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	}
	return nil, errors.New("no credential material provided")
}

func parseToken(b []byte) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, errors.New("oauth token has no access or refresh token")
	}
	return &tok, nil
}
