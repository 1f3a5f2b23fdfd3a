package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cashledger/internal/export"
	applog "cashledger/internal/log"
	ports "cashledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client writes ledger views to a Google spreadsheet, one sheet per view.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetPrefix   string
}

var (
	_ ports.ViewPublisher = (*Client)(nil)
	_ ports.GridReader    = (*Client)(nil)
)

var ErrNotConfigured = errors.New("sheets service not initialized")

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	// SheetPrefix is prepended to every sheet title, e.g. "Ledger " -> "Ledger Daily".
	SheetPrefix string
}

// New builds a client. Extra client options replace the service-account
// credentials, which lets tests point the client at a local server.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetPrefix: cfg.SheetPrefix}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config, opts []goption.ClientOption) (*gsheet.Service, error) {
	if len(opts) == 0 {
		credentialsJSON, err := loadCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return service, nil
}

func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	switch {
	case cfg.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(cfg.CredentialsJSON), nil
	case cfg.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		raw, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return raw, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// PublishTables replaces the content of each table's sheet, creating
// missing sheets first.
func (c *Client) PublishTables(ctx context.Context, tables []export.Table) error {
	if c.svc == nil {
		return ErrNotConfigured
	}

	existing, err := c.sheetTitles(ctx)
	if err != nil {
		return err
	}
	var missing []string
	for _, t := range tables {
		title := c.title(t.Name)
		if _, ok := existing[title]; !ok {
			missing = append(missing, title)
		}
	}
	if err := c.addSheets(ctx, missing); err != nil {
		return err
	}

	for _, t := range tables {
		title := c.title(t.Name)
		rng := quoteSheet(title)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", title, err)
		}

		vr := &gsheet.ValueRange{Values: tableValues(t)}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update %s: %w", title, err)
		}
		slog.InfoContext(ctx, "Sheet published",
			applog.FieldComponent, applog.ComponentSheets,
			applog.FieldView, title,
			applog.FieldCount, len(t.Rows))
	}
	return nil
}

// ReadGrid returns every non-empty row of the sheet as trimmed strings.
func (c *Client) ReadGrid(ctx context.Context, sheet string) ([][]string, error) {
	if c.svc == nil {
		return nil, ErrNotConfigured
	}
	rng := quoteSheet(c.title(sheet))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return gridFromValues(resp.Values), nil
}

func (c *Client) sheetTitles(ctx context.Context) (map[string]struct{}, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	titles := make(map[string]struct{}, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles[s.Properties.Title] = struct{}{}
		}
	}
	return titles, nil
}

func (c *Client) addSheets(ctx context.Context, titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	reqs := make([]*gsheet.Request, 0, len(titles))
	for _, title := range titles {
		reqs = append(reqs, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		})
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheets %v: %w", titles, err)
	}
	slog.InfoContext(ctx, "Sheets created", "titles", titles)
	return nil
}

func (c *Client) title(name string) string {
	return c.sheetPrefix + displayName(name)
}
