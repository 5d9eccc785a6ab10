package gsheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"registrar/internal/config"
	"registrar/internal/util"
)

// Connector reads company grids straight from a Google spreadsheet, one
// tab per company.
type Connector struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GOOGLE_SPREADSHEET_ID", cfg.SpreadsheetID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_SERVICE_ACCOUNT_JSON", cfg.GoogleCredentials); err != nil {
		return nil, err
	}

	blob, err := credentialsJSON(cfg.GoogleCredentials)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, blob, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{service: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// credentialsJSON accepts either a path to the key file or the key JSON
// itself pasted into the environment.
func credentialsJSON(value string) ([]byte, error) {
	if _, err := os.Stat(value); err == nil {
		return os.ReadFile(value)
	}
	return []byte(value), nil
}

func (c *Connector) ListSheets(ctx context.Context) ([]string, error) {
	resp, err := c.service.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, sheet := range resp.Sheets {
		if sheet.Properties == nil {
			continue
		}
		title := sheet.Properties.Title
		if util.IsInternalSheet(title) {
			continue
		}
		names = append(names, title)
	}
	return names, nil
}

func (c *Connector) GetGrid(ctx context.Context, sheetName string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("'%s'!A:Z", sheetName)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
