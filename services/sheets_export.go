// services/sheets_export.go - Registrations mirrored into Google Sheets
package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// SheetRegistrations is the tab the export rewrites.
const SheetRegistrations = "Registrations"

// SheetsExporter writes export rows into a spreadsheet.
type SheetsExporter interface {
	Replace(ctx context.Context, sheet string, rows [][]string) (int, error)
}

// SheetsClient is the Google Sheets implementation of SheetsExporter.
type SheetsClient struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func NewSheetsClient(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*SheetsClient, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return &SheetsClient{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (c *SheetsClient) SpreadsheetID() string { return c.spreadsheetID }

// Replace clears the sheet and writes rows from A1. It returns the number of
// rows written, header included.
func (c *SheetsClient) Replace(ctx context.Context, sheet string, rows [][]string) (int, error) {
	rng := sheet + "!A:Z"
	if _, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return 0, fmt.Errorf("clear %s: %w", sheet, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	vr := &sheetsv4.ValueRange{Values: values}
	resp, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", sheet, err)
	}
	return int(resp.UpdatedRows), nil
}

// ExportToSheets writes the filtered registrations to the Registrations tab.
func (s *RegistrationService) ExportToSheets(ctx context.Context, sheets SheetsExporter, f RegistrationFilter) (int, error) {
	if sheets == nil {
		return 0, ErrSheetsDisabled
	}
	regs, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	written, err := sheets.Replace(ctx, SheetRegistrations, ExportRows(regs))
	if err != nil {
		log.Printf("❌ Sheets export failed: %v", err)
		return 0, err
	}
	return written, nil
}
