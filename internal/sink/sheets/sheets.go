// Package sheets mirrors ledger snapshots into a Google Sheets tab, so a
// plan can be eyeballed or shared without running the app.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cashflow/internal/csvio"
	realsink "cashflow/internal/sink"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Sink struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ realsink.Sink = (*Sink)(nil)

// NewFromEnv creates a Sheets sink using Service Account credentials.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string) (*Sink, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = "Cashflow"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Sink{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	creds, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return creds, nil
}

// Write replaces the sheet contents with the current snapshot: header row
// plus the encoded CSV rows.
func (s *Sink) Write(ctx context.Context, doc csvio.Document) error {
	values := make([][]interface{}, 0, len(doc.Transactions)+3)
	values = append(values, toInterfaceRow(csvio.Header))
	for _, row := range csvio.EncodeRows(doc.Transactions, doc.Opening, doc.Start, doc.End) {
		values = append(values, toInterfaceRow(row))
	}

	clearReq := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, s.sheetName, &gsheet.ClearValuesRequest{})
	if _, err := clearReq.Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %q: %w", s.sheetName, err)
	}

	updateReq := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1", &gsheet.ValueRange{Values: values})
	if _, err := updateReq.ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %q: %w", s.sheetName, err)
	}
	return nil
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
