// config/sheets.go
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var SheetsAPI *sheets.Service

// InitSheets builds the Google Sheets client from a service account key.
// GOOGLE_CREDENTIALS_FILE points at the JSON key file.
func InitSheets() error {
	ctx := context.Background()

	credsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if credsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE environment variable not set")
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return fmt.Errorf("unable to create Sheets client: %v", err)
	}

	SheetsAPI = svc
	slog.Info("Google Sheets client initialized successfully.")

	return nil
}
