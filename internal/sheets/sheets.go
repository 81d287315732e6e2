// internal/sheets/sheets.go

// Package sheets pulls broadcast definitions out of the Google spreadsheet
// and reconciles them with the broadcasts table.
package sheets

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	sheetsapi "google.golang.org/api/sheets/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farhanpermana/react-event-reminder/models"
)

// Row is one spreadsheet row after header mapping and normalization.
type Row struct {
	Code          string
	Content       string
	Username      string
	Image         string
	ImageType     string
	ReferenceType string
	ReferenceCode string
	Type          string
	ScheduleType  string
	TargetTime    string
}

// complete reports whether the row carries every required column.
func (r Row) complete() bool {
	return r.Code != "" && r.Content != "" && r.Type != "" && r.ScheduleType != "" && r.TargetTime != ""
}

type Service struct {
	API           *sheetsapi.Service
	DB            *gorm.DB
	SpreadsheetID string
	Range         string
}

func NewService(api *sheetsapi.Service, db *gorm.DB) *Service {
	rng := os.Getenv("GOOGLE_SHEET_RANGE")
	if rng == "" {
		rng = "reminder"
	}
	return &Service{
		API:           api,
		DB:            db,
		SpreadsheetID: os.Getenv("GOOGLE_SHEET_ID"),
		Range:         rng,
	}
}

// FetchAll reads the configured range and maps every data row through the
// header row.
func (s *Service) FetchAll() ([]Row, error) {
	resp, err := s.API.Spreadsheets.Values.Get(s.SpreadsheetID, s.Range).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	return parseRows(resp.Values), nil
}

// parseRows maps raw sheet values onto Rows. The first row is the header and
// defines column positions; codes are upper-cased on ingest and the enum-like
// columns are normalized.
func parseRows(values [][]interface{}) []Row {
	if len(values) < 2 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		cells := map[string]string{}
		for i, header := range headers {
			if i < len(raw) {
				cells[header] = strings.TrimSpace(fmt.Sprint(raw[i]))
			}
		}

		rows = append(rows, Row{
			Code:          strings.ToUpper(cells["code"]),
			Content:       cells["content"],
			Username:      cells["username"],
			Image:         cells["image"],
			ImageType:     normalizeImageType(cells["imageType"]),
			ReferenceType: normalizeReferenceType(cells["referenceType"]),
			ReferenceCode: cells["referenceCode"],
			Type:          cells["type"],
			ScheduleType:  cells["scheduleType"],
			TargetTime:    cells["targetTime"],
		})
	}
	return rows
}

func normalizeImageType(v string) string {
	lowered := strings.ToLower(v)
	if models.ImageType(lowered).Valid() {
		return lowered
	}
	return ""
}

func normalizeReferenceType(v string) string {
	if models.ReferenceType(v).Valid() {
		return v
	}
	return ""
}

// SyncToDatabase upserts every complete sheet row keyed by (code, type) and
// then deactivates broadcasts that are no longer present in the sheet. Rows
// missing required columns are skipped with a warning. Returns the number of
// rows upserted.
func (s *Service) SyncToDatabase() (int, error) {
	rows, err := s.FetchAll()
	if err != nil {
		return 0, err
	}
	return s.syncRows(rows)
}

func (s *Service) syncRows(rows []Row) (int, error) {
	synced := 0
	seen := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		if !row.complete() {
			slog.Warn("skipping incomplete sheet row", "code", row.Code, "type", row.Type)
			continue
		}

		b := models.Broadcast{
			Code:          row.Code,
			Content:       row.Content,
			Username:      optional(row.Username),
			ImageURL:      optional(row.Image),
			ImageType:     optionalImageType(row.ImageType),
			ReferenceType: optionalReferenceType(row.ReferenceType),
			ReferenceCode: optional(row.ReferenceCode),
			Type:          models.BroadcastType(row.Type),
			ScheduleType:  models.ScheduleType(row.ScheduleType),
			TargetTime:    row.TargetTime,
			IsActive:      active(),
		}

		err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "username", "image_url", "image_type",
				"reference_type", "reference_code", "schedule_type",
				"target_time", "is_active", "updated_at",
			}),
		}).Create(&b).Error
		if err != nil {
			slog.Error("failed to upsert broadcast from sheet", "code", row.Code, "error", err)
			continue
		}

		seen = append(seen, []interface{}{row.Code, row.Type})
		synced++
	}

	// Broadcasts absent from the sheet are deactivated, never deleted.
	q := s.DB.Model(&models.Broadcast{}).Where("is_active = ?", true)
	if len(seen) > 0 {
		q = q.Where("(code, type) NOT IN ?", seen)
	}
	if err := q.Update("is_active", false).Error; err != nil {
		return synced, fmt.Errorf("deactivate missing broadcasts: %w", err)
	}

	slog.Info("sheet sync finished", "synced", synced)
	return synced, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalImageType(v string) *models.ImageType {
	if v == "" {
		return nil
	}
	t := models.ImageType(v)
	return &t
}

func optionalReferenceType(v string) *models.ReferenceType {
	if v == "" {
		return nil
	}
	t := models.ReferenceType(v)
	return &t
}

func active() *bool {
	v := true
	return &v
}
