// internal/sheets/sheets_test.go
package sheets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/models"
)

func sheetValues(rows ...[]interface{}) [][]interface{} {
	header := []interface{}{
		"code", "content", "username", "image", "imageType",
		"referenceType", "referenceCode", "type", "scheduleType", "targetTime",
	}
	return append([][]interface{}{header}, rows...)
}

func TestParseRowsMapsByHeader(t *testing.T) {
	values := sheetValues(
		[]interface{}{"welcome", "Good morning!", "", "", "", "", "", "telegram", "every_day", "08:00"},
	)

	rows := parseRows(values)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "WELCOME", row.Code, "codes are upper-cased on ingest")
	assert.Equal(t, "Good morning!", row.Content)
	assert.Equal(t, "telegram", row.Type)
	assert.Equal(t, "every_day", row.ScheduleType)
	assert.Equal(t, "08:00", row.TargetTime)
	assert.True(t, row.complete())
}

func TestParseRowsReorderedHeader(t *testing.T) {
	values := [][]interface{}{
		{"targetTime", "type", "code", "content", "scheduleType"},
		{"09:30", "email", "digest", "Weekly digest", "working_day"},
	}

	rows := parseRows(values)
	require.Len(t, rows, 1)
	assert.Equal(t, "DIGEST", rows[0].Code)
	assert.Equal(t, "email", rows[0].Type)
	assert.Equal(t, "09:30", rows[0].TargetTime)
}

func TestParseRowsShortRow(t *testing.T) {
	// Trailing empty cells are omitted by the sheets API.
	values := sheetValues(
		[]interface{}{"partial", "Some content"},
	)

	rows := parseRows(values)
	require.Len(t, rows, 1)
	assert.Equal(t, "PARTIAL", rows[0].Code)
	assert.Empty(t, rows[0].Type)
	assert.False(t, rows[0].complete())
}

func TestParseRowsNormalizesEnums(t *testing.T) {
	values := sheetValues(
		[]interface{}{"a", "x", "", "http://img", "URL", "tryout-section", "TO-1", "telegram", "on-going", "2d"},
		[]interface{}{"b", "y", "", "http://img", "banner", "lesson", "L-1", "telegram", "on-going", "1d"},
	)

	rows := parseRows(values)
	require.Len(t, rows, 2)

	assert.Equal(t, "url", rows[0].ImageType)
	assert.Equal(t, "tryout-section", rows[0].ReferenceType)

	// Unknown enum values are dropped rather than stored.
	assert.Empty(t, rows[1].ImageType)
	assert.Empty(t, rows[1].ReferenceType)
}

func TestParseRowsHeaderOnly(t *testing.T) {
	assert.Nil(t, parseRows(sheetValues()))
	assert.Nil(t, parseRows(nil))
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Broadcast{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSyncRowsUpsertsAndDeactivates(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}

	first := []Row{
		{Code: "WELCOME", Content: "Hi", Type: "telegram", ScheduleType: "every_day", TargetTime: "08:00"},
		{Code: "DIGEST", Content: "Weekly", Type: "email", ScheduleType: "working_day", TargetTime: "09:00"},
	}
	synced, err := svc.syncRows(first)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)

	var count int64
	db.Model(&models.Broadcast{}).Count(&count)
	assert.EqualValues(t, 2, count)

	// Second sync drops DIGEST and changes WELCOME's content.
	second := []Row{
		{Code: "WELCOME", Content: "Hello there", Type: "telegram", ScheduleType: "every_day", TargetTime: "08:30"},
	}
	synced, err = svc.syncRows(second)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	var welcome models.Broadcast
	require.NoError(t, db.Where("code = ? AND type = ?", "WELCOME", "telegram").First(&welcome).Error)
	assert.Equal(t, "Hello there", welcome.Content)
	assert.Equal(t, "08:30", welcome.TargetTime)
	assert.True(t, welcome.Active())

	var digest models.Broadcast
	require.NoError(t, db.Where("code = ? AND type = ?", "DIGEST", "email").First(&digest).Error)
	assert.False(t, digest.Active(), "broadcasts missing from the sheet are deactivated, not deleted")
}

func TestSyncRowsSkipsIncomplete(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}

	rows := []Row{
		{Code: "OK", Content: "Fine", Type: "telegram", ScheduleType: "every_day", TargetTime: "10:00"},
		{Code: "BROKEN", Content: "", Type: "telegram", ScheduleType: "every_day", TargetTime: "10:00"},
	}
	synced, err := svc.syncRows(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	var count int64
	db.Model(&models.Broadcast{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSyncRowsEmptySheetDeactivatesAll(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}

	_, err := svc.syncRows([]Row{
		{Code: "OLD", Content: "x", Type: "telegram", ScheduleType: "every_day", TargetTime: "07:00"},
	})
	require.NoError(t, err)

	synced, err := svc.syncRows(nil)
	require.NoError(t, err)
	assert.Zero(t, synced)

	var b models.Broadcast
	require.NoError(t, db.Where("code = ?", "OLD").First(&b).Error)
	assert.False(t, b.Active())
}
