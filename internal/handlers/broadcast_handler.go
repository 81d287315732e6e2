// internal/handlers/broadcast_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/farhanpermana/react-event-reminder/config"
	"github.com/farhanpermana/react-event-reminder/internal/notify"
	"github.com/farhanpermana/react-event-reminder/internal/scheduler"
	"github.com/farhanpermana/react-event-reminder/internal/sheets"
	"github.com/farhanpermana/react-event-reminder/models"
)

// ListBroadcastsHandler returns a paginated list of broadcasts.
func ListBroadcastsHandler(c *gin.Context) {
	var broadcasts []models.Broadcast

	query := config.DB.Order("code asc, type asc")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if c.Query("all") == "true" {
		if err := query.Find(&broadcasts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch broadcasts"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": broadcasts})
		return
	}

	var totalRows int64
	countQuery := config.DB.Model(&models.Broadcast{})
	if c.Query("active") == "true" {
		countQuery = countQuery.Where("is_active = ?", true)
	}
	countQuery.Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&broadcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch broadcasts"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, broadcasts, totalRows))
}

// GetBroadcastHandler retrieves a single broadcast by ID.
func GetBroadcastHandler(c *gin.Context) {
	var broadcast models.Broadcast
	if err := config.DB.First(&broadcast, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Broadcast not found"})
		return
	}
	c.JSON(http.StatusOK, broadcast)
}

// SyncBroadcastsHandler pulls the spreadsheet into the database and rebuilds
// the reminder jobs so the new definitions take effect immediately.
func SyncBroadcastsHandler(svc *sheets.Service, sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Sheets integration is not configured"})
			return
		}

		synced, err := svc.SyncToDatabase()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed: " + err.Error()})
			return
		}

		if err := sched.Init(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "Synced but failed to rebuild reminder jobs: " + err.Error(),
				"synced": synced,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"synced":                 synced,
			"schedulerReinitialized": true,
		})
	}
}

// ExecuteBroadcastHandler dispatches a broadcast immediately, outside its
// schedule.
func ExecuteBroadcastHandler(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid broadcast ID"})
			return
		}

		result, err := sched.ExecuteManual(uint(id))
		if err != nil {
			switch {
			case errors.Is(err, scheduler.ErrBroadcastNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Broadcast not found"})
			case errors.Is(err, scheduler.ErrBroadcastNotActive):
				c.JSON(http.StatusConflict, gin.H{"error": "Broadcast is not active"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Execution failed: " + err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// SchedulerStatusHandler lists every registered reminder job and its next
// invocation time.
func SchedulerStatusHandler(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sched.Status())
	}
}

// NextReminderHandler reports when the given broadcast fires next.
func NextReminderHandler(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid broadcast ID"})
			return
		}

		next, err := sched.NextReminderTime(uint(id))
		if err != nil {
			if errors.Is(err, scheduler.ErrBroadcastNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Broadcast not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not determine next reminder"})
			return
		}
		if next == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No reminder scheduled for this broadcast"})
			return
		}

		c.JSON(http.StatusOK, next)
	}
}

// ExportBroadcastsHandler renders the broadcast table as an Excel workbook.
func ExportBroadcastsHandler(c *gin.Context) {
	var broadcasts []models.Broadcast
	if err := config.DB.Order("code asc, type asc").Find(&broadcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data for export"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Broadcasts"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Code", "Type", "Schedule", "Target Time", "Reference", "Username", "Active", "Last Executed", "Content"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, b := range broadcasts {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.Code)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(b.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), string(b.ScheduleType))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.TargetTime)
		if b.ReferenceType != nil && b.ReferenceCode != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("%s:%s", *b.ReferenceType, *b.ReferenceCode))
		}
		if b.Username != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), *b.Username)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), b.Active())
		if b.LastExecuted != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), b.LastExecuted.Format("2006-01-02 15:04:05"))
		}
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), b.Content)
	}

	fileName := fmt.Sprintf("broadcasts_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
	}
}

// TestTelegramInput defines the payload for the Telegram connectivity check.
type TestTelegramInput struct {
	ChatID  int64  `json:"chatId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// TestTelegramHandler sends an ad-hoc message to a chat so operators can
// verify the bot token and reachability.
func TestTelegramHandler(api notify.ChatAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		if api == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram bot is not configured"})
			return
		}

		var input TestTelegramInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := api.SendMessage(input.ChatID, input.Message); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
	}
}
