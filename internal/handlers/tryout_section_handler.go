// internal/handlers/tryout_section_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/farhanpermana/react-event-reminder/config"
	"github.com/farhanpermana/react-event-reminder/models"
)

// CreateTryoutSectionInput defines the payload for creating a tryout section.
type CreateTryoutSectionInput struct {
	Code          string         `json:"code" binding:"required"`
	Title         string         `json:"title" binding:"required"`
	Description   string         `json:"description"`
	CourseID      *uint          `json:"courseId"`
	StartDateTime *time.Time     `json:"startDateTime"`
	EndDateTime   *time.Time     `json:"endDateTime"`
	Order         *int           `json:"order"`
	Data          datatypes.JSON `json:"data"`
	Tag           string         `json:"tag"`
	IsActive      *bool          `json:"isActive"`
}

// UpdateTryoutSectionInput defines the payload for a partial update.
type UpdateTryoutSectionInput struct {
	Code          *string        `json:"code"`
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	CourseID      *uint          `json:"courseId"`
	StartDateTime *time.Time     `json:"startDateTime"`
	EndDateTime   *time.Time     `json:"endDateTime"`
	Order         *int           `json:"order"`
	Data          datatypes.JSON `json:"data"`
	Tag           *string        `json:"tag"`
	IsActive      *bool          `json:"isActive"`
}

// ListTryoutSectionsHandler returns tryout sections ordered by their display
// order. An optional courseId query parameter narrows the list to one course.
func ListTryoutSectionsHandler(c *gin.Context) {
	var sections []models.TryoutSection

	query := config.DB.Order("\"order\" asc, created_at asc")
	if courseID := c.Query("courseId"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	if c.Query("all") == "true" {
		if err := query.Find(&sections).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch tryout sections"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sections})
		return
	}

	var totalRows int64
	countQuery := config.DB.Model(&models.TryoutSection{})
	if courseID := c.Query("courseId"); courseID != "" {
		countQuery = countQuery.Where("course_id = ?", courseID)
	}
	countQuery.Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&sections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch tryout sections"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, sections, totalRows))
}

// GetTryoutSectionHandler retrieves a single tryout section by its UUID.
func GetTryoutSectionHandler(c *gin.Context) {
	var section models.TryoutSection
	if err := config.DB.First(&section, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tryout section not found"})
		return
	}
	c.JSON(http.StatusOK, section)
}

// CreateTryoutSectionHandler creates a tryout section. The referenced course
// must exist when courseId is given.
func CreateTryoutSectionHandler(c *gin.Context) {
	var input CreateTryoutSectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.CourseID != nil && !courseExists(*input.CourseID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced course does not exist"})
		return
	}

	section := models.TryoutSection{
		Code:          strings.ToUpper(input.Code),
		Title:         input.Title,
		Description:   input.Description,
		CourseID:      input.CourseID,
		StartDateTime: input.StartDateTime,
		EndDateTime:   input.EndDateTime,
		Order:         input.Order,
		Tag:           input.Tag,
		IsActive:      input.IsActive,
	}
	if len(input.Data) > 0 {
		section.Data = input.Data
	}

	if err := config.DB.Create(&section).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tryout section: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, section)
}

// UpdateTryoutSectionHandler applies a partial update to a tryout section.
func UpdateTryoutSectionHandler(c *gin.Context) {
	var section models.TryoutSection
	if err := config.DB.First(&section, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tryout section not found"})
		return
	}

	var input UpdateTryoutSectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.CourseID != nil && !courseExists(*input.CourseID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced course does not exist"})
		return
	}

	if input.Code != nil {
		section.Code = strings.ToUpper(*input.Code)
	}
	if input.Title != nil {
		section.Title = *input.Title
	}
	if input.Description != nil {
		section.Description = *input.Description
	}
	if input.CourseID != nil {
		section.CourseID = input.CourseID
	}
	if input.StartDateTime != nil {
		section.StartDateTime = input.StartDateTime
	}
	if input.EndDateTime != nil {
		section.EndDateTime = input.EndDateTime
	}
	if input.Order != nil {
		section.Order = input.Order
	}
	if input.Tag != nil {
		section.Tag = *input.Tag
	}
	if input.IsActive != nil {
		section.IsActive = input.IsActive
	}
	if len(input.Data) > 0 {
		section.Data = input.Data
	}

	if err := config.DB.Save(&section).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tryout section: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, section)
}

// DeleteTryoutSectionHandler removes a tryout section.
func DeleteTryoutSectionHandler(c *gin.Context) {
	result := config.DB.Delete(&models.TryoutSection{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tryout section"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tryout section not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func courseExists(id uint) bool {
	var count int64
	config.DB.Model(&models.Course{}).Where("id = ?", id).Count(&count)
	return count > 0
}
