// internal/handlers/course_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/config"
	"github.com/farhanpermana/react-event-reminder/models"
)

// CreateCourseInput defines the payload for creating a course.
type CreateCourseInput struct {
	Code        string     `json:"code" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate" binding:"required"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    *bool      `json:"isActive"`
}

// UpdateCourseInput defines the payload for a partial course update.
type UpdateCourseInput struct {
	Code        *string    `json:"code"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    *bool      `json:"isActive"`
}

// ListCoursesHandler returns courses ordered by start date.
func ListCoursesHandler(c *gin.Context) {
	var courses []models.Course

	query := config.DB.Order("start_date asc")

	if c.Query("all") == "true" {
		if err := query.Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch courses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": courses})
		return
	}

	var totalRows int64
	config.DB.Model(&models.Course{}).Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch courses"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, courses, totalRows))
}

// GetCourseHandler retrieves one course with its tryout sections.
func GetCourseHandler(c *gin.Context) {
	var course models.Course
	err := config.DB.Preload("TryoutSections", func(db *gorm.DB) *gorm.DB {
		return db.Order("\"order\" asc")
	}).First(&course, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourseHandler creates a course. Codes are upper-cased and unique.
func CreateCourseHandler(c *gin.Context) {
	var input CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := strings.ToUpper(input.Code)

	var count int64
	config.DB.Model(&models.Course{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Course code is already in use"})
		return
	}

	course := models.Course{
		Code:        code,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    input.IsActive,
	}

	if err := config.DB.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, course)
}

// UpdateCourseHandler applies a partial update to a course.
func UpdateCourseHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	var course models.Course
	if err := config.DB.First(&course, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	var input UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Code != nil {
		code := strings.ToUpper(*input.Code)
		var count int64
		config.DB.Model(&models.Course{}).
			Where("code = ? AND id <> ?", code, course.ID).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Course code is already in use"})
			return
		}
		course.Code = code
	}
	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.StartDate != nil {
		course.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		course.EndDate = input.EndDate
	}
	if input.IsActive != nil {
		course.IsActive = input.IsActive
	}

	if err := config.DB.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourseHandler deletes a course unless tryout sections still point at it.
func DeleteCourseHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	var sections int64
	config.DB.Model(&models.TryoutSection{}).Where("course_id = ?", id).Count(&sections)
	if sections > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Course still has tryout sections attached"})
		return
	}

	if result := config.DB.Delete(&models.Course{}, id); result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}

	c.Status(http.StatusNoContent)
}
