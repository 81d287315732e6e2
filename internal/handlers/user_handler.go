// internal/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/config"
	"github.com/farhanpermana/react-event-reminder/models"
)

// CreateUserInput defines the payload for creating a user.
type CreateUserInput struct {
	Username    string         `json:"username" binding:"required"`
	Email       string         `json:"email" binding:"required,email"`
	FullName    string         `json:"fullName" binding:"required"`
	PhoneNumber string         `json:"phoneNumber"`
	TelegramID  *int64         `json:"telegramId"`
	Data        datatypes.JSON `json:"data"`
	IsActive    *bool          `json:"isActive"`
}

// UpdateUserInput defines the payload for a partial user update.
type UpdateUserInput struct {
	Username    *string        `json:"username"`
	Email       *string        `json:"email"`
	FullName    *string        `json:"fullName"`
	PhoneNumber *string        `json:"phoneNumber"`
	TelegramID  *int64         `json:"telegramId"`
	Data        datatypes.JSON `json:"data"`
	IsActive    *bool          `json:"isActive"`
}

// ListUsersHandler returns a paginated list of users.
func ListUsersHandler(c *gin.Context) {
	var users []models.User

	query := config.DB.Order("id asc")

	if c.Query("all") == "true" {
		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": users})
		return
	}

	var totalRows int64
	config.DB.Model(&models.User{}).Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, users, totalRows))
}

// GetUserHandler retrieves a single user by ID.
func GetUserHandler(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByTelegramHandler retrieves a user by the Telegram chat linked to it.
func GetUserByTelegramHandler(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegramId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Telegram ID"})
		return
	}

	user, err := models.FindUserByTelegramID(config.DB, telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUserHandler creates a new user. Username, email and Telegram ID must
// each be unique across users.
func CreateUserHandler(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if conflict, field := findUserConflict(input.Username, input.Email, input.PhoneNumber, input.TelegramID, 0); conflict {
		c.JSON(http.StatusConflict, gin.H{"error": field + " is already in use"})
		return
	}

	user := models.User{
		Username:    input.Username,
		Email:       input.Email,
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		IsActive:    input.IsActive,
	}
	if len(input.Data) > 0 {
		user.Data = input.Data
	}
	if input.TelegramID != nil {
		if err := user.SetTelegramID(*input.TelegramID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode Telegram ID"})
			return
		}
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UpdateUserHandler applies a partial update to a user.
func UpdateUserHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := user.Username
	if input.Username != nil {
		username = *input.Username
	}
	email := user.Email
	if input.Email != nil {
		email = *input.Email
	}
	phoneNumber := user.PhoneNumber
	if input.PhoneNumber != nil {
		phoneNumber = *input.PhoneNumber
	}
	if conflict, field := findUserConflict(username, email, phoneNumber, input.TelegramID, user.ID); conflict {
		c.JSON(http.StatusConflict, gin.H{"error": field + " is already in use"})
		return
	}

	user.Username = username
	user.Email = email
	user.PhoneNumber = phoneNumber
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.IsActive != nil {
		user.IsActive = input.IsActive
	}
	if len(input.Data) > 0 {
		user.Data = input.Data
	}
	if input.TelegramID != nil {
		if err := user.SetTelegramID(*input.TelegramID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode Telegram ID"})
			return
		}
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUserHandler soft-deletes a user.
func DeleteUserHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if result := config.DB.Delete(&models.User{}, id); result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.Status(http.StatusNoContent)
}

// findUserConflict checks username, email, phone number and telegram id
// uniqueness in turn, excluding the given user id (0 for creates). Returns the
// first conflicting field name.
func findUserConflict(username, email, phoneNumber string, telegramID *int64, excludeID uint) (bool, string) {
	var count int64
	config.DB.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count)
	if count > 0 {
		return true, "username"
	}

	config.DB.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count)
	if count > 0 {
		return true, "email"
	}

	if phoneNumber != "" {
		config.DB.Model(&models.User{}).
			Where("phone_number = ? AND id <> ?", phoneNumber, excludeID).
			Count(&count)
		if count > 0 {
			return true, "phoneNumber"
		}
	}

	if telegramID != nil {
		config.DB.Model(&models.User{}).
			Where("id <> ?", excludeID).
			Where(datatypes.JSONQuery("data").Equals(*telegramID, "telegram", "id")).
			Count(&count)
		if count > 0 {
			return true, "telegramId"
		}
	}

	return false, ""
}
