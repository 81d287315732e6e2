// internal/notify/directory.go

package notify

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/models"
)

// GormDirectory is the database-backed UserDirectory.
type GormDirectory struct {
	DB *gorm.DB
}

func (d *GormDirectory) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := d.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListActiveWithTelegram restricts active users to those with a linked chat
// identity, through the JSON path.
func (d *GormDirectory) ListActiveWithTelegram() ([]models.User, error) {
	var users []models.User
	err := d.DB.
		Where("is_active = ?", true).
		Where(datatypes.JSONQuery("data").HasKey("telegram", "id")).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (d *GormDirectory) ListActive() ([]models.User, error) {
	var users []models.User
	if err := d.DB.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GormMarker stamps broadcasts.last_executed.
type GormMarker struct {
	DB *gorm.DB
}

func (m *GormMarker) MarkExecuted(broadcastID uint, at time.Time) error {
	return m.DB.Model(&models.Broadcast{}).Where("id = ?", broadcastID).Update("last_executed", at).Error
}
