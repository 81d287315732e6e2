// models/user.go

package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a reminder recipient. The Data column is an open JSON bag; the only
// path the application depends on is data.telegram.id (the chat identity).
type User struct {
	gorm.Model
	Username    string         `json:"username" gorm:"uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"not null"`
	FullName    string         `json:"fullName" gorm:"not null"`
	PhoneNumber string         `json:"phoneNumber"`
	Data        datatypes.JSON `json:"data" gorm:"default:'{}'"`
	IsActive    *bool          `json:"isActive" gorm:"default:true"`
}

func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// TelegramID extracts data.telegram.id from the JSON bag.
func (u *User) TelegramID() (int64, bool) {
	if len(u.Data) == 0 {
		return 0, false
	}
	var bag struct {
		Telegram struct {
			ID *int64 `json:"id"`
		} `json:"telegram"`
	}
	if err := json.Unmarshal(u.Data, &bag); err != nil || bag.Telegram.ID == nil {
		return 0, false
	}
	return *bag.Telegram.ID, true
}

// SetTelegramID merges the chat identity into the JSON bag without clobbering
// sibling keys.
func (u *User) SetTelegramID(telegramID int64) error {
	bag := map[string]interface{}{}
	if len(u.Data) > 0 {
		if err := json.Unmarshal(u.Data, &bag); err != nil {
			return err
		}
	}

	telegram, _ := bag["telegram"].(map[string]interface{})
	if telegram == nil {
		telegram = map[string]interface{}{}
	}
	telegram["id"] = telegramID
	bag["telegram"] = telegram

	raw, err := json.Marshal(bag)
	if err != nil {
		return err
	}
	u.Data = raw
	return nil
}

// FindUserByTelegramID looks a user up through the JSON path; there is no
// normalized column for the chat identity.
func FindUserByTelegramID(db *gorm.DB, telegramID int64) (*User, error) {
	var user User
	err := db.Where(datatypes.JSONQuery("data").Equals(telegramID, "telegram", "id")).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
