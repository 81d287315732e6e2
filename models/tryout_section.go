// models/tryout_section.go

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TryoutSection optionally belongs to a Course. Broadcasts reference it by
// Code, not by id.
type TryoutSection struct {
	ID            string         `json:"ID" gorm:"type:uuid;primaryKey"`
	Code          string         `json:"code" gorm:"not null;index"`
	Title         string         `json:"title" gorm:"not null"`
	Description   string         `json:"description" gorm:"type:text"`
	CourseID      *uint          `json:"courseId"`
	StartDateTime *time.Time     `json:"startDateTime"`
	EndDateTime   *time.Time     `json:"endDateTime"`
	Order         *int           `json:"order"`
	Data          datatypes.JSON `json:"data"`
	Tag           string         `json:"tag"`
	IsActive      *bool          `json:"isActive" gorm:"default:true"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (s *TryoutSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
