// models/course.go

package models

import (
	"time"

	"gorm.io/gorm"
)

// Course is a referenceable event: broadcasts with scheduleType=on-going and
// referenceType=course fire relative to StartDate.
type Course struct {
	gorm.Model
	Code        string     `json:"code" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	StartDate   time.Time  `json:"startDate" gorm:"not null"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    *bool      `json:"isActive" gorm:"default:true"`

	TryoutSections []TryoutSection `json:"tryoutSections,omitempty" gorm:"foreignKey:CourseID"`
}
