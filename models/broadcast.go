// models/broadcast.go

package models

import (
	"time"

	"gorm.io/gorm"
)

// BroadcastType selects the outbound channel.
type BroadcastType string

const (
	BroadcastTelegram BroadcastType = "telegram"
	BroadcastEmail    BroadcastType = "email"
)

func (t BroadcastType) Valid() bool {
	return t == BroadcastTelegram || t == BroadcastEmail
}

// ScheduleType determines how TargetTime is interpreted: "HH:mm" for the
// recurring kinds, "{N}d"/"{N}h" before the reference event for on-going.
type ScheduleType string

const (
	ScheduleEveryDay   ScheduleType = "every_day"
	ScheduleWorkingDay ScheduleType = "working_day"
	ScheduleOnGoing    ScheduleType = "on-going"
)

func (t ScheduleType) Valid() bool {
	return t == ScheduleEveryDay || t == ScheduleWorkingDay || t == ScheduleOnGoing
}

// ReferenceType names the entity kind an on-going broadcast is anchored to.
type ReferenceType string

const (
	ReferenceTryoutSection ReferenceType = "tryout-section"
	ReferenceCourse        ReferenceType = "course"
)

func (t ReferenceType) Valid() bool {
	return t == ReferenceTryoutSection || t == ReferenceCourse
}

type ImageType string

const (
	ImageAsset ImageType = "asset"
	ImageURL   ImageType = "url"
)

func (t ImageType) Valid() bool {
	return t == ImageAsset || t == ImageURL
}

// Broadcast is a persisted reminder definition. Rows are the sole durable
// representation of scheduling intent; timers are rebuilt from them.
type Broadcast struct {
	gorm.Model
	Code          string         `json:"code" gorm:"not null;uniqueIndex:idx_broadcasts_code_type"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	Username      *string        `json:"username"`
	ImageURL      *string        `json:"imageUrl"`
	ImageType     *ImageType     `json:"imageType"`
	ReferenceType *ReferenceType `json:"referenceType"`
	ReferenceCode *string        `json:"referenceCode"`
	Type          BroadcastType  `json:"type" gorm:"not null;uniqueIndex:idx_broadcasts_code_type"`
	ScheduleType  ScheduleType   `json:"scheduleType" gorm:"not null"`
	TargetTime    string         `json:"targetTime" gorm:"not null"`
	LastExecuted  *time.Time     `json:"lastExecuted"`
	IsActive      *bool          `json:"isActive" gorm:"default:true"`
}

func (b *Broadcast) Active() bool {
	return b.IsActive == nil || *b.IsActive
}
