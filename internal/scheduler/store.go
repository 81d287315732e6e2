// internal/scheduler/store.go

package scheduler

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/farhanpermana/react-event-reminder/models"
)

// GormStore is the database-backed BroadcastStore.
type GormStore struct {
	DB *gorm.DB
}

func (g *GormStore) ListActive() ([]models.Broadcast, error) {
	var broadcasts []models.Broadcast
	if err := g.DB.Where("is_active = ?", true).Find(&broadcasts).Error; err != nil {
		return nil, err
	}
	return broadcasts, nil
}

func (g *GormStore) FindByID(id uint) (*models.Broadcast, error) {
	var b models.Broadcast
	if err := g.DB.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrBroadcastNotFound, id)
		}
		return nil, err
	}
	return &b, nil
}

// GormReferences resolves course and tryout-section start instants by code.
type GormReferences struct {
	DB *gorm.DB
}

func (g *GormReferences) StartTime(refType models.ReferenceType, code string) (time.Time, error) {
	switch refType {
	case models.ReferenceTryoutSection:
		var section models.TryoutSection
		if err := g.DB.Where("code = ?", code).First(&section).Error; err != nil {
			return time.Time{}, err
		}
		if section.StartDateTime == nil {
			return time.Time{}, fmt.Errorf("tryout section %s has no start time", code)
		}
		return *section.StartDateTime, nil

	case models.ReferenceCourse:
		var course models.Course
		if err := g.DB.Where("code = ?", code).First(&course).Error; err != nil {
			return time.Time{}, err
		}
		return course.StartDate, nil

	default:
		return time.Time{}, fmt.Errorf("unknown reference type %q", refType)
	}
}
