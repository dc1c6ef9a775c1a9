package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

// EventLogFilter narrows the audit listing.
type EventLogFilter struct {
	EventType models.EventLogType
	Target    string
}

type EventLogRepository interface {
	Create(db *gorm.DB, entry *models.EventLog) error
	Recent(db *gorm.DB, filter EventLogFilter, page Page) ([]models.EventLog, int64, error)
}

type eventLogRepository struct{}

func NewEventLogRepository() EventLogRepository {
	return &eventLogRepository{}
}

func (r *eventLogRepository) Create(db *gorm.DB, entry *models.EventLog) error {
	return db.Create(entry).Error
}

func (r *eventLogRepository) Recent(db *gorm.DB, filter EventLogFilter, page Page) ([]models.EventLog, int64, error) {
	q := db.Model(&models.EventLog{})
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}
	if filter.Target != "" {
		q = q.Where("event_target = ?", filter.Target)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.EventLog
	if err := page.apply(q).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
