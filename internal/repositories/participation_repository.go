package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipationRepository interface {
	// ListByEvent returns the participations of an event with subscribers loaded.
	ListByEvent(db *gorm.DB, eventID uint) ([]models.EventParticipation, error)
	EventIDsBySubscriber(db *gorm.DB, subscriberID uint) ([]uint, error)
	// Add creates the participation; an existing one is left untouched and
	// reported as not created.
	Add(db *gorm.DB, eventID, subscriberID uint) (bool, error)
	// Remove reports whether a participation was deleted.
	Remove(db *gorm.DB, eventID, subscriberID uint) (bool, error)
}

type participationRepository struct{}

func NewParticipationRepository() ParticipationRepository {
	return &participationRepository{}
}

func (r *participationRepository) ListByEvent(db *gorm.DB, eventID uint) ([]models.EventParticipation, error) {
	var out []models.EventParticipation
	if err := db.Preload("Subscriber").Where("event_id = ?", eventID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *participationRepository) EventIDsBySubscriber(db *gorm.DB, subscriberID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&models.EventParticipation{}).Where("subscriber_id = ?", subscriberID).Pluck("event_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *participationRepository) Add(db *gorm.DB, eventID, subscriberID uint) (bool, error) {
	p := models.EventParticipation{EventID: eventID, SubscriberID: subscriberID}
	result := db.Omit("Event", "Subscriber").Clauses(clause.OnConflict{DoNothing: true}).Create(&p)
	if result.Error != nil {
		if IsDuplicateKey(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *participationRepository) Remove(db *gorm.DB, eventID, subscriberID uint) (bool, error) {
	result := db.Where("event_id = ? AND subscriber_id = ?", eventID, subscriberID).Delete(&models.EventParticipation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
