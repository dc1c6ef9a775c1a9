package repositories

import (
	"time"

	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

type EventRepository interface {
	// Enabled lists enabled events, latest first, with ParticipationCount set.
	Enabled(db *gorm.DB) ([]models.InformationEvent, error)
	// EnabledChronological is Enabled ordered by date and start time ascending.
	EnabledChronological(db *gorm.DB) ([]models.InformationEvent, error)
	// EnabledOn lists enabled events whose date is day.
	EnabledOn(db *gorm.DB, day time.Time) ([]models.InformationEvent, error)
	// Upcoming lists enabled events dated from day onwards, soonest first.
	Upcoming(db *gorm.DB, day time.Time) ([]models.InformationEvent, error)
	// Latest is the first enabled event in the default ordering.
	Latest(db *gorm.DB) (*models.InformationEvent, error)
	FindByID(db *gorm.DB, id uint) (*models.InformationEvent, error)
	FindByRefToken(db *gorm.DB, token string) (*models.InformationEvent, error)
	List(db *gorm.DB, page Page) ([]models.InformationEvent, int64, error)
	Create(db *gorm.DB, event *models.InformationEvent) error
	Update(db *gorm.DB, event *models.InformationEvent) error
	Delete(db *gorm.DB, id uint) error
}

type eventRepository struct{}

func NewEventRepository() EventRepository {
	return &eventRepository{}
}

const participationCountColumn = "(SELECT COUNT(*) FROM event_participations p WHERE p.event_id = information_events.id) AS participation_count"

func withParticipationCount(db *gorm.DB) *gorm.DB {
	return db.Model(&models.InformationEvent{}).Select("information_events.*, " + participationCountColumn)
}

func enabledEvents(db *gorm.DB) *gorm.DB {
	return withParticipationCount(db).Where("information_events.enabled = ?", true)
}

// dayBounds returns the calendar day of day in its own location and the
// next one as DATE literals, so drivers never shift them through a zone.
func dayBounds(day time.Time) (string, string) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start.Format(time.DateOnly), start.AddDate(0, 0, 1).Format(time.DateOnly)
}

func (r *eventRepository) Enabled(db *gorm.DB) ([]models.InformationEvent, error) {
	var out []models.InformationEvent
	if err := enabledEvents(db).Order(models.EnabledEventsOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepository) EnabledChronological(db *gorm.DB) ([]models.InformationEvent, error) {
	var out []models.InformationEvent
	if err := enabledEvents(db).Order("event_date ASC, event_start_time ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepository) EnabledOn(db *gorm.DB, day time.Time) ([]models.InformationEvent, error) {
	start, end := dayBounds(day)
	var out []models.InformationEvent
	err := enabledEvents(db).
		Where("information_events.event_date >= ? AND information_events.event_date < ?", start, end).
		Order(models.EnabledEventsOrder).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepository) Upcoming(db *gorm.DB, day time.Time) ([]models.InformationEvent, error) {
	start, _ := dayBounds(day)
	var out []models.InformationEvent
	err := enabledEvents(db).
		Where("information_events.event_date >= ?", start).
		Order("event_date ASC, event_start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepository) Latest(db *gorm.DB) (*models.InformationEvent, error) {
	var e models.InformationEvent
	if err := enabledEvents(db).Order(models.EnabledEventsOrder).First(&e).Error; err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return &e, nil
}

func (r *eventRepository) FindByID(db *gorm.DB, id uint) (*models.InformationEvent, error) {
	var e models.InformationEvent
	if err := withParticipationCount(db).Where("information_events.id = ?", id).First(&e).Error; err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return &e, nil
}

func (r *eventRepository) FindByRefToken(db *gorm.DB, token string) (*models.InformationEvent, error) {
	var e models.InformationEvent
	if err := db.Where("ref_token = ?", token).First(&e).Error; err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return &e, nil
}

func (r *eventRepository) List(db *gorm.DB, page Page) ([]models.InformationEvent, int64, error) {
	var total int64
	if err := db.Model(&models.InformationEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.InformationEvent
	if err := page.apply(withParticipationCount(db)).Order(models.EnabledEventsOrder).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *eventRepository) Create(db *gorm.DB, event *models.InformationEvent) error {
	return duplicate(db.Omit("Participations").Create(event).Error)
}

func (r *eventRepository) Update(db *gorm.DB, event *models.InformationEvent) error {
	return duplicate(db.Omit("Participations").Save(event).Error)
}

func (r *eventRepository) Delete(db *gorm.DB, id uint) error {
	if err := db.Where("event_id = ?", id).Delete(&models.EventParticipation{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.InformationEvent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
