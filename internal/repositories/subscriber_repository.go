package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

type SubscriberRepository interface {
	FindByCredentials(db *gorm.DB, matricola, email string) (*models.Subscriber, error)
	FindByID(db *gorm.DB, id uint) (*models.Subscriber, error)
	FindByEmail(db *gorm.DB, email string) (*models.Subscriber, error)
	// List pages through subscribers; query matches name, surname, email or matricola.
	List(db *gorm.DB, query string, page Page) ([]models.Subscriber, int64, error)
	Create(db *gorm.DB, subscriber *models.Subscriber) error
	Exists(db *gorm.DB, matricola, email string) (bool, error)
	ListEnabled(db *gorm.DB) ([]models.Subscriber, error)
	Disable(db *gorm.DB, ids []uint) error
	DeleteAll(db *gorm.DB) error
}

type subscriberRepository struct{}

func NewSubscriberRepository() SubscriberRepository {
	return &subscriberRepository{}
}

func (r *subscriberRepository) FindByCredentials(db *gorm.DB, matricola, email string) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := db.Where("matricola = ? AND email = ?", matricola, email).First(&s).Error; err != nil {
		return nil, notFound(err, ErrSubscriberNotFound)
	}
	return &s, nil
}

func (r *subscriberRepository) FindByID(db *gorm.DB, id uint) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := db.First(&s, id).Error; err != nil {
		return nil, notFound(err, ErrSubscriberNotFound)
	}
	return &s, nil
}

func (r *subscriberRepository) FindByEmail(db *gorm.DB, email string) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := db.Where("email = ?", email).Order("id ASC").First(&s).Error; err != nil {
		return nil, notFound(err, ErrSubscriberNotFound)
	}
	return &s, nil
}

func (r *subscriberRepository) List(db *gorm.DB, query string, page Page) ([]models.Subscriber, int64, error) {
	q := db.Model(&models.Subscriber{})
	if query != "" {
		p := likePattern(query)
		q = q.Where("name LIKE ? OR surname LIKE ? OR email LIKE ? OR matricola LIKE ?", p, p, p, p)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Subscriber
	if err := page.apply(q).Order("surname ASC, name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *subscriberRepository) Create(db *gorm.DB, subscriber *models.Subscriber) error {
	return duplicate(db.Create(subscriber).Error)
}

func (r *subscriberRepository) Exists(db *gorm.DB, matricola, email string) (bool, error) {
	var count int64
	err := db.Model(&models.Subscriber{}).Where("matricola = ? AND email = ?", matricola, email).Count(&count).Error
	return count > 0, err
}

func (r *subscriberRepository) ListEnabled(db *gorm.DB) ([]models.Subscriber, error) {
	var out []models.Subscriber
	if err := db.Where("enabled = ?", true).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subscriberRepository) Disable(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&models.Subscriber{}).Where("id IN ?", ids).Update("enabled", false).Error
}

func (r *subscriberRepository) DeleteAll(db *gorm.DB) error {
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.EventParticipation{}).Error; err != nil {
		return err
	}
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Subscriber{}).Error
}
