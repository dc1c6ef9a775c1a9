package repositories

import (
	"strings"

	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	// FindOrCreate returns the tags named in names, creating missing ones.
	// Blank and repeated names are dropped.
	FindOrCreate(db *gorm.DB, names []string) ([]models.Tag, error)
	FindAll(db *gorm.DB) ([]models.Tag, error)
}

type tagRepository struct{}

func NewTagRepository() TagRepository {
	return &tagRepository{}
}

func (r *tagRepository) FindOrCreate(db *gorm.DB, names []string) ([]models.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	clean := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		clean = append(clean, n)
	}
	if len(clean) == 0 {
		return nil, nil
	}

	rows := make([]models.Tag, len(clean))
	for i, n := range clean {
		rows[i] = models.Tag{Tag: n}
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := db.Where("tag IN ?", clean).Order("tag ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) FindAll(db *gorm.DB) ([]models.Tag, error) {
	var tags []models.Tag
	if err := db.Order("tag ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
