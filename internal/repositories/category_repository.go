package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindByID(db *gorm.DB, id uint) (*models.Category, error)
	FindByName(db *gorm.DB, name string) (*models.Category, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Category, error)
	// FindAll returns every category in listing order.
	FindAll(db *gorm.DB, activeOnly bool) ([]models.Category, error)
	Create(db *gorm.DB, category *models.Category) error
	Update(db *gorm.DB, category *models.Category) error
	// Delete removes the category, its descendants and their media links.
	Delete(db *gorm.DB, id uint) error
}

type categoryRepository struct{}

func NewCategoryRepository() CategoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) FindByID(db *gorm.DB, id uint) (*models.Category, error) {
	var c models.Category
	if err := db.First(&c, id).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *categoryRepository) FindByName(db *gorm.DB, name string) (*models.Category, error) {
	var c models.Category
	if err := db.Where("name = ?", name).Order(models.CategoryOrder).First(&c).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *categoryRepository) FindBySlug(db *gorm.DB, slug string) (*models.Category, error) {
	var c models.Category
	if err := db.Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *categoryRepository) FindAll(db *gorm.DB, activeOnly bool) ([]models.Category, error) {
	var out []models.Category
	q := db.Order(models.CategoryOrder)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepository) Create(db *gorm.DB, category *models.Category) error {
	return duplicate(db.Create(category).Error)
}

func (r *categoryRepository) Update(db *gorm.DB, category *models.Category) error {
	return duplicate(db.Save(category).Error)
}

func (r *categoryRepository) Delete(db *gorm.DB, id uint) error {
	// Children are removed explicitly: SQLite only cascades with foreign
	// keys enabled.
	var childIDs []uint
	if err := db.Model(&models.Category{}).Where("parent_id = ?", id).Pluck("id", &childIDs).Error; err != nil {
		return err
	}
	for _, child := range childIDs {
		if err := r.Delete(db, child); err != nil {
			return err
		}
	}
	if err := db.Where("category_id = ?", id).Delete(&models.VideoCategory{}).Error; err != nil {
		return err
	}
	if err := db.Where("category_id = ?", id).Delete(&models.DocumentCategory{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
