package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	FindByID(db *gorm.DB, id uint) (*models.Document, error)
	FindByRefToken(db *gorm.DB, token string) (*models.Document, error)
	FindByCategory(db *gorm.DB, filter MediaFilter) ([]models.Document, error)
	List(db *gorm.DB, filter MediaFilter, page Page) ([]models.Document, int64, error)
	Create(db *gorm.DB, doc *models.Document) error
	Save(db *gorm.DB, doc *models.Document) error
	UpdateColumns(db *gorm.DB, id uint, values map[string]interface{}) error
	Delete(db *gorm.DB, id uint) error
	ReplaceCategories(db *gorm.DB, documentID uint, links []models.DocumentCategory) error
	ReplaceTags(db *gorm.DB, doc *models.Document, tags []models.Tag) error
}

type documentRepository struct{}

func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

func (r *documentRepository) FindByID(db *gorm.DB, id uint) (*models.Document, error) {
	var d models.Document
	err := db.Preload("Tags").
		Preload("CategoryLinks", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Preload("CategoryLinks.Category").
		First(&d, id).Error
	if err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	return &d, nil
}

func (r *documentRepository) FindByRefToken(db *gorm.DB, token string) (*models.Document, error) {
	var d models.Document
	if err := db.Where("ref_token = ?", token).First(&d).Error; err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	return &d, nil
}

func searchDocuments(q *gorm.DB, query string) *gorm.DB {
	if query == "" {
		return q
	}
	p := likePattern(query)
	return q.Where("(documents.title LIKE ? OR documents.description LIKE ? OR documents.fulltext_search_data LIKE ?)", p, p, p)
}

func (r *documentRepository) FindByCategory(db *gorm.DB, filter MediaFilter) ([]models.Document, error) {
	var out []models.Document
	q := db.Model(&models.Document{}).
		Joins("JOIN document_categories ON document_categories.document_id = documents.id").
		Where("document_categories.category_id = ?", filter.CategoryID).
		Order("document_categories.sort_order ASC").Order("documents.title ASC")
	if filter.EnabledOnly {
		q = q.Where("documents.enabled = ?", true)
	}
	q = searchDocuments(q, filter.Query)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepository) List(db *gorm.DB, filter MediaFilter, page Page) ([]models.Document, int64, error) {
	q := db.Model(&models.Document{})
	if filter.CategoryID != 0 {
		q = q.Where("documents.id IN (?)", db.Model(&models.DocumentCategory{}).Select("document_id").Where("category_id = ?", filter.CategoryID))
	}
	if filter.EnabledOnly {
		q = q.Where("documents.enabled = ?", true)
	}
	q = searchDocuments(q, filter.Query)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Document
	if err := page.apply(q).Preload("Tags").Order("documents.created_at DESC").Order("documents.id DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *documentRepository) Create(db *gorm.DB, doc *models.Document) error {
	return duplicate(db.Omit("Tags", "CategoryLinks").Create(doc).Error)
}

func (r *documentRepository) Save(db *gorm.DB, doc *models.Document) error {
	return duplicate(db.Omit("Tags", "CategoryLinks").Save(doc).Error)
}

func (r *documentRepository) UpdateColumns(db *gorm.DB, id uint, values map[string]interface{}) error {
	// MySQL counts changed rows only, so RowsAffected is not checked.
	return db.Model(&models.Document{}).Where("id = ?", id).UpdateColumns(values).Error
}

func (r *documentRepository) Delete(db *gorm.DB, id uint) error {
	d := models.Document{BaseModel: models.BaseModel{ID: id}}
	if err := db.Model(&d).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := db.Where("document_id = ?", id).Delete(&models.DocumentCategory{}).Error; err != nil {
		return err
	}
	if err := db.Where("document_id = ?", id).Delete(&models.VideoDocument{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) ReplaceCategories(db *gorm.DB, documentID uint, links []models.DocumentCategory) error {
	if err := db.Where("document_id = ?", documentID).Delete(&models.DocumentCategory{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		links[i].ID = 0
		links[i].DocumentID = documentID
	}
	return duplicate(db.Create(&links).Error)
}

func (r *documentRepository) ReplaceTags(db *gorm.DB, doc *models.Document, tags []models.Tag) error {
	return db.Model(doc).Association("Tags").Replace(tags)
}
