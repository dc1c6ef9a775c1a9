package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

// MediaFilter narrows video and document listings.
type MediaFilter struct {
	Query       string
	EnabledOnly bool
	CategoryID  uint
}

type VideoRepository interface {
	FindByID(db *gorm.DB, id uint) (*models.Video, error)
	FindByRefToken(db *gorm.DB, token string) (*models.Video, error)
	// FindByCategory lists the videos linked to a category in through-table
	// order, then by title.
	FindByCategory(db *gorm.DB, filter MediaFilter) ([]models.Video, error)
	List(db *gorm.DB, filter MediaFilter, page Page) ([]models.Video, int64, error)
	Create(db *gorm.DB, video *models.Video) error
	Save(db *gorm.DB, video *models.Video) error
	UpdateColumns(db *gorm.DB, id uint, values map[string]interface{}) error
	Delete(db *gorm.DB, id uint) error

	ReplaceCategories(db *gorm.DB, videoID uint, links []models.VideoCategory) error
	ReplaceTags(db *gorm.DB, video *models.Video, tags []models.Tag) error
	AttachDocument(db *gorm.DB, link *models.VideoDocument) error

	CreatePreview(db *gorm.DB, preview *models.AutomaticPreviewImage) error
	ListPreviews(db *gorm.DB, videoID uint) ([]models.AutomaticPreviewImage, error)
	DeletePreviews(db *gorm.DB, videoID uint) error
	CreatePill(db *gorm.DB, pill *models.VideoPill) error
}

type videoRepository struct{}

func NewVideoRepository() VideoRepository {
	return &videoRepository{}
}

func preloadVideo(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags").
		Preload("CategoryLinks", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Preload("CategoryLinks.Category").
		Preload("DocumentLinks", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Preload("DocumentLinks.Document").
		Preload("Pills", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_time ASC") }).
		Preload("Previews", func(tx *gorm.DB) *gorm.DB { return tx.Order("frame_second ASC") })
}

func (r *videoRepository) FindByID(db *gorm.DB, id uint) (*models.Video, error) {
	var v models.Video
	if err := preloadVideo(db).First(&v, id).Error; err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	return &v, nil
}

func (r *videoRepository) FindByRefToken(db *gorm.DB, token string) (*models.Video, error) {
	var v models.Video
	if err := db.Where("ref_token = ?", token).First(&v).Error; err != nil {
		return nil, notFound(err, ErrVideoNotFound)
	}
	return &v, nil
}

func searchVideos(q *gorm.DB, query string) *gorm.DB {
	if query == "" {
		return q
	}
	p := likePattern(query)
	return q.Where("(videos.title LIKE ? OR videos.description LIKE ? OR videos.fulltext_search_data LIKE ?)", p, p, p)
}

func (r *videoRepository) FindByCategory(db *gorm.DB, filter MediaFilter) ([]models.Video, error) {
	var out []models.Video
	q := db.Model(&models.Video{}).
		Joins("JOIN video_categories ON video_categories.video_id = videos.id").
		Where("video_categories.category_id = ?", filter.CategoryID).
		Preload("Tags").
		Order("video_categories.sort_order ASC").Order("videos.title ASC")
	if filter.EnabledOnly {
		q = q.Where("videos.enabled = ?", true)
	}
	q = searchVideos(q, filter.Query)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepository) List(db *gorm.DB, filter MediaFilter, page Page) ([]models.Video, int64, error) {
	q := db.Model(&models.Video{})
	if filter.CategoryID != 0 {
		q = q.Where("videos.id IN (?)", db.Model(&models.VideoCategory{}).Select("video_id").Where("category_id = ?", filter.CategoryID))
	}
	if filter.EnabledOnly {
		q = q.Where("videos.enabled = ?", true)
	}
	q = searchVideos(q, filter.Query)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Video
	if err := page.apply(q).Preload("Tags").Order("videos.created_at DESC").Order("videos.id DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *videoRepository) Create(db *gorm.DB, video *models.Video) error {
	return duplicate(db.Omit("Tags", "CategoryLinks", "DocumentLinks", "Pills", "Previews").Create(video).Error)
}

func (r *videoRepository) Save(db *gorm.DB, video *models.Video) error {
	return duplicate(db.Omit("Tags", "CategoryLinks", "DocumentLinks", "Pills", "Previews").Save(video).Error)
}

func (r *videoRepository) UpdateColumns(db *gorm.DB, id uint, values map[string]interface{}) error {
	// MySQL counts changed rows only, so RowsAffected is not checked.
	return db.Model(&models.Video{}).Where("id = ?", id).UpdateColumns(values).Error
}

func (r *videoRepository) Delete(db *gorm.DB, id uint) error {
	v := models.Video{BaseModel: models.BaseModel{ID: id}}
	if err := db.Model(&v).Association("Tags").Clear(); err != nil {
		return err
	}
	dependents := []interface{}{
		&models.VideoCategory{},
		&models.VideoDocument{},
		&models.VideoPill{},
		&models.AutomaticPreviewImage{},
		&models.PlaylistVideo{},
		&models.VideoPlaybackEvent{},
		&models.VideoCounter{},
	}
	for _, dep := range dependents {
		if err := db.Where("video_id = ?", id).Delete(dep).Error; err != nil {
			return err
		}
	}
	result := db.Delete(&models.Video{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *videoRepository) ReplaceCategories(db *gorm.DB, videoID uint, links []models.VideoCategory) error {
	if err := db.Where("video_id = ?", videoID).Delete(&models.VideoCategory{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		links[i].ID = 0
		links[i].VideoID = videoID
	}
	return duplicate(db.Create(&links).Error)
}

func (r *videoRepository) ReplaceTags(db *gorm.DB, video *models.Video, tags []models.Tag) error {
	return db.Model(video).Association("Tags").Replace(tags)
}

func (r *videoRepository) AttachDocument(db *gorm.DB, link *models.VideoDocument) error {
	return duplicate(db.Create(link).Error)
}

func (r *videoRepository) CreatePreview(db *gorm.DB, preview *models.AutomaticPreviewImage) error {
	return db.Create(preview).Error
}

func (r *videoRepository) ListPreviews(db *gorm.DB, videoID uint) ([]models.AutomaticPreviewImage, error) {
	var out []models.AutomaticPreviewImage
	if err := db.Where("video_id = ?", videoID).Order("frame_second ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepository) DeletePreviews(db *gorm.DB, videoID uint) error {
	if err := db.Model(&models.Video{}).Where("id = ?", videoID).UpdateColumn("cover_image_id", nil).Error; err != nil {
		return err
	}
	return db.Where("video_id = ?", videoID).Delete(&models.AutomaticPreviewImage{}).Error
}

func (r *videoRepository) CreatePill(db *gorm.DB, pill *models.VideoPill) error {
	return db.Create(pill).Error
}
