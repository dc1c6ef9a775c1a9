package repositories

import (
	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
)

type PlaylistRepository interface {
	Create(db *gorm.DB, playlist *models.Playlist) error
	FindByID(db *gorm.DB, id uint) (*models.Playlist, error)
	// AddVideo appends video to the playlist at the given position.
	AddVideo(db *gorm.DB, item *models.PlaylistVideo) error
	List(db *gorm.DB, enabledOnly bool) ([]models.Playlist, error)
	Delete(db *gorm.DB, id uint) error
}

type playlistRepository struct{}

func NewPlaylistRepository() PlaylistRepository {
	return &playlistRepository{}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC").Order("id ASC") }).
		Preload("Items.Video")
}

func (r *playlistRepository) Create(db *gorm.DB, playlist *models.Playlist) error {
	return db.Omit("Items").Create(playlist).Error
}

func (r *playlistRepository) FindByID(db *gorm.DB, id uint) (*models.Playlist, error) {
	var p models.Playlist
	if err := preloadItems(db).First(&p, id).Error; err != nil {
		return nil, notFound(err, ErrPlaylistNotFound)
	}
	return &p, nil
}

func (r *playlistRepository) AddVideo(db *gorm.DB, item *models.PlaylistVideo) error {
	var count int64
	if err := db.Model(&models.Playlist{}).Where("id = ?", item.PlaylistID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPlaylistNotFound
	}
	return db.Create(item).Error
}

func (r *playlistRepository) List(db *gorm.DB, enabledOnly bool) ([]models.Playlist, error) {
	var out []models.Playlist
	q := preloadItems(db).Order("name ASC")
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playlistRepository) Delete(db *gorm.DB, id uint) error {
	if err := db.Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.Playlist{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
