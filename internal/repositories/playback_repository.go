package repositories

import (
	"time"

	"mediamatrixhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaybackView is one raw playback row used for unique-view statistics.
type PlaybackView struct {
	VideoID   uint
	Title     string
	IPAddress string
	Timestamp time.Time
}

// VideoCount pairs a video with an aggregate.
type VideoCount struct {
	VideoID uint   `json:"video_id"`
	Title   string `json:"title"`
	Count   int64  `json:"count"`
}

type PlaybackRepository interface {
	CreateEvent(db *gorm.DB, event *models.VideoPlaybackEvent) error
	// IncrementCounter adds one to the video's counter, creating it on first use.
	IncrementCounter(db *gorm.DB, videoID uint) error
	// Views lists the playback rows of videos in the named category with the
	// given authenticated flag, ordered by video id.
	Views(db *gorm.DB, categoryName string, authenticated bool) ([]PlaybackView, error)
	DistinctIPsPerVideo(db *gorm.DB) ([]VideoCount, error)
	EventsPerVideo(db *gorm.DB) ([]VideoCount, error)
	Counters(db *gorm.DB) ([]models.VideoCounter, error)

	CreateMessageLog(db *gorm.DB, entry *models.MessageLog) error
	// MessageLogs lists entries created in [from, to). Zero bounds are open.
	MessageLogs(db *gorm.DB, from, to time.Time) ([]models.MessageLog, error)
}

type playbackRepository struct{}

func NewPlaybackRepository() PlaybackRepository {
	return &playbackRepository{}
}

func (r *playbackRepository) CreateEvent(db *gorm.DB, event *models.VideoPlaybackEvent) error {
	return db.Omit("Video").Create(event).Error
}

func (r *playbackRepository) IncrementCounter(db *gorm.DB, videoID uint) error {
	counter := models.VideoCounter{VideoID: videoID, PlaybackEventCounter: 1}
	return db.Omit("Video").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"playback_event_counter": gorm.Expr("video_counters.playback_event_counter + 1"),
		}),
	}).Create(&counter).Error
}

func (r *playbackRepository) Views(db *gorm.DB, categoryName string, authenticated bool) ([]PlaybackView, error) {
	var out []PlaybackView
	q := db.Table("video_playback_events AS e").
		Select("e.video_id AS video_id, v.title AS title, e.ip_address AS ip_address, e.timestamp AS timestamp").
		Joins("JOIN videos v ON v.id = e.video_id").
		Where("e.is_user_authenticated = ?", authenticated)
	if categoryName != "" {
		q = q.Where("e.video_id IN (?)",
			db.Table("video_categories AS vc").
				Select("vc.video_id").
				Joins("JOIN categories c ON c.id = vc.category_id").
				Where("c.name = ?", categoryName))
	}
	if err := q.Order("e.video_id ASC").Order("e.timestamp ASC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playbackRepository) DistinctIPsPerVideo(db *gorm.DB) ([]VideoCount, error) {
	var out []VideoCount
	err := db.Table("video_playback_events AS e").
		Select("e.video_id AS video_id, v.title AS title, COUNT(DISTINCT e.ip_address) AS count").
		Joins("JOIN videos v ON v.id = e.video_id").
		Group("e.video_id, v.title").
		Order("e.video_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playbackRepository) EventsPerVideo(db *gorm.DB) ([]VideoCount, error) {
	var out []VideoCount
	err := db.Table("video_playback_events AS e").
		Select("e.video_id AS video_id, v.title AS title, COUNT(*) AS count").
		Joins("JOIN videos v ON v.id = e.video_id").
		Group("e.video_id, v.title").
		Order("e.video_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playbackRepository) Counters(db *gorm.DB) ([]models.VideoCounter, error) {
	var out []models.VideoCounter
	if err := db.Preload("Video").Order("playback_event_counter DESC").Order("video_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playbackRepository) CreateMessageLog(db *gorm.DB, entry *models.MessageLog) error {
	return db.Create(entry).Error
}

func (r *playbackRepository) MessageLogs(db *gorm.DB, from, to time.Time) ([]models.MessageLog, error) {
	var out []models.MessageLog
	q := db.Order("created_at ASC").Order("id ASC")
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
