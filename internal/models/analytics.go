package models

import "time"

// MessageLog stores request metadata for protected media downloads.
type MessageLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	OriginalURI   string    `gorm:"type:text" json:"original_uri"`
	HTTPReferer   string    `gorm:"type:text" json:"http_referer"`
	HTTPUserAgent string    `gorm:"type:text" json:"http_user_agent"`
	HTTPRealIP    string    `gorm:"size:64" json:"http_real_ip"`
	HTTPCookie    string    `gorm:"type:text" json:"http_cookie"`
}

type VideoPlaybackEvent struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID             uint      `gorm:"not null;index" json:"video_id"`
	Video               *Video    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IPAddress           string    `gorm:"size:64;index" json:"ip_address"`
	Timestamp           time.Time `gorm:"not null;index" json:"timestamp"`
	IsUserAuthenticated bool      `gorm:"default:false" json:"is_user_authenticated"`
	Username            string    `gorm:"size:255" json:"username"`
}

// VideoCounter is the running total of playback events per video.
type VideoCounter struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID              uint   `gorm:"not null;uniqueIndex" json:"video_id"`
	Video                *Video `gorm:"constraint:OnDelete:CASCADE" json:"video,omitempty"`
	PlaybackEventCounter int64  `gorm:"default:0" json:"playback_event_counter"`
}
