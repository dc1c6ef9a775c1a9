package models

import (
	"time"
)

// BaseModel is embedded by every table; ids are auto-increment integers.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// All lists the tables managed by migrations, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Person{},
		&Structure{},
		&Category{},
		&Tag{},
		&Video{},
		&Document{},
		&AutomaticPreviewImage{},
		&VideoCategory{},
		&DocumentCategory{},
		&VideoDocument{},
		&VideoPill{},
		&Playlist{},
		&PlaylistVideo{},
		&MessageLog{},
		&VideoPlaybackEvent{},
		&VideoCounter{},
		&InformationEvent{},
		&Subscriber{},
		&EventParticipation{},
		&EventLog{},
	}
}
