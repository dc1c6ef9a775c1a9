package models

type Playlist struct {
	BaseModel
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Enabled     bool            `gorm:"default:true" json:"enabled"`
	Items       []PlaylistVideo `gorm:"foreignKey:PlaylistID" json:"items,omitempty"`
}

type PlaylistVideo struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlaylistID uint      `gorm:"not null;index" json:"playlist_id"`
	Playlist   *Playlist `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	VideoID    uint      `gorm:"not null;index" json:"video_id"`
	Video      *Video    `gorm:"constraint:OnDelete:CASCADE" json:"video,omitempty"`
	SortOrder  int       `gorm:"default:0" json:"order"`
}
