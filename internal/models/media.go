package models

import (
	"path/filepath"
	"strings"

	"gorm.io/datatypes"
)

// Media holds the columns shared by videos and documents.
type Media struct {
	Title        string     `gorm:"size:255;not null;index" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Enabled      bool       `gorm:"default:true;index" json:"enabled"`
	RefToken     string     `gorm:"size:36;uniqueIndex;not null" json:"ref_token"`
	StructureID  *uint      `gorm:"index" json:"structure_id"`
	Structure    *Structure `gorm:"constraint:OnDelete:SET NULL" json:"structure,omitempty"`
	PreviewImage string     `gorm:"size:512" json:"preview_image"`
}

type Tag struct {
	ID  uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Tag string `gorm:"size:255;uniqueIndex;not null" json:"tag"`
}

func (t *Tag) String() string {
	return t.Tag
}

type Video struct {
	BaseModel
	Media
	VideoFile                string         `gorm:"size:512" json:"video_file"`
	Duration                 int            `gorm:"default:0" json:"duration"` // seconds
	StartTime                int            `gorm:"default:0" json:"start_time"`
	StopTime                 int            `gorm:"default:0" json:"stop_time"`
	Width                    int            `gorm:"default:0" json:"width"`
	Height                   int            `gorm:"default:0" json:"height"`
	ProbeData                datatypes.JSON `json:"probe_data,omitempty"`
	IsTranscriptionAvailable bool           `gorm:"default:false" json:"is_transcription_available"`
	RawTranscriptionFile     string         `gorm:"size:512" json:"raw_transcription_file"`
	FulltextSearchData       string         `json:"-"`
	CoverImageID             *uint          `json:"cover_image_id"`

	Tags          []Tag                   `gorm:"many2many:video_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	CategoryLinks []VideoCategory         `gorm:"foreignKey:VideoID" json:"categories,omitempty"`
	DocumentLinks []VideoDocument         `gorm:"foreignKey:VideoID" json:"documents,omitempty"`
	Pills         []VideoPill             `gorm:"foreignKey:VideoID" json:"pills,omitempty"`
	Previews      []AutomaticPreviewImage `gorm:"foreignKey:VideoID" json:"previews,omitempty"`
}

func (v *Video) String() string {
	return v.Title
}

// NeedsProbe reports whether technical metadata still has to be read from
// the file.
func (v *Video) NeedsProbe() bool {
	return v.VideoFile != "" && v.Duration == 0 && v.StopTime == 0
}

// NeedsTranscriptionIndex reports whether the VTT file should be indexed.
func (v *Video) NeedsTranscriptionIndex() bool {
	return v.IsTranscriptionAvailable && v.RawTranscriptionFile != ""
}

type Document struct {
	BaseModel
	Media
	DocumentFile       string `gorm:"size:512" json:"document_file"`
	FulltextSearchData string `json:"-"`

	Tags          []Tag              `gorm:"many2many:document_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	CategoryLinks []DocumentCategory `gorm:"foreignKey:DocumentID" json:"categories,omitempty"`
}

func (d *Document) String() string {
	return d.Title
}

func (d *Document) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(d.DocumentFile), ".pdf")
}

// NeedsPreview reports whether a first-page preview should be rendered.
func (d *Document) NeedsPreview() bool {
	return d.PreviewImage == "" && d.IsPDF()
}

// VideoCategory is the ordered video/category through table.
type VideoCategory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	VideoID    uint      `gorm:"not null;uniqueIndex:idx_video_category" json:"video_id"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_video_category;index" json:"category_id"`
	SortOrder  int       `gorm:"default:0" json:"order"`
	Video      *Video    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category   *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

type DocumentCategory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	DocumentID uint      `gorm:"not null;uniqueIndex:idx_document_category" json:"document_id"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_document_category;index" json:"category_id"`
	SortOrder  int       `gorm:"default:0" json:"order"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category   *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

// VideoDocument attaches supporting documents to a video.
type VideoDocument struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	VideoID    uint      `gorm:"not null;uniqueIndex:idx_video_document" json:"video_id"`
	DocumentID uint      `gorm:"not null;uniqueIndex:idx_video_document" json:"document_id"`
	SortOrder  int       `gorm:"default:0" json:"order"`
	Video      *Video    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE" json:"document,omitempty"`
}

// VideoPill marks a highlighted segment of a video, in seconds.
type VideoPill struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   uint   `gorm:"not null;index" json:"video_id"`
	Video     *Video `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title     string `gorm:"size:255" json:"title"`
	StartTime int    `json:"start_time"`
	StopTime  int    `json:"stop_time"`
}

// AutomaticPreviewImage is a frame grabbed from a video.
type AutomaticPreviewImage struct {
	BaseModel
	VideoID     uint   `gorm:"not null;index" json:"video_id"`
	Video       *Video `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ImagePath   string `gorm:"size:512;not null" json:"image_path"`
	FrameSecond int    `json:"frame_second"`
}
