package dto

import (
	"mediamatrixhub/internal/models"
)

type CategoryRequest struct {
	Name            string  `json:"name" binding:"required,max=255"`
	Description     string  `json:"description"`
	Slug            string  `json:"slug" binding:"omitempty,max=255"`
	ParentID        *uint   `json:"parent_id"`
	IsActive        *bool   `json:"is_active"`
	IconPath        string  `json:"icon_path"`
	Order           int     `json:"order"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
}

// CategoryNode is one level of the category forest.
type CategoryNode struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Order    int             `json:"order"`
	Children []*CategoryNode `json:"children,omitempty"`
}

// GalleryPage is what the public category pages render.
type GalleryPage struct {
	Category  *models.Category  `json:"category"`
	Videos    []models.Video    `json:"videos"`
	Documents []models.Document `json:"documents"`
	Query     string            `json:"query,omitempty"`
}

// CategoryLink places media inside a category at a position.
type CategoryLink struct {
	CategoryID uint `json:"category_id" binding:"required"`
	Order      int  `json:"order"`
}

type VideoRequest struct {
	Title                    string         `json:"title" binding:"required,max=255"`
	Description              string         `json:"description"`
	Enabled                  *bool          `json:"enabled"`
	StructureID              *uint          `json:"structure_id"`
	StartTime                int            `json:"start_time" binding:"gte=0"`
	StopTime                 int            `json:"stop_time" binding:"gte=0"`
	IsTranscriptionAvailable bool           `json:"is_transcription_available"`
	Categories               []CategoryLink `json:"categories"`
	Tags                     []string       `json:"tags"`
}

type DocumentRequest struct {
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description"`
	Enabled     *bool          `json:"enabled"`
	StructureID *uint          `json:"structure_id"`
	Categories  []CategoryLink `json:"categories"`
	Tags        []string       `json:"tags"`
}

type PlaylistRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled"`
	VideoIDs    []uint `json:"video_ids"`
}

type PlaylistItemRequest struct {
	VideoID uint `json:"video_id" binding:"required"`
	Order   int  `json:"order"`
}

type PillRequest struct {
	Title     string `json:"title" binding:"required"`
	StartTime int    `json:"start_time" binding:"gte=0"`
	StopTime  int    `json:"stop_time" binding:"gtefield=StartTime"`
}

// ListResponse wraps a page of results.
type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ProcessReport lists what a media hook pass changed.
type ProcessReport struct {
	Kind   string   `json:"kind"`
	ID     uint     `json:"id"`
	Steps  []string `json:"steps"`
	Errors []string `json:"errors,omitempty"`
}
