package services

import (
	"strings"

	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"gorm.io/gorm"
)

// GalleryService backs the public category pages.
type GalleryService interface {
	CategoryGallery(db *gorm.DB, name string) (*dto.GalleryPage, error)
	SearchCategory(db *gorm.DB, name, query string) (*dto.GalleryPage, error)
}

type GalleryServiceImpl struct {
	categoryRepo repositories.CategoryRepository
	videoRepo    repositories.VideoRepository
	documentRepo repositories.DocumentRepository
}

func NewGalleryService(
	categoryRepo repositories.CategoryRepository,
	videoRepo repositories.VideoRepository,
	documentRepo repositories.DocumentRepository,
) GalleryService {
	return &GalleryServiceImpl{
		categoryRepo: categoryRepo,
		videoRepo:    videoRepo,
		documentRepo: documentRepo,
	}
}

func (s *GalleryServiceImpl) CategoryGallery(db *gorm.DB, name string) (*dto.GalleryPage, error) {
	return s.SearchCategory(db, name, "")
}

func (s *GalleryServiceImpl) SearchCategory(db *gorm.DB, name, query string) (*dto.GalleryPage, error) {
	category, err := s.categoryRepo.FindByName(db, name)
	if err != nil {
		return nil, categoryError(err)
	}

	query = strings.TrimSpace(query)
	filter := repositories.MediaFilter{CategoryID: category.ID, EnabledOnly: true, Query: query}

	videos, err := s.videoRepo.FindByCategory(db, filter)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	documents, err := s.documentRepo.FindByCategory(db, filter)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.GalleryPage{
		Category:  category,
		Videos:    videos,
		Documents: documents,
		Query:     query,
	}, nil
}
