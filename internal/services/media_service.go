package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/mediatools"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/internal/storage"
	"mediamatrixhub/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MediaKindVideo    = "video"
	MediaKindDocument = "document"
)

// Upload fields accepted by UploadVideoFile and UploadDocumentFile.
const (
	FieldVideo         = "video"
	FieldTranscription = "transcription"
	FieldPreview       = "preview"
	FieldDocument      = "document"
)

var allowedExtensions = map[string][]string{
	FieldVideo:         {".mp4", ".m4v", ".mov", ".webm", ".mkv"},
	FieldTranscription: {".vtt"},
	FieldPreview:       {".jpg", ".jpeg", ".png"},
	FieldDocument:      {".pdf", ".doc", ".docx", ".odt", ".ppt", ".pptx", ".xls", ".xlsx", ".txt"},
}

// MediaJob asks the media worker to run the save hooks of one record.
type MediaJob struct {
	Kind  string
	ID    uint
	Force bool
}

// MediaQueue accepts hook jobs for asynchronous processing.
type MediaQueue interface {
	Enqueue(job MediaJob) error
}

type VideoProber interface {
	Probe(ctx context.Context, path string) (*mediatools.ProbeResult, error)
}

type FrameGrabber interface {
	Extract(ctx context.Context, path string, second int, out string) error
}

type PageRenderer interface {
	RenderFirstPage(ctx context.Context, path string, dpi int, out string) error
}

type ImageResizer interface {
	ProcessFile(in, out string) error
}

// MediaTools bundles the external programs used by the save hooks.
type MediaTools struct {
	Prober  VideoProber
	Frames  FrameGrabber
	Pages   PageRenderer
	PDFText func(path string) (string, error)
	Images  ImageResizer
}

// FileUpload is a file received from a client.
type FileUpload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type MediaService interface {
	ListVideos(db *gorm.DB, filter repositories.MediaFilter, page repositories.Page) ([]models.Video, int64, error)
	GetVideo(db *gorm.DB, id uint) (*models.Video, error)
	CreateVideo(ctx context.Context, db *gorm.DB, req *dto.VideoRequest) (*models.Video, error)
	UpdateVideo(ctx context.Context, db *gorm.DB, id uint, req *dto.VideoRequest) (*models.Video, error)
	DeleteVideo(ctx context.Context, db *gorm.DB, id uint) error
	UploadVideoFile(ctx context.Context, db *gorm.DB, id uint, field string, file *FileUpload) (*models.Video, error)
	AddPill(db *gorm.DB, videoID uint, req *dto.PillRequest) (*models.VideoPill, error)
	AttachDocument(db *gorm.DB, videoID, documentID uint, order int) error

	ListDocuments(db *gorm.DB, filter repositories.MediaFilter, page repositories.Page) ([]models.Document, int64, error)
	GetDocument(db *gorm.DB, id uint) (*models.Document, error)
	CreateDocument(ctx context.Context, db *gorm.DB, req *dto.DocumentRequest) (*models.Document, error)
	UpdateDocument(ctx context.Context, db *gorm.DB, id uint, req *dto.DocumentRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, db *gorm.DB, id uint) error
	UploadDocumentFile(ctx context.Context, db *gorm.DB, id uint, field string, file *FileUpload) (*models.Document, error)

	CreatePlaylist(db *gorm.DB, req *dto.PlaylistRequest) (*models.Playlist, error)
	GetPlaylist(db *gorm.DB, id uint) (*models.Playlist, error)
	ListPlaylists(db *gorm.DB, enabledOnly bool) ([]models.Playlist, error)
	AddToPlaylist(db *gorm.DB, playlistID uint, req *dto.PlaylistItemRequest) (*models.Playlist, error)
	DeletePlaylist(db *gorm.DB, id uint) error

	// FileURL resolves a ref token to the storage URL of its file.
	FileURL(ctx context.Context, db *gorm.DB, refToken string) (string, error)

	ProcessVideo(ctx context.Context, db *gorm.DB, id uint, force bool) (*dto.ProcessReport, error)
	ProcessDocument(ctx context.Context, db *gorm.DB, id uint, force bool) (*dto.ProcessReport, error)
	Process(ctx context.Context, db *gorm.DB, job MediaJob) (*dto.ProcessReport, error)
	SetQueue(queue MediaQueue)
}

type MediaServiceImpl struct {
	videoRepo    repositories.VideoRepository
	documentRepo repositories.DocumentRepository
	categoryRepo repositories.CategoryRepository
	tagRepo      repositories.TagRepository
	playlistRepo repositories.PlaylistRepository
	storage      storage.Storage
	tools        MediaTools
	cfg          config.MediaConfig

	mu    sync.RWMutex
	queue MediaQueue
}

func NewMediaService(
	videoRepo repositories.VideoRepository,
	documentRepo repositories.DocumentRepository,
	categoryRepo repositories.CategoryRepository,
	tagRepo repositories.TagRepository,
	playlistRepo repositories.PlaylistRepository,
	st storage.Storage,
	tools MediaTools,
	cfg config.MediaConfig,
) MediaService {
	return &MediaServiceImpl{
		videoRepo:    videoRepo,
		documentRepo: documentRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		playlistRepo: playlistRepo,
		storage:      st,
		tools:        tools,
		cfg:          cfg,
	}
}

func (s *MediaServiceImpl) SetQueue(queue MediaQueue) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

// --- Videos ---

func (s *MediaServiceImpl) ListVideos(db *gorm.DB, filter repositories.MediaFilter, page repositories.Page) ([]models.Video, int64, error) {
	videos, total, err := s.videoRepo.List(db, filter, page)
	if err != nil {
		return nil, 0, apperrors.DatabaseError(err)
	}
	return videos, total, nil
}

func (s *MediaServiceImpl) GetVideo(db *gorm.DB, id uint) (*models.Video, error) {
	v, err := s.videoRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	return v, nil
}

func (s *MediaServiceImpl) CreateVideo(ctx context.Context, db *gorm.DB, req *dto.VideoRequest) (*models.Video, error) {
	v := &models.Video{
		Media: models.Media{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Enabled:     true,
			RefToken:    uuid.NewString(),
			StructureID: req.StructureID,
		},
		StartTime:                req.StartTime,
		StopTime:                 req.StopTime,
		IsTranscriptionAvailable: req.IsTranscriptionAvailable,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.videoRepo.Create(tx, v); err != nil {
			return err
		}
		if req.Enabled != nil && !*req.Enabled {
			if err := s.videoRepo.UpdateColumns(tx, v.ID, map[string]interface{}{"enabled": false}); err != nil {
				return err
			}
		}
		return s.linkVideo(tx, v, req)
	})
	if err != nil {
		return nil, mediaError(err)
	}
	logger.CtxInfo(ctx, "video created", "video_id", v.ID, "ref_token", v.RefToken)
	created, err := s.GetVideo(db, v.ID)
	if err != nil {
		return nil, err
	}
	s.afterVideoSave(ctx, db, created, false)
	return created, nil
}

func (s *MediaServiceImpl) UpdateVideo(ctx context.Context, db *gorm.DB, id uint, req *dto.VideoRequest) (*models.Video, error) {
	v, err := s.videoRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}

	v.Title = strings.TrimSpace(req.Title)
	v.Description = req.Description
	if req.Enabled != nil {
		v.Enabled = *req.Enabled
	}
	v.StructureID = req.StructureID
	v.StartTime = req.StartTime
	v.StopTime = req.StopTime
	v.IsTranscriptionAvailable = req.IsTranscriptionAvailable

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.videoRepo.Save(tx, v); err != nil {
			return err
		}
		return s.linkVideo(tx, v, req)
	})
	if err != nil {
		return nil, mediaError(err)
	}

	updated, err := s.GetVideo(db, id)
	if err != nil {
		return nil, err
	}
	s.afterVideoSave(ctx, db, updated, false)
	return updated, nil
}

func (s *MediaServiceImpl) linkVideo(tx *gorm.DB, v *models.Video, req *dto.VideoRequest) error {
	if req.Categories != nil {
		links := make([]models.VideoCategory, 0, len(req.Categories))
		for _, l := range req.Categories {
			if _, err := s.categoryRepo.FindByID(tx, l.CategoryID); err != nil {
				return err
			}
			links = append(links, models.VideoCategory{CategoryID: l.CategoryID, SortOrder: l.Order})
		}
		if err := s.videoRepo.ReplaceCategories(tx, v.ID, links); err != nil {
			return err
		}
	}
	if req.Tags != nil {
		tags, err := s.tagRepo.FindOrCreate(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := s.videoRepo.ReplaceTags(tx, v, tags); err != nil {
			return err
		}
	}
	return nil
}

func (s *MediaServiceImpl) DeleteVideo(ctx context.Context, db *gorm.DB, id uint) error {
	v, err := s.videoRepo.FindByID(db, id)
	if err != nil {
		return mediaError(err)
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return s.videoRepo.Delete(tx, id)
	}); err != nil {
		return mediaError(err)
	}

	keys := []string{v.VideoFile, v.RawTranscriptionFile, v.PreviewImage}
	for _, p := range v.Previews {
		keys = append(keys, p.ImagePath)
	}
	s.removeFiles(ctx, keys...)
	logger.CtxInfo(ctx, "video deleted", "video_id", id)
	return nil
}

func (s *MediaServiceImpl) UploadVideoFile(ctx context.Context, db *gorm.DB, id uint, field string, file *FileUpload) (*models.Video, error) {
	v, err := s.videoRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	if field != FieldVideo && field != FieldTranscription && field != FieldPreview {
		return nil, apperrors.NewBadRequestError("unknown upload field " + field)
	}

	var key string
	switch field {
	case FieldPreview:
		key, err = s.storePreview(ctx, path.Join("previews", "videos", v.RefToken), file)
	default:
		key, err = s.storeUpload(ctx, path.Join(field+"s", v.RefToken), field, file)
	}
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	var old string
	force := false
	switch field {
	case FieldVideo:
		old = v.VideoFile
		values["video_file"] = key
		values["duration"] = 0
		values["width"] = 0
		values["height"] = 0
		if v.StopTime == v.Duration {
			values["stop_time"] = 0
		}
		force = true
	case FieldTranscription:
		old = v.RawTranscriptionFile
		values["raw_transcription_file"] = key
		values["is_transcription_available"] = true
	case FieldPreview:
		old = v.PreviewImage
		values["preview_image"] = key
	}
	if err := s.videoRepo.UpdateColumns(db, id, values); err != nil {
		return nil, mediaError(err)
	}
	if old != "" && old != key {
		s.removeFiles(ctx, old)
	}

	updated, err := s.GetVideo(db, id)
	if err != nil {
		return nil, err
	}
	s.afterVideoSave(ctx, db, updated, force)
	return updated, nil
}

func (s *MediaServiceImpl) AddPill(db *gorm.DB, videoID uint, req *dto.PillRequest) (*models.VideoPill, error) {
	if _, err := s.videoRepo.FindByID(db, videoID); err != nil {
		return nil, mediaError(err)
	}
	pill := &models.VideoPill{VideoID: videoID, Title: req.Title, StartTime: req.StartTime, StopTime: req.StopTime}
	if err := s.videoRepo.CreatePill(db, pill); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return pill, nil
}

func (s *MediaServiceImpl) AttachDocument(db *gorm.DB, videoID, documentID uint, order int) error {
	if _, err := s.videoRepo.FindByID(db, videoID); err != nil {
		return mediaError(err)
	}
	if _, err := s.documentRepo.FindByID(db, documentID); err != nil {
		return mediaError(err)
	}
	link := &models.VideoDocument{VideoID: videoID, DocumentID: documentID, SortOrder: order}
	if err := s.videoRepo.AttachDocument(db, link); err != nil {
		return mediaError(err)
	}
	return nil
}

// --- Documents ---

func (s *MediaServiceImpl) ListDocuments(db *gorm.DB, filter repositories.MediaFilter, page repositories.Page) ([]models.Document, int64, error) {
	docs, total, err := s.documentRepo.List(db, filter, page)
	if err != nil {
		return nil, 0, apperrors.DatabaseError(err)
	}
	return docs, total, nil
}

func (s *MediaServiceImpl) GetDocument(db *gorm.DB, id uint) (*models.Document, error) {
	d, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	return d, nil
}

func (s *MediaServiceImpl) CreateDocument(ctx context.Context, db *gorm.DB, req *dto.DocumentRequest) (*models.Document, error) {
	d := &models.Document{
		Media: models.Media{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Enabled:     true,
			RefToken:    uuid.NewString(),
			StructureID: req.StructureID,
		},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.documentRepo.Create(tx, d); err != nil {
			return err
		}
		if req.Enabled != nil && !*req.Enabled {
			if err := s.documentRepo.UpdateColumns(tx, d.ID, map[string]interface{}{"enabled": false}); err != nil {
				return err
			}
		}
		return s.linkDocument(tx, d, req)
	})
	if err != nil {
		return nil, mediaError(err)
	}
	logger.CtxInfo(ctx, "document created", "document_id", d.ID, "ref_token", d.RefToken)
	return s.GetDocument(db, d.ID)
}

func (s *MediaServiceImpl) UpdateDocument(ctx context.Context, db *gorm.DB, id uint, req *dto.DocumentRequest) (*models.Document, error) {
	d, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	d.Title = strings.TrimSpace(req.Title)
	d.Description = req.Description
	if req.Enabled != nil {
		d.Enabled = *req.Enabled
	}
	d.StructureID = req.StructureID

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.documentRepo.Save(tx, d); err != nil {
			return err
		}
		return s.linkDocument(tx, d, req)
	})
	if err != nil {
		return nil, mediaError(err)
	}
	updated, err := s.GetDocument(db, id)
	if err != nil {
		return nil, err
	}
	s.afterDocumentSave(ctx, db, updated, false)
	return updated, nil
}

func (s *MediaServiceImpl) linkDocument(tx *gorm.DB, d *models.Document, req *dto.DocumentRequest) error {
	if req.Categories != nil {
		links := make([]models.DocumentCategory, 0, len(req.Categories))
		for _, l := range req.Categories {
			if _, err := s.categoryRepo.FindByID(tx, l.CategoryID); err != nil {
				return err
			}
			links = append(links, models.DocumentCategory{CategoryID: l.CategoryID, SortOrder: l.Order})
		}
		if err := s.documentRepo.ReplaceCategories(tx, d.ID, links); err != nil {
			return err
		}
	}
	if req.Tags != nil {
		tags, err := s.tagRepo.FindOrCreate(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := s.documentRepo.ReplaceTags(tx, d, tags); err != nil {
			return err
		}
	}
	return nil
}

func (s *MediaServiceImpl) DeleteDocument(ctx context.Context, db *gorm.DB, id uint) error {
	d, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		return mediaError(err)
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return s.documentRepo.Delete(tx, id)
	}); err != nil {
		return mediaError(err)
	}
	s.removeFiles(ctx, d.DocumentFile, d.PreviewImage)
	logger.CtxInfo(ctx, "document deleted", "document_id", id)
	return nil
}

func (s *MediaServiceImpl) UploadDocumentFile(ctx context.Context, db *gorm.DB, id uint, field string, file *FileUpload) (*models.Document, error) {
	d, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}

	var key, old string
	values := map[string]interface{}{}
	force := false
	switch field {
	case FieldDocument:
		key, err = s.storeUpload(ctx, path.Join("documents", d.RefToken), field, file)
		if err != nil {
			return nil, err
		}
		old = d.DocumentFile
		values["document_file"] = key
		values["fulltext_search_data"] = ""
		force = true
	case FieldPreview:
		key, err = s.storePreview(ctx, path.Join("previews", "documents", d.RefToken), file)
		if err != nil {
			return nil, err
		}
		old = d.PreviewImage
		values["preview_image"] = key
	default:
		return nil, apperrors.NewBadRequestError("unknown upload field " + field)
	}

	if err := s.documentRepo.UpdateColumns(db, id, values); err != nil {
		return nil, mediaError(err)
	}
	if old != "" && old != key {
		s.removeFiles(ctx, old)
	}

	updated, err := s.GetDocument(db, id)
	if err != nil {
		return nil, err
	}
	s.afterDocumentSave(ctx, db, updated, force)
	return updated, nil
}

// --- Playlists ---

func (s *MediaServiceImpl) CreatePlaylist(db *gorm.DB, req *dto.PlaylistRequest) (*models.Playlist, error) {
	p := &models.Playlist{Name: strings.TrimSpace(req.Name), Description: req.Description, Enabled: true}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.playlistRepo.Create(tx, p); err != nil {
			return err
		}
		if req.Enabled != nil && !*req.Enabled {
			if err := tx.Model(p).Update("enabled", false).Error; err != nil {
				return err
			}
		}
		for i, videoID := range req.VideoIDs {
			if _, err := s.videoRepo.FindByID(tx, videoID); err != nil {
				return err
			}
			if err := s.playlistRepo.AddVideo(tx, &models.PlaylistVideo{PlaylistID: p.ID, VideoID: videoID, SortOrder: i}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mediaError(err)
	}
	return s.GetPlaylist(db, p.ID)
}

func (s *MediaServiceImpl) GetPlaylist(db *gorm.DB, id uint) (*models.Playlist, error) {
	p, err := s.playlistRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	return p, nil
}

func (s *MediaServiceImpl) ListPlaylists(db *gorm.DB, enabledOnly bool) ([]models.Playlist, error) {
	out, err := s.playlistRepo.List(db, enabledOnly)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return out, nil
}

func (s *MediaServiceImpl) AddToPlaylist(db *gorm.DB, playlistID uint, req *dto.PlaylistItemRequest) (*models.Playlist, error) {
	if _, err := s.videoRepo.FindByID(db, req.VideoID); err != nil {
		return nil, mediaError(err)
	}
	item := &models.PlaylistVideo{PlaylistID: playlistID, VideoID: req.VideoID, SortOrder: req.Order}
	if err := s.playlistRepo.AddVideo(db, item); err != nil {
		return nil, mediaError(err)
	}
	return s.GetPlaylist(db, playlistID)
}

func (s *MediaServiceImpl) DeletePlaylist(db *gorm.DB, id uint) error {
	if err := s.playlistRepo.Delete(db, id); err != nil {
		return mediaError(err)
	}
	return nil
}

func (s *MediaServiceImpl) FileURL(ctx context.Context, db *gorm.DB, refToken string) (string, error) {
	var key string
	if d, err := s.documentRepo.FindByRefToken(db, refToken); err == nil {
		key = d.DocumentFile
	} else if !errors.Is(err, repositories.ErrDocumentNotFound) {
		return "", apperrors.DatabaseError(err)
	} else if v, err := s.videoRepo.FindByRefToken(db, refToken); err == nil {
		key = v.VideoFile
	} else if errors.Is(err, repositories.ErrVideoNotFound) {
		return "", apperrors.ErrMediaNotFound
	} else {
		return "", apperrors.DatabaseError(err)
	}
	if key == "" {
		return "", apperrors.ErrMediaNotFound
	}
	u, err := s.storage.GetURL(ctx, key)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return u, nil
}

// --- Files ---

func checkUpload(field string, file *FileUpload, maxSize int64) (string, error) {
	if file == nil || file.Reader == nil {
		return "", apperrors.NewBadRequestError("file is required")
	}
	if maxSize > 0 && file.Size > maxSize {
		return "", apperrors.ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	for _, allowed := range allowedExtensions[field] {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
		"extension": ext,
		"allowed":   allowedExtensions[field],
	})
}

func (s *MediaServiceImpl) storeUpload(ctx context.Context, dir, field string, file *FileUpload) (string, error) {
	ext, err := checkUpload(field, file, s.cfg.MaxUploadSize)
	if err != nil {
		return "", err
	}
	key := path.Join(dir, uploadName(file.Name, ext))
	if err := s.storage.Save(ctx, key, file.Reader, mime.TypeByExtension(ext)); err != nil {
		return "", apperrors.InternalError(fmt.Errorf("store %s: %w", key, err))
	}
	return key, nil
}

// storePreview normalises an uploaded image through the resizer before
// storing it as JPEG.
func (s *MediaServiceImpl) storePreview(ctx context.Context, dir string, file *FileUpload) (string, error) {
	ext, err := checkUpload(FieldPreview, file, s.cfg.MaxUploadSize)
	if err != nil {
		return "", err
	}
	work, err := os.MkdirTemp("", "mmh-preview-*")
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	defer os.RemoveAll(work)

	in := filepath.Join(work, "upload"+ext)
	f, err := os.Create(in)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if _, err := io.Copy(f, file.Reader); err != nil {
		f.Close()
		return "", apperrors.InternalError(err)
	}
	if err := f.Close(); err != nil {
		return "", apperrors.InternalError(err)
	}

	out := filepath.Join(work, "preview.jpg")
	if err := s.tools.Images.ProcessFile(in, out); err != nil {
		return "", apperrors.ErrInvalidFileType.WithError(err)
	}
	key := path.Join(dir, uploadName(strings.TrimSuffix(file.Name, filepath.Ext(file.Name))+".jpg", ".jpg"))
	if err := storage.SaveFile(ctx, s.storage, key, out, "image/jpeg"); err != nil {
		return "", apperrors.InternalError(err)
	}
	return key, nil
}

// uploadName keeps a readable, storage-safe file name.
func uploadName(name, ext string) string {
	base := Slugify(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "file"
	}
	return base + "-" + uuid.NewString()[:8] + ext
}

func (s *MediaServiceImpl) removeFiles(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		removed, err := storage.DeleteIfExists(ctx, s.storage, key)
		if err != nil {
			logger.CtxWarn(ctx, "failed to remove media file", "key", key, "error", err.Error())
			continue
		}
		if removed {
			logger.CtxDebug(ctx, "media file removed", "key", key)
		}
	}
}

func mediaError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repositories.ErrVideoNotFound):
		return apperrors.ErrVideoNotFound
	case errors.Is(err, repositories.ErrDocumentNotFound):
		return apperrors.ErrDocumentNotFound
	case errors.Is(err, repositories.ErrPlaylistNotFound):
		return apperrors.ErrPlaylistNotFound
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.ErrCategoryNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.ErrAlreadyExists(err)
	default:
		return apperrors.DatabaseError(err)
	}
}
