package services

import (
	"time"

	"mediamatrixhub/internal/auth"
	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/email"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/storage"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	CategoryService     CategoryService
	GalleryService      GalleryService
	MediaService        MediaService
	PlaybackService     PlaybackService
	AuthService         AuthService
	RegistrationService RegistrationService
	NotificationService NotificationService
	EmailService        email.Provider
	Tokens              *auth.TokenManager
	Storage             storage.Storage
}

// Dependencies are the external collaborators services are built from.
type Dependencies struct {
	Config   *config.Config
	Storage  storage.Storage
	Mailer   email.Provider
	Tools    MediaTools
	Location *time.Location
}

// NewServiceContainer wires repositories into services.
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	cfg := deps.Config
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}

	categoryRepo := repositories.NewCategoryRepository()
	videoRepo := repositories.NewVideoRepository()
	documentRepo := repositories.NewDocumentRepository()
	tagRepo := repositories.NewTagRepository()
	playlistRepo := repositories.NewPlaylistRepository()
	playbackRepo := repositories.NewPlaybackRepository()
	userRepo := repositories.NewUserRepository()
	subscriberRepo := repositories.NewSubscriberRepository()
	eventRepo := repositories.NewEventRepository()
	participationRepo := repositories.NewParticipationRepository()
	eventLogRepo := repositories.NewEventLogRepository()

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.ApplicationTitle)

	return &ServiceContainer{
		CategoryService: NewCategoryService(categoryRepo),
		GalleryService:  NewGalleryService(categoryRepo, videoRepo, documentRepo),
		MediaService: NewMediaService(videoRepo, documentRepo, categoryRepo, tagRepo, playlistRepo,
			deps.Storage, deps.Tools, cfg.Media),
		PlaybackService: NewPlaybackService(playbackRepo, videoRepo, loc),
		AuthService:     NewAuthService(userRepo, tokens, time.Duration(cfg.JWT.TTL)*time.Minute),
		RegistrationService: NewRegistrationService(subscriberRepo, eventRepo, participationRepo, eventLogRepo, tokens,
			RegistrationSettings{
				SessionTTL:   time.Duration(cfg.JWT.SubscriberTTLHours) * time.Hour,
				CalendarHost: CalendarHost(cfg.Server.BaseURL),
				Organizer:    cfg.Email.FromEmail,
				Location:     loc,
			}),
		NotificationService: NewNotificationService(eventRepo, participationRepo, eventLogRepo, deps.Mailer, cfg, loc),
		EmailService:        deps.Mailer,
		Tokens:              tokens,
		Storage:             deps.Storage,
	}
}
