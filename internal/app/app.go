package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mediamatrixhub/database"
	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/email"
	"mediamatrixhub/internal/handlers"
	"mediamatrixhub/internal/imageprocessor"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/mediatools"
	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/routes"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/storage"
	"mediamatrixhub/internal/validator"
	"mediamatrixhub/internal/web"
	"mediamatrixhub/internal/workers"
	"mediamatrixhub/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App is a wired instance: database, services and background workers.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Services *services.ServiceContainer
	Location *time.Location

	mediaWorker *workers.MediaWorker
}

// Run is the entry point of the web server.
func Run() {
	if err := Serve(""); err != nil {
		logger.Fatal("server stopped with error", "error", err)
	}
}

// Serve loads the configuration at configPath and serves HTTP until
// SIGINT or SIGTERM.
func Serve(configPath string) error {
	a, err := Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.AutoMigrate(a.DB); err != nil {
		return err
	}
	if _, err := a.Services.AuthService.SeedFirstAdmin(ctx, a.DB, a.Config.FirstAdminEmail, a.Config.FirstAdminPassword); err != nil {
		return fmt.Errorf("seed first admin: %w", err)
	}

	a.StartWorkers(ctx)

	router, err := SetupRouter(a.Config, a.DB, a.Services)
	if err != nil {
		return err
	}

	cfg := a.Config
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", address, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.Wait()
	return nil
}

// Bootstrap loads configuration, initialises logging and connects every
// dependency. The CLI commands share it with the server.
func Bootstrap(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	config.AppConfig = cfg
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env == "development")

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to local time zone", "error", err)
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg.Database, cfg.Server.Env == "development")
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	logger.Info("Database connected")

	container, err := NewServices(cfg, loc)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &App{Config: cfg, DB: db, Services: container, Location: loc}, nil
}

// NewServices connects storage and the mail gateway and builds every service.
func NewServices(cfg *config.Config, loc *time.Location) (*services.ServiceContainer, error) {
	storageInstance, err := storage.NewStorage(storage.FromConfig(cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	mailer := email.NewSMTPProvider(email.FromConfig(cfg.Email), templates)
	if err := mailer.Validate(); err != nil {
		logger.Warn("email gateway misconfigured", "error", err)
	}

	return services.NewServiceContainer(services.Dependencies{
		Config:   cfg,
		Storage:  storageInstance,
		Mailer:   mailer,
		Tools:    MediaToolsFromConfig(cfg.Media),
		Location: loc,
	}), nil
}

// MediaToolsFromConfig wires the external programs used by media hooks.
func MediaToolsFromConfig(c config.MediaConfig) services.MediaTools {
	return services.MediaTools{
		Prober:  mediatools.NewProber(c.FFprobeBinary),
		Frames:  mediatools.NewFrameExtractor(c.FFmpegBinary),
		Pages:   mediatools.NewPDFPreviewer(c.PdftoppmBinary),
		PDFText: mediatools.ExtractPDFText,
		Images:  imageprocessor.NewProcessor(c.MaxImageWidth, c.MaxImageHeight, c.ImageQuality),
	}
}

// StartWorkers attaches the media queue and, when enabled, the daily
// reminder loop. Both stop with ctx.
func (a *App) StartWorkers(ctx context.Context) {
	cfg := a.Config
	a.mediaWorker = workers.NewMediaWorker(a.DB, a.Services.MediaService, cfg.Media.Workers, cfg.Media.QueueSize,
		time.Duration(cfg.Media.ProcessingLimit)*time.Second)
	a.mediaWorker.Start(ctx)
	a.Services.MediaService.SetQueue(a.mediaWorker)

	if cfg.Registration.ReminderEnabled {
		workers.NewReminderWorker(a.DB, a.Services.NotificationService,
			cfg.Registration.ReminderHour, cfg.Registration.ReminderDays, a.Location).Start(ctx)
	}
}

// Wait blocks until the media worker has drained.
func (a *App) Wait() {
	if a.mediaWorker != nil {
		a.mediaWorker.Wait()
	}
}

func (a *App) Close() {
	if a.Services != nil && a.Services.EmailService != nil {
		_ = a.Services.EmailService.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// SetupRouter builds the gin engine with every route.
func SetupRouter(cfg *config.Config, db *gorm.DB, container *services.ServiceContainer) (*gin.Engine, error) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tpl, err := web.Templates(cfg.Server.BaseURL)
	if err != nil {
		return nil, err
	}

	router := initializeGinRouter(cfg, db)
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.SetHTMLTemplate(tpl)

	appHandlers := initializeHandlers(cfg, container)
	routes.RegisterPublicRoutes(router, func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}, cfg.Storage.BaseURL, localMediaDir(cfg))
	routes.RegisterRoutes(router, appHandlers, middleware.SubscriberSession(container.RegistrationService))
	return router, nil
}

// localMediaDir is served by the app itself only outside production.
func localMediaDir(cfg *config.Config) string {
	if cfg.Server.Env == "production" || strings.ToLower(cfg.Storage.Type) != "local" {
		return ""
	}
	return cfg.Storage.BasePath
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer) *handlers.AppHandlers {
	base := handlers.NewBaseHandler(validator.New(), handlers.PageSettings{
		AppTitle: cfg.ApplicationTitle,
		MediaURL: strings.TrimRight(cfg.Storage.BaseURL, "/"),
		BasePath: basePath(cfg.Server.BaseURL),
	})
	reg := cfg.Registration
	secure := reg.CookieSecure
	limiter := middleware.NewIPRateLimiter(reg.LoginPerMinute, reg.LoginPerMinute)
	sessionMaxAge := cfg.JWT.SubscriberTTLHours * 3600

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(base, svc.AuthService, secure),
		GalleryHandler:      handlers.NewGalleryHandler(base, svc.GalleryService, svc.CategoryService),
		CoreHandler:         handlers.NewCoreHandler(base, svc.MediaService, svc.PlaybackService, svc.AuthService),
		RegistrationHandler: handlers.NewRegistrationHandler(base, svc.RegistrationService, limiter, sessionMaxAge, secure),
		CatalogHandler:      handlers.NewCatalogHandler(base, svc.CategoryService, svc.MediaService, svc.AuthService),
		EventHandler:        handlers.NewEventHandler(base, svc.RegistrationService, svc.NotificationService, svc.AuthService, reg.PersonsDumpPath),
		StatsHandler:        handlers.NewStatsHandler(base, svc.PlaybackService, svc.AuthService, reg.PillsCategory),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	router.MaxMultipartMemory = 32 << 20
	return router
}
