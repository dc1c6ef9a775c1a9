package routes

import (
	"mediamatrixhub/internal/handlers"
	"mediamatrixhub/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the HTML areas and the admin API. session loads
// the subscriber of the request and runs on the HTML areas only.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, session gin.HandlerFunc) {
	core := ginRouter.Group("/core", session)
	{
		appHandlers.GalleryHandler.RegisterRoutes(core)
		appHandlers.CoreHandler.RegisterRoutes(core)
	}

	registration := ginRouter.Group("/registrazione", session)
	{
		appHandlers.RegistrationHandler.RegisterRoutes(registration)
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.CatalogHandler.RegisterRoutes(api)
		appHandlers.EventHandler.RegisterRoutes(api)
		appHandlers.StatsHandler.RegisterRoutes(api)
	}
	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
