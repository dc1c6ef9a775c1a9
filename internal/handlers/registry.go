package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	GalleryHandler      *GalleryHandler
	CoreHandler         *CoreHandler
	RegistrationHandler *RegistrationHandler
	CatalogHandler      *CatalogHandler
	EventHandler        *EventHandler
	StatsHandler        *StatsHandler
}
