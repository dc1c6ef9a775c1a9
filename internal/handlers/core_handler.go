package handlers

import (
	"net/http"
	"strings"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/netutil"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// CoreHandler serves the media endpoints used by players and nginx.
type CoreHandler struct {
	*BaseHandler
	mediaService    services.MediaService
	playbackService services.PlaybackService
	tokens          middleware.TokenParser
}

func NewCoreHandler(
	base *BaseHandler,
	mediaService services.MediaService,
	playbackService services.PlaybackService,
	tokens middleware.TokenParser,
) *CoreHandler {
	return &CoreHandler{
		BaseHandler:     base,
		mediaService:    mediaService,
		playbackService: playbackService,
		tokens:          tokens,
	}
}

// RegisterRoutes mounts the endpoints below rg (the /core group, which
// runs the subscriber session middleware).
func (h *CoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/proxy-auth/", h.ProxyAuth)
	rg.GET("/media/:ref_token/", h.OpenMedia)
	rg.POST("/api/videos/:id/playback", h.RecordPlayback)
}

// clientIP prefers the address set by the fronting proxy.
func clientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// viewer reports whether the caller is signed in, and under which name.
func (h *CoreHandler) viewer(c *gin.Context) (bool, string) {
	if claims, ok := middleware.AdminClaims(c, h.tokens); ok {
		return true, claims.Subject
	}
	if sub, ok := middleware.CurrentSubscriber(c); ok {
		return true, sub.Matricola
	}
	return false, ""
}

// ProxyAuth answers nginx auth_request subrequests: private networks are
// let through, public ones need a signed-in user.
func (h *CoreHandler) ProxyAuth(c *gin.Context) {
	if netutil.IsPrivateIP(c.GetHeader("X-Real-IP")) {
		c.Status(http.StatusOK)
		return
	}
	if ok, _ := h.viewer(c); ok {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusForbidden)
}

func (h *CoreHandler) RecordPlayback(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.PlaybackRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}

	authenticated, username := h.viewer(c)
	if strings.TrimSpace(req.Username) != "" {
		username = strings.TrimSpace(req.Username)
	}

	ctx := c.Request.Context()
	db := h.GetDB(c)
	if err := h.playbackService.Record(ctx, db, id, clientIP(c), authenticated, username); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if _, err := h.playbackService.RecordRequest(ctx, db, services.RequestInfoFromHTTP(c.Request)); err != nil {
		logger.CtxWithError(ctx, "message log not stored", err)
	}
	c.Status(http.StatusNoContent)
}

// OpenMedia logs the request and redirects to the stored file.
func (h *CoreHandler) OpenMedia(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.GetDB(c)

	if _, err := h.playbackService.RecordRequest(ctx, db, services.RequestInfoFromHTTP(c.Request)); err != nil {
		logger.CtxWithError(ctx, "message log not stored", err)
	}

	target, err := h.mediaService.FileURL(ctx, db, c.Param("ref_token"))
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}
