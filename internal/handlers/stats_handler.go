package handlers

import (
	"fmt"
	"net/http"
	"time"

	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatsHandler exposes playback statistics to operators.
type StatsHandler struct {
	*BaseHandler
	playbackService services.PlaybackService
	tokens          middleware.TokenParser
	pillsCategory   string
	now             func() time.Time
}

func NewStatsHandler(base *BaseHandler, playbackService services.PlaybackService, tokens middleware.TokenParser, pillsCategory string) *StatsHandler {
	return &StatsHandler{
		BaseHandler:     base,
		playbackService: playbackService,
		tokens:          tokens,
		pillsCategory:   pillsCategory,
		now:             time.Now,
	}
}

func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stats := rg.Group("/stats", middleware.AuthMiddleware(h.tokens), middleware.RequirePermission("stats:read"))
	{
		stats.GET("/views", h.UniqueViews)
		stats.GET("/ips", h.DistinctIPs)
		stats.GET("/events", h.Events)
		stats.GET("/counters", h.Counters)
		stats.GET("/message-logs.xlsx", h.ExportMessageLogs)
	}
}

// UniqueViews counts (ip, day) views for the videos of ?category=, the
// pills category by default.
func (h *StatsHandler) UniqueViews(c *gin.Context) {
	category := c.DefaultQuery("category", h.pillsCategory)
	totals, err := h.playbackService.UniqueViewTotals(h.GetDB(c), category, c.Query("authenticated") == "true")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *StatsHandler) DistinctIPs(c *gin.Context) {
	counts, err := h.playbackService.DistinctIPsPerVideo(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *StatsHandler) Events(c *gin.Context) {
	counts, err := h.playbackService.EventsPerVideo(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *StatsHandler) Counters(c *gin.Context) {
	counters, err := h.playbackService.Counters(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counters)
}

func (h *StatsHandler) ExportMessageLogs(c *gin.Context) {
	from, to, err := ParseQueryDateRange(c, 30, h.now())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	buf, err := h.playbackService.ExportMessageLogs(h.GetDB(c), from, to)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	name := fmt.Sprintf("message-logs-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
