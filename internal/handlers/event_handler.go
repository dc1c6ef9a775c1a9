package handlers

import (
	"io"
	"net/http"
	"strings"

	"mediamatrixhub/internal/directory"
	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// maxDumpSize caps uploaded person dumps.
const maxDumpSize = 64 << 20

// EventHandler is the admin API of the registration area.
type EventHandler struct {
	*BaseHandler
	registrationService services.RegistrationService
	notificationService services.NotificationService
	tokens              middleware.TokenParser
	personsDumpPath     string
}

func NewEventHandler(
	base *BaseHandler,
	registrationService services.RegistrationService,
	notificationService services.NotificationService,
	tokens middleware.TokenParser,
	personsDumpPath string,
) *EventHandler {
	return &EventHandler{
		BaseHandler:         base,
		registrationService: registrationService,
		notificationService: notificationService,
		tokens:              tokens,
		personsDumpPath:     personsDumpPath,
	}
}

func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("", middleware.AuthMiddleware(h.tokens))
	read := middleware.RequirePermission("registration:read")
	write := middleware.RequirePermission("registration:write")
	send := middleware.RequirePermission("notifications:send")

	events := g.Group("/events")
	{
		events.GET("", read, h.ListEvents)
		events.GET("/enabled", read, h.ListEnabledEvents)
		events.GET("/:id", read, h.GetEvent)
		events.GET("/:id/participants", read, h.Participants)
		events.POST("", write, h.CreateEvent)
		events.PUT("/:id", write, h.UpdateEvent)
		events.DELETE("/:id", write, h.DeleteEvent)
	}

	subscribers := g.Group("/subscribers")
	{
		subscribers.GET("", read, h.ListSubscribers)
		subscribers.POST("/import", write, h.ImportPersons)
	}

	g.GET("/event-logs", read, h.EventLogs)

	notifications := g.Group("/notifications", send)
	{
		notifications.POST("/reminders", h.SendReminders)
		notifications.POST("/notice", h.SendNotice)
		notifications.POST("/department-report", h.DepartmentReport)
	}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	page := ParsePagination(c)
	events, total, err := h.registrationService.ListEvents(h.GetDB(c), page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(events, total, page))
}

func (h *EventHandler) ListEnabledEvents(c *gin.Context) {
	events, lines, err := h.registrationService.ListEnabledEvents(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events, "lines": lines})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	event, err := h.registrationService.GetEvent(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Participants(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	participants, err := h.registrationService.Participants(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.EventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	event, err := h.registrationService.CreateEvent(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.EventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	event, err := h.registrationService.UpdateEvent(h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := h.registrationService.DeleteEvent(h.GetDB(c), id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) ListSubscribers(c *gin.Context) {
	page := ParsePagination(c)
	subs, total, err := h.registrationService.ListSubscribers(h.GetDB(c), strings.TrimSpace(c.Query("q")), page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(subs, total, page))
}

// ImportPersons loads a person dump sent as the multipart "file" part.
func (h *EventHandler) ImportPersons(c *gin.Context) {
	upload, closeFn, err := formFile(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer closeFn()

	data, err := io.ReadAll(io.LimitReader(upload.Reader, maxDumpSize+1))
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	if len(data) > maxDumpSize {
		h.HandleServiceError(c, apperrors.ErrFileTooLarge)
		return
	}
	persons, err := directory.ParsePersons(data)
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	report, err := h.registrationService.ImportPersonDump(c.Request.Context(), h.GetDB(c), persons, c.Query("reset") == "true")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *EventHandler) EventLogs(c *gin.Context) {
	var q dto.EventLogQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	page := ParsePagination(c)
	q.Page, q.PageSize = page.Page, page.PageSize

	logs, total, err := h.registrationService.EventLogs(h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(logs, total, page))
}

// bindNotify accepts an empty body as the defaults.
func (h *EventHandler) bindNotify(c *gin.Context) (*dto.NotifyRequest, bool) {
	var req dto.NotifyRequest
	if c.Request.ContentLength == 0 {
		return &req, true
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return nil, false
	}
	return &req, true
}

func (h *EventHandler) SendReminders(c *gin.Context) {
	req, ok := h.bindNotify(c)
	if !ok {
		return
	}
	report, err := h.notificationService.SendReminders(c.Request.Context(), h.GetDB(c), req.Days, req.Debug)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *EventHandler) SendNotice(c *gin.Context) {
	req, ok := h.bindNotify(c)
	if !ok {
		return
	}
	report, err := h.notificationService.SendPostponementNotice(c.Request.Context(), h.GetDB(c), req.Days, req.Debug)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *EventHandler) DepartmentReport(c *gin.Context) {
	if h.personsDumpPath == "" {
		h.HandleServiceError(c, apperrors.ErrInvalidOperation("registration", "persons dump path is not configured"))
		return
	}
	persons, err := directory.LoadPersons(h.personsDumpPath)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	report, err := h.notificationService.DepartmentReport(c.Request.Context(), h.GetDB(c), persons, c.Query("send_email") == "true")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
