package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/validator"
	"mediamatrixhub/internal/web"
	"mediamatrixhub/pkg/apperrors"
	"mediamatrixhub/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PageSettings are the values every HTML page can use.
type PageSettings struct {
	AppTitle string
	MediaURL string
	// BasePath is the URL path the site is mounted at, "/" by default.
	BasePath string
}

type BaseHandler struct {
	validator *validator.Validator
	pages     PageSettings
}

func NewBaseHandler(v *validator.Validator, pages PageSettings) *BaseHandler {
	if pages.BasePath == "" {
		pages.BasePath = "/"
	}
	return &BaseHandler{
		validator: v,
		pages:     pages,
	}
}

// GetDB returns the *gorm.DB (pool or transaction) set by DBMiddleware.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db.WithContext(c.Request.Context())
}

// Validate runs the project validator and renders a 400 on failure.
func (h *BaseHandler) Validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()
	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}
	return h.Validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}
	return h.Validate(c, obj)
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// URL builds a site link the way templates do.
func (h *BaseHandler) URL(elems ...interface{}) string {
	return web.JoinURL(h.pages.BasePath, elems...)
}

// Page fills the common keys of an HTML template context.
func (h *BaseHandler) Page(title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["AppTitle"] = h.pages.AppTitle
	data["MediaURL"] = h.pages.MediaURL
	if _, ok := data["Title"]; !ok {
		data["Title"] = title
	}
	return data
}

// RenderError renders error.html with the status of err.
func (h *BaseHandler) RenderError(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)
	message := http.StatusText(status)
	if appErr, ok := apperrors.AsAppError(err); ok && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.CtxWithError(c.Request.Context(), "page error", err, "path", c.Request.URL.Path)
	} else {
		logger.CtxWarn(c.Request.Context(), "page error", "status", status, "error", err.Error(), "path", c.Request.URL.Path)
	}
	c.HTML(status, web.PageError, h.Page(message, gin.H{"Status": status, "Message": message}))
}

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ParseParamID reads a positive integer path parameter.
func ParseParamID(c *gin.Context, key string) (uint, error) {
	valueStr := c.Param(key)
	if valueStr == "" {
		return 0, apperrors.NewBadRequestError("Missing required path parameter: " + key)
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil || value == 0 {
		return 0, apperrors.NewBadRequestError("Invalid path parameter: " + key + " is not a positive integer")
	}
	return uint(value), nil
}

func ParsePagination(c *gin.Context) repositories.Page {
	const defaultPage = 1
	const defaultPageSize = 20
	const maxPageSize = 100

	page := ParseQueryInt(c, "page", defaultPage)
	if page <= 0 {
		page = defaultPage
	}

	pageSize := ParseQueryInt(c, "page_size", defaultPageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return repositories.Page{Page: page, PageSize: pageSize}
}

// ParseQueryDateRange reads date_from/date_to (YYYY-MM-DD or RFC3339). The
// range defaults to the last defaultDaysAgo days; date_to is inclusive.
func ParseQueryDateRange(c *gin.Context, defaultDaysAgo int, now time.Time) (time.Time, time.Time, error) {
	dateTo := now
	dateFrom := dateTo.AddDate(0, 0, -defaultDaysAgo)

	parse := func(key string) (time.Time, bool, error) {
		s := c.Query(key)
		if s == "" {
			return time.Time{}, false, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, false, nil
		}
		t, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return time.Time{}, false, apperrors.NewBadRequestError("Invalid " + key + " format. Use YYYY-MM-DD or RFC3339")
		}
		return t, true, nil
	}

	from, _, err := parse("date_from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !from.IsZero() {
		dateFrom = from
	}
	to, dayOnly, err := parse("date_to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.IsZero() {
		dateTo = to
		if dayOnly {
			dateTo = to.AddDate(0, 0, 1)
		}
	}

	if dateFrom.After(dateTo) {
		return time.Time{}, time.Time{}, apperrors.NewBadRequestError("date_from cannot be after date_to")
	}
	return dateFrom, dateTo, nil
}

// listResponse is the JSON envelope of paginated endpoints.
func listResponse(items interface{}, total int64, page repositories.Page) gin.H {
	return gin.H{
		"items":     items,
		"total":     total,
		"page":      page.Page,
		"page_size": page.PageSize,
	}
}
