package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/internal/web"
	"mediamatrixhub/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const eventFieldPrefix = "event_"

// RegistrationHandler serves the subscriber self-service pages.
type RegistrationHandler struct {
	*BaseHandler
	registrationService services.RegistrationService
	limiter             *middleware.IPRateLimiter
	sessionMaxAge       int
	secureCookie        bool
}

func NewRegistrationHandler(
	base *BaseHandler,
	registrationService services.RegistrationService,
	limiter *middleware.IPRateLimiter,
	sessionMaxAge int,
	secureCookie bool,
) *RegistrationHandler {
	return &RegistrationHandler{
		BaseHandler:         base,
		registrationService: registrationService,
		limiter:             limiter,
		sessionMaxAge:       sessionMaxAge,
		secureCookie:        secureCookie,
	}
}

// RegisterRoutes mounts the pages below rg (the /registrazione group,
// which runs the subscriber session middleware).
func (h *RegistrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	limited := []gin.HandlerFunc{}
	if h.limiter != nil {
		limited = append(limited, h.limiter.Middleware())
	}

	rg.GET("/login/", h.LoginPage)
	rg.POST("/login/", append(limited, h.Login)...)
	rg.GET("/manage-subscription/", h.ManageSubscription)
	rg.POST("/manage-subscription/", h.SaveSubscriptions)
	rg.GET("/success/", h.Success)
	rg.GET("/logout/", h.Logout)
	rg.GET("/events/download/:ref_token/", h.DownloadICS)
	rg.GET("/api/subscribers/lookup", append(limited, h.Lookup)...)
}

func (h *RegistrationHandler) renderLogin(c *gin.Context, status int, req *dto.SubscriberLoginRequest, message string) {
	c.HTML(status, web.PageLogin, h.Page("Accesso", gin.H{
		"Error":     message,
		"Matricola": req.Matricola,
		"Email":     req.Email,
	}))
}

func (h *RegistrationHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.CurrentSubscriber(c); ok {
		c.Redirect(http.StatusFound, h.URL("registrazione", "manage-subscription"))
		return
	}
	h.renderLogin(c, http.StatusOK, &dto.SubscriberLoginRequest{}, "")
}

func (h *RegistrationHandler) Login(c *gin.Context) {
	var req dto.SubscriberLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.CtxWarn(c.Request.Context(), "invalid login form", "error", err.Error())
		h.renderLogin(c, http.StatusBadRequest, &req, "compila correttamente matricola ed email")
		return
	}
	req.Matricola = strings.TrimSpace(req.Matricola)
	if err := h.validator.Validate(&req); err != nil {
		h.renderLogin(c, http.StatusBadRequest, &req, apperrors.ErrInvalidSubscriberCredentials.Message)
		return
	}

	session, err := h.registrationService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidSubscriberCredentials) {
			h.renderLogin(c, http.StatusOK, &req, apperrors.ErrInvalidSubscriberCredentials.Message)
			return
		}
		h.RenderError(c, err)
		return
	}

	middleware.SetSessionCookie(c, session.Token, h.sessionMaxAge, h.secureCookie)
	c.Redirect(http.StatusFound, h.URL("registrazione", "manage-subscription"))
}

func (h *RegistrationHandler) ManageSubscription(c *gin.Context) {
	sub, ok := middleware.CurrentSubscriber(c)
	if !ok {
		h.RenderError(c, apperrors.ErrSubscriberNotFound)
		return
	}
	dashboard, err := h.registrationService.Dashboard(h.GetDB(c), sub.ID)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageManageSubscription, h.Page("Iscrizioni", gin.H{"Dashboard": dashboard}))
}

func (h *RegistrationHandler) SaveSubscriptions(c *gin.Context) {
	sub, ok := middleware.CurrentSubscriber(c)
	if !ok {
		h.RenderError(c, apperrors.ErrSubscriberNotFound)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.RenderError(c, apperrors.NewBadRequestError("modulo non valido"))
		return
	}
	selected, err := SelectedEvents(c.Request.PostForm)
	if err != nil {
		h.RenderError(c, err)
		return
	}

	if _, err := h.registrationService.UpdateSubscriptions(c.Request.Context(), h.GetDB(c), sub.ID, selected); err != nil {
		h.RenderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.URL("registrazione", "success"))
}

// SelectedEvents returns the ids of the checked event_<id> boxes, sorted.
func SelectedEvents(form map[string][]string) ([]uint, error) {
	var ids []uint
	for key, values := range form {
		if !strings.HasPrefix(key, eventFieldPrefix) || !checked(values) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(key, eventFieldPrefix), 10, 64)
		if err != nil || id == 0 {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("campo non valido: %s", key))
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func checked(values []string) bool {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "0", "off":
		default:
			return true
		}
	}
	return false
}

func (h *RegistrationHandler) Success(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageSuccess, h.Page("Iscrizioni aggiornate", nil))
}

func (h *RegistrationHandler) Logout(c *gin.Context) {
	if sub, ok := middleware.CurrentSubscriber(c); ok {
		if err := h.registrationService.Logout(c.Request.Context(), h.GetDB(c), sub.ID); err != nil {
			logger.CtxWithError(c.Request.Context(), "logout audit failed", err)
		}
	}
	middleware.SetSessionCookie(c, "", 0, h.secureCookie)
	c.Redirect(http.StatusFound, h.URL("registrazione", "login"))
}

func (h *RegistrationHandler) DownloadICS(c *gin.Context) {
	body, event, err := h.registrationService.EventICS(h.GetDB(c), c.Param("ref_token"))
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="evento-%d.ics"`, event.ID))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

func (h *RegistrationHandler) Lookup(c *gin.Context) {
	matricola := strings.TrimSpace(c.Query("matricola"))
	email := strings.TrimSpace(c.Query("email"))
	if matricola == "" || email == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("matricola and email are required"))
		return
	}
	resp, err := h.registrationService.Lookup(h.GetDB(c), matricola, email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
