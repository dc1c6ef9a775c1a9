package handlers

import (
	"net/http"
	"time"

	"mediamatrixhub/internal/middleware"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService  services.AuthService
	secureCookie bool
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  base,
		authService:  authService,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.authService))
	admin.Use(middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("/users", h.CreateUser)
	}
}

// Login issues an operator token and mirrors it in the mmh_admin cookie
// so that nginx-protected media can be opened from the browser.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookie, resp.AccessToken, maxAge, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AdminCookie, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	role, _ := c.Get(contextkeys.RoleKey)
	c.JSON(http.StatusOK, gin.H{"user_id": middleware.GetUserID(c), "role": role})
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.CreateUser(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
