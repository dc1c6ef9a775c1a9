package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"mediamatrixhub/internal/auth"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/pkg/apperrors"
	"mediamatrixhub/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Cookie names.
const (
	AdminCookie   = "mmh_admin"
	SessionCookie = "mmh_session"
)

const (
	claimsKey     = "claims"
	subscriberKey = "subscriber"
)

// TokenParser validates operator tokens.
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// SubscriberAuthenticator resolves self-service session tokens.
type SubscriberAuthenticator interface {
	Authenticate(db *gorm.DB, token string) (*models.Subscriber, error)
}

// BearerOrCookie returns the Authorization bearer token, falling back to
// the named cookie.
func BearerOrCookie(c *gin.Context, cookie string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(cookie); err == nil {
		return v
	}
	return ""
}

// AdminClaims parses the operator token of the request without aborting.
func AdminClaims(c *gin.Context, parser TokenParser) (*auth.Claims, bool) {
	token := BearerOrCookie(c, AdminCookie)
	if token == "" {
		return nil, false
	}
	claims, err := parser.ParseToken(token)
	if err != nil || claims.Kind != auth.KindAdmin {
		return nil, false
	}
	return claims, true
}

// AuthMiddleware requires a valid operator JWT.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := AdminClaims(c, parser)
		if !ok {
			logger.CtxWarn(c.Request.Context(), "rejected operator token", "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UserID)
		c.Set(contextkeys.RoleKey, claims.Role)
		c.Set(claimsKey, claims)
		ctx := logger.WithUserID(c.Request.Context(), strconv.FormatUint(uint64(claims.UserID), 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRoles lets through operators holding one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		roleVal, exists := c.Get(contextkeys.RoleKey)
		role, ok := roleVal.(models.UserRole)
		if !exists || !ok || !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission checks the role permission table.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := c.Get(claimsKey)
		cl, _ := claims.(*auth.Claims)
		if !auth.CanPerformAction(cl, permission) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubscriberSession loads the subscriber of the session cookie, if any.
// It never aborts; handlers decide what a missing session means.
func SubscriberSession(authn SubscriberAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		db := dbFrom(c)
		if db == nil {
			c.Next()
			return
		}
		sub, err := authn.Authenticate(db, token)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "stale subscriber session", "error", err.Error())
			c.Next()
			return
		}
		c.Set(contextkeys.SubscriberIDKey, sub.ID)
		c.Set(subscriberKey, sub)
		c.Request = c.Request.WithContext(logger.WithSubscriberID(c.Request.Context(), sub.ID))
		c.Next()
	}
}

// CurrentSubscriber returns the subscriber loaded by SubscriberSession.
func CurrentSubscriber(c *gin.Context) (*models.Subscriber, bool) {
	v, ok := c.Get(subscriberKey)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*models.Subscriber)
	return sub, ok && sub != nil
}

// GetUserID returns the operator id set by AuthMiddleware, or 0.
func GetUserID(c *gin.Context) uint {
	v, ok := c.Get(contextkeys.UserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

// SetSessionCookie stores a self-service token; an empty token clears it.
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	if token == "" {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}
