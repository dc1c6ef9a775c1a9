package auth

import (
	"slices"

	"mediamatrixhub/internal/models"
)

// Permissions per operator role.
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		"catalog:read",
		"catalog:write",
		"catalog:delete",
		"registration:read",
		"registration:write",
		"stats:read",
		"notifications:send",
	},
	models.UserRoleEditor: {
		"catalog:read",
		"catalog:write",
		"registration:read",
		"stats:read",
	},
}

func HasPermission(role models.UserRole, permission string) bool {
	return slices.Contains(Permissions[role], permission)
}

func CanPerformAction(claims *Claims, permission string) bool {
	if claims == nil || claims.Kind != KindAdmin {
		return false
	}
	return HasPermission(claims.Role, permission)
}

func IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Kind == KindAdmin && claims.Role == models.UserRoleAdmin
}
