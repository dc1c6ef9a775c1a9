package integration_test

import (
	"fmt"
	"net/http"
	"testing"

	"mediamatrixhub/internal/models"
	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLoginAndMe(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	token := ts.LoginAdmin(t, "admin@example.org", models.UserRoleAdmin)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"role":"admin"`)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	helpers.CreateUser(t, ts.DB, &models.User{Email: "admin@example.org", PasswordHash: "password123"})

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@example.org",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCatalogRequiresToken(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestEditorPermissions(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token := ts.LoginAdmin(t, "editor@example.org", models.UserRoleEditor)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/categories", token, map[string]interface{}{
		"name": "Formazione",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	assert.Contains(t, body, `"name":"Formazione"`)

	var created models.Category
	require.NoError(t, ts.DB.Where("name = ?", "Formazione").First(&created).Error)

	res, _ = ts.SendRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/reminders", token, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
