package integration_test

import (
	"net/http"
	"net/url"
	"testing"

	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
)

func TestCategoryGallery(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	root := helpers.CreateCategory(t, ts.DB, "Corsi", nil, 0)
	helpers.CreateVideo(t, ts.DB, "Introduzione al protocollo", root)
	helpers.CreateDocument(t, ts.DB, "Dispensa", "documents/dispensa.pdf", root)

	res, body := ts.Get(t, "/core/c/Corsi/", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Introduzione al protocollo")
	assert.Contains(t, body, "Dispensa")

	res, body = ts.Get(t, "/core/c/Corsi/search/?q="+url.QueryEscape("protocollo"), nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Introduzione al protocollo")
	assert.Contains(t, body, "Nessun documento disponibile.")
}

func TestCategoryGalleryNotFound(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, _ := ts.Get(t, "/core/c/Inesistente/", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCategoriesTree(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	root := helpers.CreateCategory(t, ts.DB, "Corsi", nil, 0)
	helpers.CreateCategory(t, ts.DB, "Sicurezza", root, 0)

	res, body := ts.Get(t, "/core/categories/", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Corsi")
	assert.Contains(t, body, "Sicurezza")
}

func TestProxyAuth(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, _ := ts.Get(t, "/core/proxy-auth/", map[string]string{"X-Real-IP": "10.1.2.3"})
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.Get(t, "/core/proxy-auth/", map[string]string{"X-Real-IP": "8.8.8.8"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	helpers.CreateSubscriber(t, ts.DB, "12345", "anna.rossi@example.org", "Anna", "Rossi")
	res, _ = ts.PostForm(t, "/registrazione/login/", url.Values{
		"matricola": {"12345"},
		"email":     {"anna.rossi@example.org"},
	})
	assert.Equal(t, http.StatusFound, res.StatusCode)

	res, _ = ts.Get(t, "/core/proxy-auth/", map[string]string{"X-Real-IP": "8.8.8.8"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, _ := ts.Get(t, "/healthz", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
