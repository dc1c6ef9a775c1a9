package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "/core/c/Pillole%20informative/", JoinURL("/", "core", "c", "Pillole informative"))
	assert.Equal(t, "/mmh/registrazione/login/", JoinURL("/mmh", "registrazione/login"))
	assert.Equal(t, "/", JoinURL("/"))
	assert.Equal(t, "/core/media/42/", JoinURL("/", "core", "media", 42))
}

func TestFormatItalian(t *testing.T) {
	assert.Equal(t, "1.234.567", FormatItalian(1234567))
	assert.Equal(t, "12", FormatItalian(int64(12)))
	assert.Equal(t, "n/d", FormatItalian("n/d"))
}

func TestTemplatesRender(t *testing.T) {
	tpl, err := Templates("https://media.example.org/mmh")
	require.NoError(t, err)

	var b strings.Builder
	err = tpl.ExecuteTemplate(&b, PageError, map[string]interface{}{
		"AppTitle": "Media Matrix Hub",
		"Title":    "Errore",
		"Status":   404,
		"Message":  "Utente non trovato",
	})
	require.NoError(t, err)
	assert.Contains(t, b.String(), "<h1>404</h1>")
	assert.Contains(t, b.String(), "Utente non trovato")
	assert.Contains(t, b.String(), `href="/mmh/core/categories/"`)

	for _, name := range []string{PageGallery, PageCategories, PageLogin, PageManageSubscription, PageSuccess} {
		assert.NotNil(t, tpl.Lookup(name), name)
	}
}
