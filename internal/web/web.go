// Package web bundles the HTML templates of the public and self-service
// pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"

	"mediamatrixhub/internal/locale"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageGallery            = "gallery.html"
	PageCategories         = "categories.html"
	PageLogin              = "login.html"
	PageManageSubscription = "manage_subscription.html"
	PageSuccess            = "success.html"
	PageError              = "error.html"
)

// Templates parses every bundled page. Links built with url are prefixed
// with the path of baseURL, so the site can live below a sub-path.
func Templates(baseURL string) (*template.Template, error) {
	tpl, err := template.New("").Funcs(Funcs(baseURL)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tpl, nil
}

// Funcs returns the helpers available to templates.
func Funcs(baseURL string) template.FuncMap {
	prefix := "/"
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" {
		prefix = u.Path
	}
	return template.FuncMap{
		"format_italian": FormatItalian,
		"url": func(elems ...interface{}) string {
			return JoinURL(prefix, elems...)
		},
	}
}

// FormatItalian groups the digits of integer values; anything else is
// printed unchanged.
func FormatItalian(v interface{}) string {
	switch n := v.(type) {
	case int:
		return locale.Number(int64(n))
	case int64:
		return locale.Number(n)
	case int32:
		return locale.Number(int64(n))
	case uint:
		return locale.Number(int64(n))
	case uint64:
		return locale.Number(int64(n))
	default:
		return fmt.Sprint(v)
	}
}

// JoinURL escapes and joins elems below prefix, keeping a trailing slash.
func JoinURL(prefix string, elems ...interface{}) string {
	parts := make([]string, 0, len(elems)+1)
	parts = append(parts, prefix)
	for _, e := range elems {
		s := fmt.Sprint(e)
		for _, seg := range strings.Split(strings.Trim(s, "/"), "/") {
			if seg != "" {
				parts = append(parts, url.PathEscape(seg))
			}
		}
	}
	joined := path.Join(parts...)
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	if joined != "/" {
		joined += "/"
	}
	return joined
}
