package email

import (
	"mime"
	"path/filepath"
	"strings"
)

// Attachment is a file carried by a message.
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// MimeType is ContentType, or the type guessed from the file name.
func (a Attachment) MimeType() string {
	if a.ContentType != "" {
		return a.ContentType
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(a.Name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

type Email struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string // plain-text alternative
	HTMLBody    string
	Attachments []Attachment

	// Template names the template the body came from; used for metrics.
	Template string
}

// TemplateData is passed to html/template.
type TemplateData map[string]interface{}

// Recipients returns To, Cc and Bcc, de-duplicated in that order.
func (e *Email) Recipients() []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{e.To, e.Cc, e.Bcc} {
		for _, addr := range list {
			key := strings.ToLower(strings.TrimSpace(addr))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(addr))
		}
	}
	return out
}

// dedupeCc drops Cc entries already present in To.
func dedupeCc(to, cc []string) []string {
	inTo := make(map[string]bool, len(to))
	for _, a := range to {
		inTo[strings.ToLower(strings.TrimSpace(a))] = true
	}
	var out []string
	for _, a := range cc {
		k := strings.ToLower(strings.TrimSpace(a))
		if k == "" || inTo[k] {
			continue
		}
		inTo[k] = true
		out = append(out, strings.TrimSpace(a))
	}
	return out
}
