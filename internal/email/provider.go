package email

import "context"

// Provider sends messages.
type Provider interface {
	Send(ctx context.Context, email *Email) error

	// SendTemplate renders templateName with data and sends it as HTML.
	SendTemplate(ctx context.Context, to []string, subject string, templateName string, data TemplateData) error

	// SendTemplateMessage renders templateName into msg's HTML body and
	// sends msg, keeping its recipients and headers.
	SendTemplateMessage(ctx context.Context, msg *Email, templateName string, data TemplateData) error

	Validate() error

	Close() error
}

// TemplateRenderer renders named templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)

	AddTemplate(name string, template string) error

	// LoadTemplates loads every *.html file under dirPath.
	LoadTemplates(dirPath string) error
}
