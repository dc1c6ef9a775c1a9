package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

// PlainTextFallback is the text/plain part of every HTML message.
const PlainTextFallback = "questo messaggio ha un contenuto html"

// ErrGatewayUnavailable is returned while the circuit breaker is open.
var ErrGatewayUnavailable = errors.New("smtp gateway unavailable")

// Sender delivers built messages; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider sends mail through gomail behind a circuit breaker.
type SMTPProvider struct {
	config   *SMTPConfig
	sender   Sender
	renderer TemplateRenderer
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

func NewSMTPProvider(config *SMTPConfig, renderer TemplateRenderer) *SMTPProvider {
	return NewSMTPProviderWithSender(config, renderer, gomail.NewDialer(config.Host, config.Port, config.Username, config.Password))
}

func NewSMTPProviderWithSender(config *SMTPConfig, renderer TemplateRenderer, sender Sender) *SMTPProvider {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("email circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &SMTPProvider{
		config:   config,
		sender:   sender,
		renderer: renderer,
		breaker:  gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(email.Recipients()) == 0 {
		return errors.New("email has no recipients")
	}

	msg := p.BuildMessage(email)

	if p.config.Debug {
		logger.CtxInfo(ctx, "email debug mode, message not sent",
			"to", email.To, "cc", email.Cc, "subject", email.Subject, "template", email.Template)
		metrics.RecordEmail(templateLabel(email), nil, true)
		return nil
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.dialAndSend(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	metrics.RecordEmail(templateLabel(email), err, false)
	for _, to := range email.To {
		logger.MailLog(templateLabel(email), to, err)
	}
	if err != nil {
		return fmt.Errorf("send email %q: %w", email.Subject, err)
	}
	return nil
}

// dialAndSend bounds a gomail delivery by ctx and the configured timeout.
func (p *SMTPProvider) dialAndSend(ctx context.Context, msg *gomail.Message) error {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() { done <- p.sender.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *SMTPProvider) SendTemplate(ctx context.Context, to []string, subject string, templateName string, data TemplateData) error {
	return p.SendTemplateMessage(ctx, &Email{To: to, Subject: subject}, templateName, data)
}

func (p *SMTPProvider) SendTemplateMessage(ctx context.Context, msg *Email, templateName string, data TemplateData) error {
	if p.renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}
	htmlBody, err := p.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	msg.HTMLBody = htmlBody
	msg.Template = templateName
	return p.Send(ctx, msg)
}

func (p *SMTPProvider) Validate() error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.config.Port <= 0 || p.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.Port)
	}
	if p.config.FromEmail == "" {
		return fmt.Errorf("sender address is required")
	}
	return nil
}

// Close is a no-op; gomail dials per message.
func (p *SMTPProvider) Close() error {
	return nil
}

// BuildMessage converts email into a gomail message: a text/plain fallback
// with the HTML alternative, Cc without addresses already in To, and
// attachments typed from their extension.
func (p *SMTPProvider) BuildMessage(email *Email) *gomail.Message {
	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = p.config.FromEmail
	}
	if p.config.FromName != "" && email.From == "" {
		m.SetAddressHeader("From", from, p.config.FromName)
	} else {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", email.To...)
	if cc := dedupeCc(email.To, email.Cc); len(cc) > 0 {
		m.SetHeader("Cc", cc...)
	}
	if len(email.Bcc) > 0 {
		m.SetHeader("Bcc", email.Bcc...)
	}
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "":
		plain := email.Body
		if plain == "" {
			plain = PlainTextFallback
		}
		m.SetBody("text/plain", plain)
		m.AddAlternative("text/html", email.HTMLBody)
	default:
		m.SetBody("text/plain", email.Body)
	}

	for _, a := range email.Attachments {
		content := a.Content
		m.Attach(a.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(content))
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.MimeType()}}),
		)
	}
	return m
}

func templateLabel(e *Email) string {
	if e.Template == "" {
		return "plain"
	}
	return e.Template
}
