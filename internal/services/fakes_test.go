package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"mediamatrixhub/internal/email"
)

// fakeMailer renders templates with the embedded set and records every
// message instead of sending it.
type fakeMailer struct {
	mu       sync.Mutex
	renderer *email.TemplateManager
	sent     []*email.Email
	failFor  map[string]bool
}

func newFakeMailer() *fakeMailer {
	tm, err := email.NewDefaultTemplateManager()
	if err != nil {
		panic(err)
	}
	return &fakeMailer{renderer: tm, failFor: map[string]bool{}}
}

func (m *fakeMailer) Send(_ context.Context, e *email.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, to := range e.To {
		if m.failFor[to] {
			return errors.New("mailbox unavailable")
		}
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *fakeMailer) SendTemplate(ctx context.Context, to []string, subject, name string, data email.TemplateData) error {
	return m.SendTemplateMessage(ctx, &email.Email{To: to, Subject: subject}, name, data)
}

func (m *fakeMailer) SendTemplateMessage(ctx context.Context, msg *email.Email, name string, data email.TemplateData) error {
	body, err := m.renderer.Render(name, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body
	msg.Template = name
	return m.Send(ctx, msg)
}

func (m *fakeMailer) Validate() error { return nil }
func (m *fakeMailer) Close() error    { return nil }

func (m *fakeMailer) byTemplate(name string) []*email.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*email.Email
	for _, e := range m.sent {
		if e.Template == name {
			out = append(out, e)
		}
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 14 October 2026, a Wednesday.
var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
