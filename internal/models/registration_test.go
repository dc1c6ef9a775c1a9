package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestSubscriberString(t *testing.T) {
	s := Subscriber{Name: "Mario", Surname: "Rossi"}
	assert.Equal(t, "Mario Rossi", s.String())
}

func TestInformationEventString(t *testing.T) {
	e := InformationEvent{Title: "Sicurezza informatica"}
	assert.Equal(t, "Sicurezza informatica", e.String())
}

func TestEventLogStringContainsType(t *testing.T) {
	l := EventLog{EventType: EventLogLogin, EventTitle: "login"}
	assert.Contains(t, l.String(), "LOGIN")
}

func TestToHTMLTableEmail(t *testing.T) {
	start := datatypes.NewTime(10, 30, 0, 0)
	e := InformationEvent{
		Title:      "Firma digitale <base>",
		Speaker:    "Anna Bianchi",
		EventDate:  time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		MeetingURL: "https://meet.example.org/abc",
	}
	e.EventStartTime = &start

	out := e.ToHTMLTableEmail()
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "mercoledì 14 ottobre 2026")
	assert.Contains(t, out, "10:30")
	assert.Contains(t, out, "Firma digitale &lt;base&gt;")
	assert.Contains(t, out, `<a href="https://meet.example.org/abc">`)
	assert.NotContains(t, out, "N/A")
}

func TestToHTMLTableEmailMissingDateAndTime(t *testing.T) {
	e := InformationEvent{Title: "Senza data"}
	out := e.ToHTMLTableEmail()
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "N/A")
}

func TestEventBounds(t *testing.T) {
	start := datatypes.NewTime(9, 0, 0, 0)
	e := InformationEvent{EventDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), EventStartTime: &start}

	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), e.StartsAt(time.UTC))
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), e.EndsAt(time.UTC))

	e.DurationMinutes = 90
	assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), e.EndsAt(time.UTC))
}

func TestMediaPredicates(t *testing.T) {
	v := Video{VideoFile: "videos/a.mp4"}
	assert.True(t, v.NeedsProbe())
	v.Duration = 12
	assert.False(t, v.NeedsProbe())

	assert.False(t, v.NeedsTranscriptionIndex())
	v.IsTranscriptionAvailable = true
	v.RawTranscriptionFile = "vtt/a.vtt"
	assert.True(t, v.NeedsTranscriptionIndex())

	d := Document{DocumentFile: "docs/Guida.PDF"}
	assert.True(t, d.IsPDF())
	assert.True(t, d.NeedsPreview())
	d.PreviewImage = "previews/guida.jpg"
	assert.False(t, d.NeedsPreview())
	assert.False(t, (&Document{DocumentFile: "docs/a.docx"}).IsPDF())
}

func TestEventLogTypeValid(t *testing.T) {
	assert.True(t, EventLogReminderEmailSent.Valid())
	assert.False(t, EventLogType("SOMETHING").Valid())
}
