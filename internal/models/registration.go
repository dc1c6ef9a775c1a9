package models

import (
	"fmt"
	"html"
	"strings"
	"time"

	"mediamatrixhub/internal/locale"

	"gorm.io/datatypes"
)

// EnabledEventsOrder is the default ordering of the enabled-events listing:
// latest first.
const EnabledEventsOrder = "event_date DESC, event_start_time DESC"

// InformationEvent is a scheduled "pillola informativa" webinar.
type InformationEvent struct {
	BaseModel
	EventDate          time.Time       `gorm:"type:date;not null;index" json:"event_date"`
	EventStartTime     *datatypes.Time `gorm:"type:time" json:"event_start_time"`
	DurationMinutes    int             `gorm:"default:60" json:"duration_minutes"`
	MeetingURL         string          `gorm:"size:255" json:"meeting_url"`
	Speaker            string          `gorm:"size:255" json:"speaker"`
	StructureName      string          `gorm:"size:255" json:"structure_name"`
	StructureMatricola string          `gorm:"size:255" json:"structure_matricola"`
	Title              string          `gorm:"size:255;not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Enabled            bool            `gorm:"default:true;index" json:"enabled"`
	RefToken           string          `gorm:"size:36;uniqueIndex;not null" json:"ref_token"`

	Participations []EventParticipation `gorm:"foreignKey:EventID" json:"-"`

	// ParticipationCount is filled by queries that annotate it.
	ParticipationCount int64 `gorm:"->;-:migration" json:"participation_count"`
}

func (e *InformationEvent) String() string {
	return e.Title
}

// StartOffset is the time of day the event starts at.
func (e *InformationEvent) StartOffset() time.Duration {
	if e.EventStartTime == nil {
		return 0
	}
	return time.Duration(*e.EventStartTime)
}

// StartsAt combines date and start time in loc.
func (e *InformationEvent) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	d := e.EventDate
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Add(e.StartOffset())
}

// EndsAt is StartsAt plus the configured duration (one hour when unset).
func (e *InformationEvent) EndsAt(loc *time.Location) time.Time {
	minutes := e.DurationMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return e.StartsAt(loc).Add(time.Duration(minutes) * time.Minute)
}

// FormattedDate is the long Italian date or "N/A".
func (e *InformationEvent) FormattedDate() string {
	if e.EventDate.IsZero() {
		return "N/A"
	}
	return locale.LongDate(e.EventDate)
}

// FormattedStartTime is HH:MM or "N/A".
func (e *InformationEvent) FormattedStartTime() string {
	if e.EventStartTime == nil {
		return "N/A"
	}
	return locale.ClockTime(e.StartOffset())
}

// ToHTMLTableEmail renders the event as an inline-styled table for emails.
func (e *InformationEvent) ToHTMLTableEmail() string {
	rows := [][2]string{
		{"Titolo", html.EscapeString(e.Title)},
		{"Data", html.EscapeString(e.FormattedDate())},
		{"Ora inizio", html.EscapeString(e.FormattedStartTime())},
		{"Speaker", html.EscapeString(e.Speaker)},
		{"Struttura", html.EscapeString(e.StructureName)},
	}
	if e.MeetingURL != "" {
		u := html.EscapeString(e.MeetingURL)
		rows = append(rows, [2]string{"Link per partecipare", fmt.Sprintf(`<a href="%s">%s</a>`, u, u)})
	}
	if e.Description != "" {
		rows = append(rows, [2]string{"Descrizione", html.EscapeString(e.Description)})
	}

	var b strings.Builder
	b.WriteString(`<table style="border-collapse: collapse; border: 1px solid #cccccc;">`)
	for _, r := range rows {
		b.WriteString(`<tr><th style="text-align: left; padding: 4px 8px; border: 1px solid #cccccc;">`)
		b.WriteString(r[0])
		b.WriteString(`</th><td style="padding: 4px 8px; border: 1px solid #cccccc;">`)
		b.WriteString(r[1])
		b.WriteString("</td></tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// Subscriber is an employee who signs up for events with matricola and email.
type Subscriber struct {
	BaseModel
	Email     string `gorm:"size:255;not null;uniqueIndex:idx_subscriber_matricola_email" json:"email"`
	Name      string `gorm:"size:255" json:"name"`
	Surname   string `gorm:"size:255" json:"surname"`
	Matricola string `gorm:"size:255;not null;uniqueIndex:idx_subscriber_matricola_email;index" json:"matricola"`
	Enabled   bool   `gorm:"default:true" json:"enabled"`
}

func (s *Subscriber) String() string {
	return fmt.Sprintf("%s %s", s.Name, s.Surname)
}

type EventParticipation struct {
	BaseModel
	EventID      uint              `gorm:"not null;uniqueIndex:idx_participation_event_subscriber" json:"event_id"`
	Event        *InformationEvent `gorm:"constraint:OnDelete:CASCADE" json:"event,omitempty"`
	SubscriberID uint              `gorm:"not null;uniqueIndex:idx_participation_event_subscriber;index" json:"subscriber_id"`
	Subscriber   *Subscriber       `gorm:"constraint:OnDelete:CASCADE" json:"subscriber,omitempty"`
}

func (p *EventParticipation) String() string {
	if p.Subscriber == nil {
		return fmt.Sprintf("participation #%d", p.ID)
	}
	return p.Subscriber.String()
}

// EventLog is the audit trail of registration activity and outgoing emails.
type EventLog struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
	EventType   EventLogType `gorm:"type:varchar(40);not null;index" json:"event_type"`
	EventTitle  string       `gorm:"size:255" json:"event_title"`
	EventData   string       `json:"event_data"`
	EventTarget string       `gorm:"size:255;index" json:"event_target"`
}

func (l *EventLog) String() string {
	return fmt.Sprintf("%s - %s", l.EventType, l.EventTitle)
}
