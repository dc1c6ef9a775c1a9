package dto

import (
	"mediamatrixhub/internal/models"
)

// SubscriberLoginRequest is bound from the self-service login form.
type SubscriberLoginRequest struct {
	Matricola string `form:"matricola" json:"matricola" binding:"required,max=255" validate:"matricola"`
	Email     string `form:"email" json:"email" binding:"required,email,max=255"`
}

type SubscriberSession struct {
	Subscriber *models.Subscriber `json:"subscriber"`
	Token      string             `json:"token"`
}

type DashboardEvent struct {
	Event      models.InformationEvent `json:"event"`
	Subscribed bool                    `json:"subscribed"`
}

type Dashboard struct {
	Subscriber *models.Subscriber `json:"subscriber"`
	Events     []DashboardEvent   `json:"events"`
}

type SubscriptionChanges struct {
	Added   []uint `json:"added"`
	Removed []uint `json:"removed"`
}

type LookupResponse struct {
	Found   bool   `json:"found"`
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`
	Enabled bool   `json:"enabled"`
}

// ImportReport summarises a person dump import.
type ImportReport struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	NotValid []string `json:"not_valid"`
	Disabled int      `json:"disabled"`
}

type EventRequest struct {
	Title              string `json:"title" binding:"required,max=255"`
	Description        string `json:"description"`
	EventDate          string `json:"event_date" binding:"required,datetime=2006-01-02"`
	EventStartTime     string `json:"event_start_time" binding:"omitempty,datetime=15:04"`
	DurationMinutes    int    `json:"duration_minutes" binding:"gte=0"`
	MeetingURL         string `json:"meeting_url" binding:"omitempty,url"`
	Speaker            string `json:"speaker"`
	StructureName      string `json:"structure_name"`
	StructureMatricola string `json:"structure_matricola"`
	Enabled            *bool  `json:"enabled"`
}

type NotifyRequest struct {
	Days  *int `json:"days"`
	Debug bool `json:"debug"`
}

// NotificationReport is the outcome of one reminder or notice batch.
type NotificationReport struct {
	Events []EventDispatch `json:"events"`
	Debug  bool            `json:"debug"`
}

type EventDispatch struct {
	EventID uint     `json:"event_id"`
	Title   string   `json:"title"`
	Sent    int      `json:"sent"`
	Failed  []string `json:"failed,omitempty"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type DepartmentReport struct {
	Event  *models.InformationEvent `json:"event"`
	Counts []DepartmentCount        `json:"counts"`
	Sent   bool                     `json:"sent"`
}

type EventLogQuery struct {
	EventType models.EventLogType `form:"event_type" validate:"omitempty,is-event-log-type"`
	Target    string              `form:"target"`
	Page      int                 `form:"page"`
	PageSize  int                 `form:"page_size"`
}
