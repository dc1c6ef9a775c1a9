package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mediamatrixhub/internal/auth"
	"mediamatrixhub/internal/directory"
	"mediamatrixhub/internal/locale"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/metrics"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegistrationSettings carries the configuration the self-service flow needs.
type RegistrationSettings struct {
	SessionTTL time.Duration
	// CalendarHost is the domain part of calendar UIDs.
	CalendarHost string
	Organizer    string
	Location     *time.Location
}

type RegistrationService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.SubscriberLoginRequest) (*dto.SubscriberSession, error)
	Logout(ctx context.Context, db *gorm.DB, subscriberID uint) error
	// Authenticate resolves a session token to an enabled subscriber.
	Authenticate(db *gorm.DB, token string) (*models.Subscriber, error)
	Dashboard(db *gorm.DB, subscriberID uint) (*dto.Dashboard, error)
	UpdateSubscriptions(ctx context.Context, db *gorm.DB, subscriberID uint, selected []uint) (*dto.SubscriptionChanges, error)
	Lookup(db *gorm.DB, matricola, email string) (*dto.LookupResponse, error)
	EventICS(db *gorm.DB, refToken string) ([]byte, *models.InformationEvent, error)

	ImportPersonDump(ctx context.Context, db *gorm.DB, persons directory.Persons, reset bool) (*dto.ImportReport, error)
	ListEnabledEvents(db *gorm.DB) ([]models.InformationEvent, []string, error)

	ListEvents(db *gorm.DB, page repositories.Page) ([]models.InformationEvent, int64, error)
	GetEvent(db *gorm.DB, id uint) (*models.InformationEvent, error)
	CreateEvent(db *gorm.DB, req *dto.EventRequest) (*models.InformationEvent, error)
	UpdateEvent(db *gorm.DB, id uint, req *dto.EventRequest) (*models.InformationEvent, error)
	DeleteEvent(db *gorm.DB, id uint) error
	Participants(db *gorm.DB, eventID uint) ([]models.EventParticipation, error)
	ListSubscribers(db *gorm.DB, query string, page repositories.Page) ([]models.Subscriber, int64, error)
	EventLogs(db *gorm.DB, query *dto.EventLogQuery) ([]models.EventLog, int64, error)
}

type RegistrationServiceImpl struct {
	subscriberRepo    repositories.SubscriberRepository
	eventRepo         repositories.EventRepository
	participationRepo repositories.ParticipationRepository
	eventLogRepo      repositories.EventLogRepository
	tokens            *auth.TokenManager
	settings          RegistrationSettings
	now               func() time.Time
}

func NewRegistrationService(
	subscriberRepo repositories.SubscriberRepository,
	eventRepo repositories.EventRepository,
	participationRepo repositories.ParticipationRepository,
	eventLogRepo repositories.EventLogRepository,
	tokens *auth.TokenManager,
	settings RegistrationSettings,
) RegistrationService {
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 4 * 7 * 24 * time.Hour
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	return &RegistrationServiceImpl{
		subscriberRepo:    subscriberRepo,
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		eventLogRepo:      eventLogRepo,
		tokens:            tokens,
		settings:          settings,
		now:               time.Now,
	}
}

// SetClock replaces the time source.
func (s *RegistrationServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

func (s *RegistrationServiceImpl) today() time.Time {
	return locale.Day(s.now(), s.settings.Location)
}

func (s *RegistrationServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.SubscriberLoginRequest) (*dto.SubscriberSession, error) {
	matricola := strings.TrimSpace(req.Matricola)
	email := strings.TrimSpace(req.Email)

	sub, err := s.subscriberRepo.FindByCredentials(db, matricola, email)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriberNotFound) {
			return nil, apperrors.ErrInvalidSubscriberCredentials
		}
		return nil, apperrors.DatabaseError(err)
	}
	if !sub.Enabled {
		return nil, apperrors.ErrInvalidSubscriberCredentials
	}

	token, err := s.tokens.GenerateSubscriberToken(sub.ID, s.settings.SessionTTL)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.audit(ctx, db, models.EventLogLogin, "login", fmt.Sprintf("matricola=%s", sub.Matricola), sub.Email)
	return &dto.SubscriberSession{Subscriber: sub, Token: token}, nil
}

func (s *RegistrationServiceImpl) Logout(ctx context.Context, db *gorm.DB, subscriberID uint) error {
	sub, err := s.subscriberRepo.FindByID(db, subscriberID)
	if err != nil {
		return subscriberError(err)
	}
	s.audit(ctx, db, models.EventLogLogout, "logout", fmt.Sprintf("matricola=%s", sub.Matricola), sub.Email)
	return nil
}

func (s *RegistrationServiceImpl) Authenticate(db *gorm.DB, token string) (*models.Subscriber, error) {
	claims, err := s.tokens.ParseKind(token, auth.KindSubscriber)
	if err != nil {
		return nil, apperrors.ErrSubscriberNotFound.WithError(err)
	}
	sub, err := s.subscriberRepo.FindByID(db, claims.UserID)
	if err != nil {
		return nil, subscriberError(err)
	}
	if !sub.Enabled {
		return nil, apperrors.ErrSubscriberNotFound
	}
	return sub, nil
}

func (s *RegistrationServiceImpl) Dashboard(db *gorm.DB, subscriberID uint) (*dto.Dashboard, error) {
	sub, err := s.subscriberRepo.FindByID(db, subscriberID)
	if err != nil {
		return nil, subscriberError(err)
	}
	events, err := s.eventRepo.Upcoming(db, s.today())
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	subscribed, err := s.participationRepo.EventIDsBySubscriber(db, subscriberID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	set := make(map[uint]bool, len(subscribed))
	for _, id := range subscribed {
		set[id] = true
	}

	out := &dto.Dashboard{Subscriber: sub, Events: make([]dto.DashboardEvent, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, dto.DashboardEvent{Event: e, Subscribed: set[e.ID]})
	}
	return out, nil
}

func (s *RegistrationServiceImpl) UpdateSubscriptions(ctx context.Context, db *gorm.DB, subscriberID uint, selected []uint) (*dto.SubscriptionChanges, error) {
	sub, err := s.subscriberRepo.FindByID(db, subscriberID)
	if err != nil {
		return nil, subscriberError(err)
	}
	want := make(map[uint]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}

	changes := &dto.SubscriptionChanges{Added: []uint{}, Removed: []uint{}}
	var logs []models.EventLog
	err = db.Transaction(func(tx *gorm.DB) error {
		upcoming, err := s.eventRepo.Upcoming(tx, s.today())
		if err != nil {
			return err
		}
		for _, e := range upcoming {
			data := fmt.Sprintf("event_id=%d matricola=%s", e.ID, sub.Matricola)
			if want[e.ID] {
				created, err := s.participationRepo.Add(tx, e.ID, sub.ID)
				if err != nil {
					return err
				}
				if created {
					changes.Added = append(changes.Added, e.ID)
					logs = append(logs, models.EventLog{EventType: models.EventLogSubscriptionAdded, EventTitle: e.Title, EventData: data, EventTarget: sub.Email})
				}
				continue
			}
			removed, err := s.participationRepo.Remove(tx, e.ID, sub.ID)
			if err != nil {
				return err
			}
			if removed {
				changes.Removed = append(changes.Removed, e.ID)
				logs = append(logs, models.EventLog{EventType: models.EventLogSubscriptionRemoved, EventTitle: e.Title, EventData: data, EventTarget: sub.Email})
			}
		}
		for i := range logs {
			if err := s.eventLogRepo.Create(tx, &logs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	metrics.SubscriptionChangesTotal.WithLabelValues("added").Add(float64(len(changes.Added)))
	metrics.SubscriptionChangesTotal.WithLabelValues("removed").Add(float64(len(changes.Removed)))
	logger.CtxInfo(logger.WithSubscriberID(ctx, sub.ID), "subscriptions updated",
		"added", changes.Added, "removed", changes.Removed)
	return changes, nil
}

func (s *RegistrationServiceImpl) Lookup(db *gorm.DB, matricola, email string) (*dto.LookupResponse, error) {
	sub, err := s.subscriberRepo.FindByCredentials(db, strings.TrimSpace(matricola), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriberNotFound) {
			return &dto.LookupResponse{Found: false}, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &dto.LookupResponse{Found: true, Name: sub.Name, Surname: sub.Surname, Enabled: sub.Enabled}, nil
}

func (s *RegistrationServiceImpl) EventICS(db *gorm.DB, refToken string) ([]byte, *models.InformationEvent, error) {
	if _, err := uuid.Parse(refToken); err != nil {
		return nil, nil, apperrors.ErrEventNotFound
	}
	e, err := s.eventRepo.FindByRefToken(db, refToken)
	if err != nil {
		return nil, nil, eventError(err)
	}
	return []byte(BuildEventCalendar(e, s.settings, s.now())), e, nil
}

// BuildEventCalendar renders e as a single-event PUBLISH calendar.
func BuildEventCalendar(e *models.InformationEvent, settings RegistrationSettings, stamp time.Time) string {
	loc := settings.Location
	if loc == nil {
		loc = time.Local
	}
	host := settings.CalendarHost
	if host == "" {
		host = "localhost"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//MediaMatrixHub//Pillole informative//IT")

	event := cal.AddEvent(e.RefToken + "@" + host)
	event.SetDtStampTime(stamp.UTC())
	event.SetStartAt(e.StartsAt(loc).UTC())
	event.SetEndAt(e.EndsAt(loc).UTC())
	event.SetSummary(e.Title)
	if e.Description != "" {
		event.SetDescription(e.Description)
	}
	if e.MeetingURL != "" {
		event.SetLocation(e.MeetingURL)
		event.SetURL(e.MeetingURL)
	}
	if settings.Organizer != "" {
		event.SetOrganizer("mailto:" + settings.Organizer)
	}
	return cal.Serialize()
}

// CalendarHost extracts the host name of baseURL.
func CalendarHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}

func (s *RegistrationServiceImpl) ImportPersonDump(ctx context.Context, db *gorm.DB, persons directory.Persons, reset bool) (*dto.ImportReport, error) {
	report := &dto.ImportReport{NotValid: []string{}}
	err := db.Transaction(func(tx *gorm.DB) error {
		if reset {
			if err := s.subscriberRepo.DeleteAll(tx); err != nil {
				return err
			}
			logger.CtxInfo(ctx, "all subscribers deleted before import")
		}

		inDump := make(map[string]bool, len(persons))
		for _, key := range persons.Keys() {
			rec := persons[key]
			matricola := rec.Field(directory.PersonMatricola)
			email := rec.Field(directory.PersonEmail)
			inDump[matricola] = true

			if email == "" {
				report.NotValid = append(report.NotValid, key)
				continue
			}
			exists, err := s.subscriberRepo.Exists(tx, matricola, email)
			if err != nil {
				return err
			}
			if exists {
				report.Existing++
				continue
			}
			sub := &models.Subscriber{
				Matricola: matricola,
				Email:     email,
				Surname:   rec.Field(directory.PersonSurname),
				Name:      rec.Field(directory.PersonName),
				Enabled:   true,
			}
			if err := s.subscriberRepo.Create(tx, sub); err != nil {
				return fmt.Errorf("create subscriber %s: %w", matricola, err)
			}
			report.Created++
		}

		enabled, err := s.subscriberRepo.ListEnabled(tx)
		if err != nil {
			return err
		}
		var stale []uint
		for _, sub := range enabled {
			if !inDump[sub.Matricola] {
				stale = append(stale, sub.ID)
			}
		}
		if err := s.subscriberRepo.Disable(tx, stale); err != nil {
			return err
		}
		report.Disabled = len(stale)
		return nil
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	logger.CtxInfo(ctx, "person dump imported",
		"created", report.Created, "existing", report.Existing,
		"not_valid", len(report.NotValid), "disabled", report.Disabled)
	return report, nil
}

func (s *RegistrationServiceImpl) ListEnabledEvents(db *gorm.DB) ([]models.InformationEvent, []string, error) {
	events, err := s.eventRepo.EnabledChronological(db)
	if err != nil {
		return nil, nil, apperrors.DatabaseError(err)
	}
	lines := make([]string, 0, len(events))
	for i := range events {
		lines = append(lines, EnabledEventLine(&events[i]))
	}
	return events, lines, nil
}

// EnabledEventLine formats "#id, title, date: N iscrizioni".
func EnabledEventLine(e *models.InformationEvent) string {
	return fmt.Sprintf("#%d, %s, %s: %d iscrizioni", e.ID, e.Title, e.FormattedDate(), e.ParticipationCount)
}

func (s *RegistrationServiceImpl) ListEvents(db *gorm.DB, page repositories.Page) ([]models.InformationEvent, int64, error) {
	events, total, err := s.eventRepo.List(db, page)
	if err != nil {
		return nil, 0, apperrors.DatabaseError(err)
	}
	return events, total, nil
}

func (s *RegistrationServiceImpl) GetEvent(db *gorm.DB, id uint) (*models.InformationEvent, error) {
	e, err := s.eventRepo.FindByID(db, id)
	if err != nil {
		return nil, eventError(err)
	}
	return e, nil
}

func (s *RegistrationServiceImpl) CreateEvent(db *gorm.DB, req *dto.EventRequest) (*models.InformationEvent, error) {
	e := &models.InformationEvent{Enabled: true, RefToken: uuid.NewString()}
	if err := applyEventRequest(e, req); err != nil {
		return nil, err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.eventRepo.Create(tx, e); err != nil {
			return err
		}
		if req.Enabled != nil && !*req.Enabled {
			return tx.Model(e).Update("enabled", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, eventError(err)
	}
	return s.GetEvent(db, e.ID)
}

func (s *RegistrationServiceImpl) UpdateEvent(db *gorm.DB, id uint, req *dto.EventRequest) (*models.InformationEvent, error) {
	e, err := s.eventRepo.FindByID(db, id)
	if err != nil {
		return nil, eventError(err)
	}
	if err := applyEventRequest(e, req); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(db, e); err != nil {
		return nil, eventError(err)
	}
	return s.GetEvent(db, id)
}

func (s *RegistrationServiceImpl) DeleteEvent(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return s.eventRepo.Delete(tx, id)
	})
	if err != nil {
		return eventError(err)
	}
	return nil
}

func (s *RegistrationServiceImpl) Participants(db *gorm.DB, eventID uint) ([]models.EventParticipation, error) {
	if _, err := s.eventRepo.FindByID(db, eventID); err != nil {
		return nil, eventError(err)
	}
	out, err := s.participationRepo.ListByEvent(db, eventID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return out, nil
}

func (s *RegistrationServiceImpl) ListSubscribers(db *gorm.DB, query string, page repositories.Page) ([]models.Subscriber, int64, error) {
	out, total, err := s.subscriberRepo.List(db, strings.TrimSpace(query), page)
	if err != nil {
		return nil, 0, apperrors.DatabaseError(err)
	}
	return out, total, nil
}

func (s *RegistrationServiceImpl) EventLogs(db *gorm.DB, query *dto.EventLogQuery) ([]models.EventLog, int64, error) {
	filter := repositories.EventLogFilter{EventType: query.EventType, Target: query.Target}
	out, total, err := s.eventLogRepo.Recent(db, filter, repositories.Page{Page: query.Page, PageSize: query.PageSize})
	if err != nil {
		return nil, 0, apperrors.DatabaseError(err)
	}
	return out, total, nil
}

// audit stores an EventLog row; failures are logged, never returned.
func (s *RegistrationServiceImpl) audit(ctx context.Context, db *gorm.DB, kind models.EventLogType, title, data, target string) {
	entry := &models.EventLog{EventType: kind, EventTitle: title, EventData: data, EventTarget: target}
	if err := s.eventLogRepo.Create(db, entry); err != nil {
		logger.CtxWithError(ctx, "failed to write event log", err, "event_type", kind)
	}
}

func applyEventRequest(e *models.InformationEvent, req *dto.EventRequest) error {
	day, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return apperrors.ValidationError(map[string]string{"event_date": "expected YYYY-MM-DD"})
	}
	e.EventDate = day
	e.EventStartTime = nil
	if req.EventStartTime != "" {
		t, err := time.Parse("15:04", req.EventStartTime)
		if err != nil {
			return apperrors.ValidationError(map[string]string{"event_start_time": "expected HH:MM"})
		}
		start := datatypes.NewTime(t.Hour(), t.Minute(), 0, 0)
		e.EventStartTime = &start
	}
	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.DurationMinutes = req.DurationMinutes
	if e.DurationMinutes == 0 {
		e.DurationMinutes = 60
	}
	e.MeetingURL = req.MeetingURL
	e.Speaker = req.Speaker
	e.StructureName = req.StructureName
	e.StructureMatricola = req.StructureMatricola
	if req.Enabled != nil {
		e.Enabled = *req.Enabled
	}
	return nil
}

func subscriberError(err error) error {
	if errors.Is(err, repositories.ErrSubscriberNotFound) {
		return apperrors.ErrSubscriberNotFound
	}
	return apperrors.DatabaseError(err)
}

func eventError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repositories.ErrEventNotFound):
		return apperrors.ErrEventNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.ErrAlreadyExists(err)
	default:
		return apperrors.DatabaseError(err)
	}
}
