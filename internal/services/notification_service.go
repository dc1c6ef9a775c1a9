package services

import (
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/directory"
	"mediamatrixhub/internal/email"
	"mediamatrixhub/internal/locale"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	DefaultReminderDays = 1
	DefaultNoticeDays   = 0

	reminderSubject        = "Promemoria per la prossima pillola informativa"
	reminderSummarySubject = "Resoconto invio email promemoria per la prossima pillola informativa"
	noticeSubject          = "Rinvio pillola informativa"
	noticeSummarySubject   = "Resoconto invio email agli iscritti della prossima pillola informativa"
)

type NotificationService interface {
	SendReminders(ctx context.Context, db *gorm.DB, days *int, debug bool) (*dto.NotificationReport, error)
	SendPostponementNotice(ctx context.Context, db *gorm.DB, days *int, debug bool) (*dto.NotificationReport, error)
	DepartmentReport(ctx context.Context, db *gorm.DB, persons directory.Persons, sendEmail bool) (*dto.DepartmentReport, error)
}

type NotificationServiceImpl struct {
	eventRepo         repositories.EventRepository
	participationRepo repositories.ParticipationRepository
	eventLogRepo      repositories.EventLogRepository
	mailer            email.Provider
	cfg               *config.Config
	loc               *time.Location
	now               func() time.Time
}

func NewNotificationService(
	eventRepo repositories.EventRepository,
	participationRepo repositories.ParticipationRepository,
	eventLogRepo repositories.EventLogRepository,
	mailer email.Provider,
	cfg *config.Config,
	loc *time.Location,
) NotificationService {
	if loc == nil {
		loc = time.Local
	}
	return &NotificationServiceImpl{
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		eventLogRepo:      eventLogRepo,
		mailer:            mailer,
		cfg:               cfg,
		loc:               loc,
		now:               time.Now,
	}
}

func (s *NotificationServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

// batch describes one kind of per-participant mailing.
type batch struct {
	template       string
	subject        string
	logType        models.EventLogType
	summarySubject string
	summaryFormat  string // count, title, date
}

var (
	reminderBatch = batch{
		template:       email.TemplateEventReminder,
		subject:        reminderSubject,
		logType:        models.EventLogReminderEmailSent,
		summarySubject: reminderSummarySubject,
		summaryFormat:  "Promemoria inviato a %s iscritti per l'evento %s del %s.",
	}
	noticeBatch = batch{
		template:       email.TemplateEventPostponement,
		subject:        noticeSubject,
		logType:        models.EventLogNoticeEmailSent,
		summarySubject: noticeSummarySubject,
		summaryFormat:  "Messaggio inviato a %s iscritti per l'evento %s del %s.",
	}
)

// lookAhead resolves the optional days flag; nil or negative means def.
func lookAhead(days *int, def int) int {
	if days == nil || *days < 0 {
		return def
	}
	return *days
}

func (s *NotificationServiceImpl) SendReminders(ctx context.Context, db *gorm.DB, days *int, debug bool) (*dto.NotificationReport, error) {
	return s.run(ctx, db, reminderBatch, lookAhead(days, DefaultReminderDays), debug)
}

func (s *NotificationServiceImpl) SendPostponementNotice(ctx context.Context, db *gorm.DB, days *int, debug bool) (*dto.NotificationReport, error) {
	return s.run(ctx, db, noticeBatch, lookAhead(days, DefaultNoticeDays), debug)
}

func (s *NotificationServiceImpl) run(ctx context.Context, db *gorm.DB, b batch, days int, debug bool) (*dto.NotificationReport, error) {
	target := locale.DaysFrom(s.now(), days, s.loc)
	targetStr := locale.LongDate(target)

	events, err := s.eventRepo.EnabledOn(db, target)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	report := &dto.NotificationReport{Events: []dto.EventDispatch{}, Debug: debug}
	if len(events) == 0 {
		logger.CtxInfo(ctx, "no enabled events found", "day", targetStr, "template", b.template)
		return report, nil
	}

	for i := range events {
		event := &events[i]
		participations, err := s.participationRepo.ListByEvent(db, event.ID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		dispatch := dto.EventDispatch{EventID: event.ID, Title: event.Title}
		if len(participations) == 0 {
			logger.CtxInfo(ctx, "no subscribers found for event", "event_id", event.ID)
			report.Events = append(report.Events, dispatch)
			continue
		}

		for _, p := range participations {
			if p.Subscriber == nil {
				continue
			}
			if err := s.notify(ctx, db, b, event, p.Subscriber, targetStr, debug); err != nil {
				dispatch.Failed = append(dispatch.Failed, p.Subscriber.Email)
				continue
			}
			dispatch.Sent++
		}
		logger.CtxInfo(ctx, "event mailing done",
			"event_id", event.ID, "template", b.template, "sent", dispatch.Sent, "failed", len(dispatch.Failed), "debug", debug)
		report.Events = append(report.Events, dispatch)

		// The summary counts every subscriber a message was attempted for.
		if !debug {
			s.sendSummary(ctx, b, event, dispatch.Sent+len(dispatch.Failed), targetStr)
		}
	}
	return report, nil
}

func (s *NotificationServiceImpl) notify(ctx context.Context, db *gorm.DB, b batch, event *models.InformationEvent, sub *models.Subscriber, targetStr string, debug bool) error {
	data := email.TemplateData{
		"Subscriber":            sub.String(),
		"Event":                 event,
		"EventHTMLTable":        template.HTML(event.ToHTMLTableEmail()),
		"TomorrowStr":           targetStr,
		"ApplicationTitle":      s.cfg.ApplicationTitle,
		"TechnicalContact":      s.cfg.Email.TechnicalContact,
		"TechnicalContactEmail": s.cfg.Email.TechnicalContactEmail,
		"RegistrationURL":       s.cfg.Registration.RegistrationURL,
		"VideotecaURL":          s.cfg.Registration.VideotecaURL,
	}
	subject := s.cfg.Subject(b.subject)

	if debug {
		logger.CtxInfo(ctx, "debug mode: fake sending email", "to", sub.Email, "template", b.template, "event_id", event.ID)
		return nil
	}

	msg := &email.Email{To: []string{sub.Email}, Subject: subject}
	if s.cfg.Email.DebugEmail != "" {
		msg.Bcc = []string{s.cfg.Email.DebugEmail}
	}
	err := s.mailer.SendTemplateMessage(ctx, msg, b.template, data)
	if err != nil {
		logger.CtxWithError(ctx, "error sending email", err, "to", sub.Email, "event_id", event.ID)
		s.log(ctx, db, &models.EventLog{
			EventType:   models.EventLogErrorSendingEmail,
			EventTitle:  "Error sending email to " + sub.Email,
			EventData:   fmt.Sprintf("Error sending email to %s: %v", sub.Email, err),
			EventTarget: sub.Email,
		})
		return err
	}
	s.log(ctx, db, &models.EventLog{
		EventType:   b.logType,
		EventTitle:  subject,
		EventData:   fmt.Sprintf("subscriber: %s email: %s event: #%d %s", sub.String(), sub.Email, event.ID, event.Title),
		EventTarget: sub.Email,
	})
	return nil
}

func (s *NotificationServiceImpl) sendSummary(ctx context.Context, b batch, event *models.InformationEvent, attempted int, targetStr string) {
	if s.cfg.Email.DebugEmail == "" {
		return
	}
	body := fmt.Sprintf(b.summaryFormat, locale.Number(int64(attempted)), event.Title, targetStr)
	err := s.mailer.Send(ctx, &email.Email{
		To:       []string{s.cfg.Email.DebugEmail},
		Subject:  s.cfg.Subject(b.summarySubject),
		HTMLBody: body,
		Template: b.template + "_summary",
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to send mailing summary", err, "event_id", event.ID)
	}
}

func (s *NotificationServiceImpl) DepartmentReport(ctx context.Context, db *gorm.DB, persons directory.Persons, sendEmail bool) (*dto.DepartmentReport, error) {
	event, err := s.eventRepo.Latest(db)
	if err != nil {
		return nil, eventError(err)
	}
	participations, err := s.participationRepo.ListByEvent(db, event.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	counts := CountDepartments(persons, participations)
	report := &dto.DepartmentReport{Event: event, Counts: counts}
	if !sendEmail {
		return report, nil
	}

	rows := make([]map[string]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, map[string]string{"Department": c.Department, "Count": locale.Number(int64(c.Count))})
	}
	title := fmt.Sprintf("Strutture di appartenenza degli iscritti alla pillola #%d %s", event.ID, event.Title)
	subject := s.cfg.Subject(title)
	err = s.mailer.SendTemplate(ctx, s.cfg.Email.MonitorAddresses, subject, email.TemplateDepartmentReport, email.TemplateData{
		"EventID":     event.ID,
		"EventTitle":  event.Title,
		"Rows":        rows,
		"GeneratedOn": locale.LongDate(locale.Day(s.now(), s.loc)),
	})
	if err != nil {
		return nil, apperrors.ErrEmailUnavailable.WithError(err)
	}
	s.log(ctx, db, &models.EventLog{
		EventType:   models.EventLogReportEmailSent,
		EventTitle:  subject,
		EventData:   fmt.Sprintf("departments: %d participants: %d", len(counts), len(participations)),
		EventTarget: strings.Join(s.cfg.Email.MonitorAddresses, ","),
	})
	report.Sent = true
	return report, nil
}

// CountDepartments groups participants by the department their email maps
// to in persons, sorted by department.
func CountDepartments(persons directory.Persons, participations []models.EventParticipation) []dto.DepartmentCount {
	index := persons.EmailIndex()
	byDept := map[string]int{}
	for _, p := range participations {
		if p.Subscriber == nil {
			continue
		}
		dept, ok := index[p.Subscriber.Email]
		if !ok {
			dept = directory.UnknownDepartment
		}
		byDept[dept]++
	}
	keys := make([]string, 0, len(byDept))
	for k := range byDept {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]dto.DepartmentCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, dto.DepartmentCount{Department: k, Count: byDept[k]})
	}
	return out
}

func (s *NotificationServiceImpl) log(ctx context.Context, db *gorm.DB, entry *models.EventLog) {
	if err := s.eventLogRepo.Create(db, entry); err != nil {
		logger.CtxWithError(ctx, "failed to write event log", err, "event_type", entry.EventType)
	}
}
