package services_test

import (
	"context"
	"testing"
	"time"

	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/directory"
	"mediamatrixhub/internal/email"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"
	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationService(t *testing.T, mailer email.Provider) services.NotificationService {
	t.Helper()
	cfg := config.Defaults()
	cfg.Email.SubjectPrefix = "[MMH]"
	cfg.Email.DebugEmail = "debug@example.org"
	cfg.Email.MonitorAddresses = []string{"monitor@example.org"}
	cfg.Email.TechnicalContact = "Servizio ICT"
	cfg.Registration.RegistrationURL = "https://example.org/registrazione/login/"

	svc := services.NewNotificationService(
		repositories.NewEventRepository(),
		repositories.NewParticipationRepository(),
		repositories.NewEventLogRepository(),
		mailer,
		cfg,
		time.UTC,
	)
	svc.(*services.NotificationServiceImpl).SetClock(fixedClock(testNow))
	return svc
}

func intPtr(n int) *int { return &n }

func TestSendRemindersTomorrow(t *testing.T) {
	db := helpers.NewTestDB(t)
	mailer := newFakeMailer()
	svc := newNotificationService(t, mailer)

	tomorrow := helpers.CreateEvent(t, db, "Posta certificata", testNow.AddDate(0, 0, 1), 10, 0)
	later := helpers.CreateEvent(t, db, "Più avanti", testNow.AddDate(0, 0, 2), 10, 0)
	anna := helpers.CreateSubscriber(t, db, "1", "anna@example.org", "Anna", "Bianchi")
	luca := helpers.CreateSubscriber(t, db, "2", "luca@example.org", "Luca", "Verdi")
	helpers.Subscribe(t, db, tomorrow, anna)
	helpers.Subscribe(t, db, tomorrow, luca)
	helpers.Subscribe(t, db, later, anna)

	report, err := svc.SendReminders(context.Background(), db, nil, false)
	require.NoError(t, err)
	require.Len(t, report.Events, 1)
	assert.Equal(t, dto.EventDispatch{EventID: tomorrow.ID, Title: "Posta certificata", Sent: 2}, report.Events[0])

	reminders := mailer.byTemplate(email.TemplateEventReminder)
	require.Len(t, reminders, 2)
	assert.Equal(t, "[MMH] Promemoria per la prossima pillola informativa", reminders[0].Subject)
	assert.Contains(t, reminders[0].HTMLBody, "Gentile Anna Bianchi")
	assert.Contains(t, reminders[0].HTMLBody, "giovedì 15 ottobre 2026")
	assert.Contains(t, reminders[0].HTMLBody, "<table", "event table must not be escaped")

	summaries := mailer.byTemplate(email.TemplateEventReminder + "_summary")
	require.Len(t, summaries, 1)
	assert.Equal(t, []string{"debug@example.org"}, summaries[0].To)
	assert.Equal(t, "[MMH] Resoconto invio email promemoria per la prossima pillola informativa", summaries[0].Subject)
	assert.Equal(t, "Promemoria inviato a 2 iscritti per l'evento Posta certificata del giovedì 15 ottobre 2026.", summaries[0].HTMLBody)

	assert.Len(t, eventLogs(t, db, models.EventLogReminderEmailSent), 2)
}

func TestSendRemindersDebugSendsNothing(t *testing.T) {
	db := helpers.NewTestDB(t)
	mailer := newFakeMailer()
	svc := newNotificationService(t, mailer)

	e := helpers.CreateEvent(t, db, "Pillola", testNow.AddDate(0, 0, 3), 10, 0)
	helpers.Subscribe(t, db, e, helpers.CreateSubscriber(t, db, "1", "a@example.org", "A", "B"))

	report, err := svc.SendReminders(context.Background(), db, intPtr(3), true)
	require.NoError(t, err)
	assert.True(t, report.Debug)
	require.Len(t, report.Events, 1)
	assert.Equal(t, 1, report.Events[0].Sent)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, eventLogs(t, db, models.EventLogReminderEmailSent))
}

func TestSendRemindersRecordsFailures(t *testing.T) {
	db := helpers.NewTestDB(t)
	mailer := newFakeMailer()
	mailer.failFor["broken@example.org"] = true
	svc := newNotificationService(t, mailer)

	e := helpers.CreateEvent(t, db, "Pillola", testNow.AddDate(0, 0, 1), 10, 0)
	helpers.Subscribe(t, db, e, helpers.CreateSubscriber(t, db, "1", "ok@example.org", "Ok", "Ok"))
	helpers.Subscribe(t, db, e, helpers.CreateSubscriber(t, db, "2", "broken@example.org", "Ko", "Ko"))

	report, err := svc.SendReminders(context.Background(), db, intPtr(-5), false)
	require.NoError(t, err)
	require.Len(t, report.Events, 1)
	assert.Equal(t, 1, report.Events[0].Sent)
	assert.Equal(t, []string{"broken@example.org"}, report.Events[0].Failed)

	failures := eventLogs(t, db, models.EventLogErrorSendingEmail)
	require.Len(t, failures, 1)
	assert.Equal(t, "broken@example.org", failures[0].EventTarget)

	summaries := mailer.byTemplate(email.TemplateEventReminder + "_summary")
	require.Len(t, summaries, 1)
	assert.Contains(t, summaries[0].HTMLBody, "Promemoria inviato a 2 iscritti", "failed attempts still count")
}

func TestSendRemindersNoEvents(t *testing.T) {
	db := helpers.NewTestDB(t)
	mailer := newFakeMailer()
	svc := newNotificationService(t, mailer)

	report, err := svc.SendReminders(context.Background(), db, nil, false)
	require.NoError(t, err)
	assert.Empty(t, report.Events)
	assert.Empty(t, mailer.sent)
}

func TestSendPostponementNoticeDefaultsToToday(t *testing.T) {
	db := helpers.NewTestDB(t)
	mailer := newFakeMailer()
	svc := newNotificationService(t, mailer)

	today := helpers.CreateEvent(t, db, "Oggi", testNow, 15, 0)
	helpers.CreateEvent(t, db, "Domani", testNow.AddDate(0, 0, 1), 15, 0)
	helpers.Subscribe(t, db, today, helpers.CreateSubscriber(t, db, "1", "a@example.org", "A", "B"))

	report, err := svc.SendPostponementNotice(context.Background(), db, nil, false)
	require.NoError(t, err)
	require.Len(t, report.Events, 1)
	assert.Equal(t, today.ID, report.Events[0].EventID)

	notices := mailer.byTemplate(email.TemplateEventPostponement)
	require.Len(t, notices, 1)
	assert.Equal(t, "[MMH] Rinvio pillola informativa", notices[0].Subject)
	assert.Equal(t, []string{"a@example.org"}, notices[0].To)
	assert.Equal(t, []string{"debug@example.org"}, notices[0].Bcc)

	summaries := mailer.byTemplate(email.TemplateEventPostponement + "_summary")
	require.Len(t, summaries, 1)
	assert.Equal(t, "Messaggio inviato a 1 iscritti per l'evento Oggi del mercoledì 14 ottobre 2026.", summaries[0].HTMLBody)
	assert.Len(t, eventLogs(t, db, models.EventLogNoticeEmailSent), 1)
}

func TestDepartmentReport(t *testing.T) {
	db := helpers.NewTestDB(t)
	mailer := newFakeMailer()
	svc := newNotificationService(t, mailer)

	helpers.CreateEvent(t, db, "Vecchia", testNow.AddDate(0, 0, -7), 10, 0)
	latest := helpers.CreateEvent(t, db, "Ultima", testNow.AddDate(0, 0, 7), 10, 0)
	for _, s := range []struct{ m, e string }{
		{"1", "a@example.org"}, {"2", "b@example.org"}, {"3", "c@example.org"}, {"4", "ghost@example.org"},
	} {
		helpers.Subscribe(t, db, latest, helpers.CreateSubscriber(t, db, s.m, s.e, "N", "S"))
	}
	persons := directory.Persons{
		"p1": {"1", "a@example.org", "", "S", "N", "", "UFFICIO B"},
		"p2": {"2", "b@example.org", "", "S", "N", "", "UFFICIO A"},
		"p3": {"3", "c@example.org", "", "S", "N", "", "UFFICIO B"},
	}

	report, err := svc.DepartmentReport(context.Background(), db, persons, false)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, report.Event.ID)
	assert.Equal(t, []dto.DepartmentCount{
		{Department: directory.UnknownDepartment, Count: 1},
		{Department: "UFFICIO A", Count: 1},
		{Department: "UFFICIO B", Count: 2},
	}, report.Counts)
	assert.False(t, report.Sent)
	assert.Empty(t, mailer.sent)

	report, err = svc.DepartmentReport(context.Background(), db, persons, true)
	require.NoError(t, err)
	assert.True(t, report.Sent)
	sent := mailer.byTemplate(email.TemplateDepartmentReport)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"monitor@example.org"}, sent[0].To)
	assert.Contains(t, sent[0].HTMLBody, "UFFICIO B: 2<br>")
	assert.Contains(t, sent[0].HTMLBody, "Report generato il mercoledì 14 ottobre 2026.")
	assert.Len(t, eventLogs(t, db, models.EventLogReportEmailSent), 1)
}

func TestDepartmentReportWithoutEvents(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newNotificationService(t, newFakeMailer())

	_, err := svc.DepartmentReport(context.Background(), db, directory.Persons{}, false)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}
