package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"mediamatrixhub/internal/auth"
	"mediamatrixhub/internal/directory"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"
	"mediamatrixhub/test/helpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRegistrationService(t *testing.T) (services.RegistrationService, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", "test")
	svc := services.NewRegistrationService(
		repositories.NewSubscriberRepository(),
		repositories.NewEventRepository(),
		repositories.NewParticipationRepository(),
		repositories.NewEventLogRepository(),
		tokens,
		services.RegistrationSettings{
			SessionTTL:   time.Hour,
			CalendarHost: "videoteca.example.org",
			Organizer:    "noreply@example.org",
			Location:     time.UTC,
		},
	)
	svc.(*services.RegistrationServiceImpl).SetClock(fixedClock(testNow))
	return svc, tokens
}

func eventLogs(t *testing.T, db *gorm.DB, kind models.EventLogType) []models.EventLog {
	t.Helper()
	var out []models.EventLog
	require.NoError(t, db.Where("event_type = ?", kind).Order("id").Find(&out).Error)
	return out
}

func TestSubscriberLogin(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	sub := helpers.CreateSubscriber(t, db, "123456", "mario.rossi@example.org", "Mario", "Rossi")

	session, err := svc.Login(context.Background(), db, &dto.SubscriberLoginRequest{Matricola: " 123456 ", Email: "mario.rossi@example.org"})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, session.Subscriber.ID)
	assert.NotEmpty(t, session.Token)

	got, err := svc.Authenticate(db, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "Mario Rossi", got.String())

	logs := eventLogs(t, db, models.EventLogLogin)
	require.Len(t, logs, 1)
	assert.Equal(t, "mario.rossi@example.org", logs[0].EventTarget)
}

func TestSubscriberLoginRejected(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	disabled := helpers.CreateSubscriber(t, db, "222", "off@example.org", "Off", "Line")
	require.NoError(t, db.Model(disabled).Update("enabled", false).Error)

	cases := []dto.SubscriberLoginRequest{
		{Matricola: "999", Email: "nobody@example.org"},
		{Matricola: "222", Email: "off@example.org"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), db, &req)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSubscriberCredentials)
		assert.Equal(t, "errore: matricola o email non validi", err.(*apperrors.AppError).Message)
	}
	assert.Empty(t, eventLogs(t, db, models.EventLogLogin))
}

func TestAuthenticateRejectsAdminTokens(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, tokens := newRegistrationService(t)
	helpers.CreateSubscriber(t, db, "1", "a@example.org", "A", "B")

	token, err := tokens.GenerateToken(1, models.UserRoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = svc.Authenticate(db, token)
	assert.ErrorIs(t, err, apperrors.ErrSubscriberNotFound)
}

func TestUpdateSubscriptionsOnlyTouchesUpcomingEvents(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	sub := helpers.CreateSubscriber(t, db, "1", "a@example.org", "Anna", "Bianchi")

	past := helpers.CreateEvent(t, db, "Passato", testNow.AddDate(0, 0, -3), 10, 0)
	today := helpers.CreateEvent(t, db, "Oggi", testNow, 15, 0)
	next := helpers.CreateEvent(t, db, "Prossimo", testNow.AddDate(0, 0, 7), 10, 0)
	helpers.Subscribe(t, db, past, sub)
	helpers.Subscribe(t, db, next, sub)

	changes, err := svc.UpdateSubscriptions(context.Background(), db, sub.ID, []uint{today.ID, past.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, []uint{today.ID}, changes.Added)
	assert.Equal(t, []uint{next.ID}, changes.Removed)

	ids, err := repositories.NewParticipationRepository().EventIDsBySubscriber(db, sub.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{past.ID, today.ID}, ids)

	assert.Len(t, eventLogs(t, db, models.EventLogSubscriptionAdded), 1)
	assert.Len(t, eventLogs(t, db, models.EventLogSubscriptionRemoved), 1)

	// Submitting the same selection again changes nothing.
	changes, err = svc.UpdateSubscriptions(context.Background(), db, sub.ID, []uint{today.ID})
	require.NoError(t, err)
	assert.Empty(t, changes.Added)
	assert.Empty(t, changes.Removed)
}

func TestDashboardFlagsSubscribedEvents(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	sub := helpers.CreateSubscriber(t, db, "1", "a@example.org", "Anna", "Bianchi")
	first := helpers.CreateEvent(t, db, "Primo", testNow.AddDate(0, 0, 1), 10, 0)
	helpers.CreateEvent(t, db, "Secondo", testNow.AddDate(0, 0, 2), 10, 0)
	helpers.CreateEvent(t, db, "Vecchio", testNow.AddDate(0, 0, -1), 10, 0)
	helpers.Subscribe(t, db, first, sub)

	dash, err := svc.Dashboard(db, sub.ID)
	require.NoError(t, err)
	require.Len(t, dash.Events, 2)
	assert.Equal(t, "Primo", dash.Events[0].Event.Title)
	assert.True(t, dash.Events[0].Subscribed)
	assert.False(t, dash.Events[1].Subscribed)
}

func TestLookup(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	helpers.CreateSubscriber(t, db, "42", "x@example.org", "Luca", "Verdi")

	found, err := svc.Lookup(db, "42", "x@example.org")
	require.NoError(t, err)
	assert.Equal(t, &dto.LookupResponse{Found: true, Name: "Luca", Surname: "Verdi", Enabled: true}, found)

	missing, err := svc.Lookup(db, "42", "other@example.org")
	require.NoError(t, err)
	assert.False(t, missing.Found)
}

func TestEventICS(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	e := helpers.CreateEvent(t, db, "Firma digitale", time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 10, 30)

	body, got, err := svc.EventICS(db, e.RefToken)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	ics := strings.ReplaceAll(string(body), "\r\n", "\n")
	assert.Contains(t, ics, "METHOD:PUBLISH")
	assert.Contains(t, ics, "UID:"+e.RefToken+"@videoteca.example.org")
	assert.Contains(t, ics, "DTSTART:20261015T103000Z")
	assert.Contains(t, ics, "DTEND:20261015T113000Z")
	assert.Contains(t, ics, "SUMMARY:Firma digitale")
	assert.Contains(t, ics, "ORGANIZER:mailto:noreply@example.org")
}

func TestEventICSNotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)

	for _, token := range []string{"not-a-uuid", uuid.NewString()} {
		_, _, err := svc.EventICS(db, token)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound, token)
	}
}

func TestImportPersonDump(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)

	helpers.CreateSubscriber(t, db, "100", "gia@example.org", "Già", "Presente")
	stale := helpers.CreateSubscriber(t, db, "900", "ex@example.org", "Ex", "Dipendente")
	blank := helpers.CreateSubscriber(t, db, "300", "prima@example.org", "Senza", "Email")

	persons := directory.Persons{
		"a": {"100", "gia@example.org", "", "Presente", "Già", "", "U1"},
		"b": {"200", "nuovo@example.org", "", "Nuovo", "Arrivato", "", "U2"},
		"c": {"300", "", "", "Email", "Senza", "", "U2"},
	}
	report, err := svc.ImportPersonDump(context.Background(), db, persons, false)
	require.NoError(t, err)
	assert.Equal(t, &dto.ImportReport{Created: 1, Existing: 1, NotValid: []string{"c"}, Disabled: 1}, report)

	var got models.Subscriber
	require.NoError(t, db.First(&got, stale.ID).Error)
	assert.False(t, got.Enabled)
	// A record with a blank email still counts as present in the dump.
	var blankGot models.Subscriber
	require.NoError(t, db.First(&blankGot, blank.ID).Error)
	assert.True(t, blankGot.Enabled)

	var created models.Subscriber
	require.NoError(t, db.Where("matricola = ?", "200").First(&created).Error)
	assert.Equal(t, "Arrivato", created.Name)
	assert.Equal(t, "Nuovo", created.Surname)
}

func TestImportPersonDumpReset(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	helpers.CreateSubscriber(t, db, "100", "gia@example.org", "Già", "Presente")

	persons := directory.Persons{"a": {"100", "gia@example.org", "", "Presente", "Già"}}
	report, err := svc.ImportPersonDump(context.Background(), db, persons, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Existing)

	var count int64
	db.Model(&models.Subscriber{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestListEnabledEvents(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	later := helpers.CreateEvent(t, db, "Dopo", time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), 10, 0)
	first := helpers.CreateEvent(t, db, "Prima", time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), 10, 0)
	off := helpers.CreateEvent(t, db, "Spento", time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 10, 0)
	require.NoError(t, db.Model(off).Update("enabled", false).Error)

	a := helpers.CreateSubscriber(t, db, "1", "a@example.org", "A", "A")
	b := helpers.CreateSubscriber(t, db, "2", "b@example.org", "B", "B")
	helpers.Subscribe(t, db, first, a)
	helpers.Subscribe(t, db, first, b)

	events, lines, err := svc.ListEnabledEvents(db)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []string{
		fmt.Sprintf("#%d, Prima, mercoledì 14 ottobre 2026: 2 iscrizioni", first.ID),
		fmt.Sprintf("#%d, Dopo, mercoledì 21 ottobre 2026: 0 iscrizioni", later.ID),
	}, lines)
}

func TestCreateEventValidatesDates(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc, _ := newRegistrationService(t)
	disabled := false

	e, err := svc.CreateEvent(db, &dto.EventRequest{
		Title: "Nuova pillola", EventDate: "2026-11-02", EventStartTime: "09:15", Enabled: &disabled,
	})
	require.NoError(t, err)
	assert.False(t, e.Enabled)
	assert.Equal(t, 60, e.DurationMinutes)
	assert.Equal(t, "09:15", e.FormattedStartTime())
	_, err = uuid.Parse(e.RefToken)
	assert.NoError(t, err)

	_, err = svc.CreateEvent(db, &dto.EventRequest{Title: "x", EventDate: "02/11/2026"})
	assert.Equal(t, 400, apperrors.StatusOf(err))
}
