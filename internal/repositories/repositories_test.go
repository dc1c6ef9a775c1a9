package repositories_test

import (
	"testing"
	"time"

	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryFindAllOrder(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewCategoryRepository()

	helpers.CreateCategory(t, db, "Zeta", nil, 0)
	helpers.CreateCategory(t, db, "Alfa", nil, 1)
	helpers.CreateCategory(t, db, "Beta", nil, 0)

	all, err := repo.FindAll(db, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Beta", "Zeta", "Alfa"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestCategoryNotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	_, err := repositories.NewCategoryRepository().FindByName(db, "missing")
	assert.ErrorIs(t, err, repositories.ErrCategoryNotFound)
}

func TestCategoryDeleteRemovesChildren(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewCategoryRepository()

	root := helpers.CreateCategory(t, db, "Root", nil, 0)
	child := helpers.CreateCategory(t, db, "Child", root, 0)
	helpers.CreateCategory(t, db, "Grandchild", child, 0)
	helpers.CreateVideo(t, db, "Video", child)

	require.NoError(t, repo.Delete(db, root.ID))

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.VideoCategory{}).Count(&count)
	assert.Zero(t, count)
}

func TestVideoFindByCategoryOrderAndSearch(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewVideoRepository()

	cat := helpers.CreateCategory(t, db, "pillole informative", nil, 0)
	other := helpers.CreateCategory(t, db, "altro", nil, 0)

	b := helpers.CreateVideo(t, db, "Bravo", cat)
	a := helpers.CreateVideo(t, db, "Alfa", cat)
	helpers.CreateVideo(t, db, "Fuori", other)
	disabled := helpers.CreateVideo(t, db, "Nascosto", cat)
	require.NoError(t, repo.UpdateColumns(db, disabled.ID, map[string]interface{}{"enabled": false}))
	require.NoError(t, repo.UpdateColumns(db, a.ID, map[string]interface{}{"fulltext_search_data": "firma digitale remota"}))

	videos, err := repo.FindByCategory(db, repositories.MediaFilter{CategoryID: cat.ID, EnabledOnly: true})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "Alfa", videos[0].Title)
	assert.Equal(t, "Bravo", videos[1].Title)
	assert.Equal(t, b.ID, videos[1].ID)

	found, err := repo.FindByCategory(db, repositories.MediaFilter{CategoryID: cat.ID, EnabledOnly: true, Query: "digitale"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)
}

func TestVideoReplaceTags(t *testing.T) {
	db := helpers.NewTestDB(t)
	videos := repositories.NewVideoRepository()
	tags := repositories.NewTagRepository()

	v := helpers.CreateVideo(t, db, "Tagged")
	list, err := tags.FindOrCreate(db, []string{"sicurezza", " ", "privacy", "sicurezza"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NoError(t, videos.ReplaceTags(db, v, list))

	again, err := tags.FindOrCreate(db, []string{"privacy"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, list[0].ID, again[0].ID)

	loaded, err := videos.FindByID(db, v.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Tags, 2)
}

func TestIncrementCounterUpserts(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewPlaybackRepository()
	v := helpers.CreateVideo(t, db, "Counted")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementCounter(db, v.ID))
	}
	counters, err := repo.Counters(db)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.EqualValues(t, 3, counters[0].PlaybackEventCounter)
	require.NotNil(t, counters[0].Video)
	assert.Equal(t, "Counted", counters[0].Video.Title)
}

func TestPlaybackAggregates(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewPlaybackRepository()
	cat := helpers.CreateCategory(t, db, "pillole informative", nil, 0)
	v1 := helpers.CreateVideo(t, db, "Uno", cat)
	v2 := helpers.CreateVideo(t, db, "Due")

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	for _, e := range []models.VideoPlaybackEvent{
		{VideoID: v1.ID, IPAddress: "10.0.0.1", Timestamp: now},
		{VideoID: v1.ID, IPAddress: "10.0.0.1", Timestamp: now.Add(time.Hour)},
		{VideoID: v1.ID, IPAddress: "10.0.0.2", Timestamp: now},
		{VideoID: v2.ID, IPAddress: "10.0.0.3", Timestamp: now},
	} {
		e := e
		require.NoError(t, repo.CreateEvent(db, &e))
	}

	ips, err := repo.DistinctIPsPerVideo(db)
	require.NoError(t, err)
	require.Len(t, ips, 2)
	assert.Equal(t, repositories.VideoCount{VideoID: v1.ID, Title: "Uno", Count: 2}, ips[0])

	events, err := repo.EventsPerVideo(db)
	require.NoError(t, err)
	assert.EqualValues(t, 3, events[0].Count)

	views, err := repo.Views(db, "pillole informative", false)
	require.NoError(t, err)
	assert.Len(t, views, 3)
	for _, v := range views {
		assert.Equal(t, v1.ID, v.VideoID)
	}
}

func TestEnabledEventsWithParticipationCount(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewEventRepository()

	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	early := helpers.CreateEvent(t, db, "Mattina", day, 9, 0)
	late := helpers.CreateEvent(t, db, "Pomeriggio", day, 15, 0)
	older := helpers.CreateEvent(t, db, "Passato", day.AddDate(0, 0, -10), 9, 0)
	off := helpers.CreateEvent(t, db, "Disabilitato", day, 11, 0)
	require.NoError(t, db.Model(off).Update("enabled", false).Error)

	s1 := helpers.CreateSubscriber(t, db, "100", "a@example.org", "Anna", "Bianchi")
	s2 := helpers.CreateSubscriber(t, db, "200", "b@example.org", "Bruno", "Verdi")
	helpers.Subscribe(t, db, early, s1)
	helpers.Subscribe(t, db, early, s2)
	helpers.Subscribe(t, db, late, s1)

	enabled, err := repo.Enabled(db)
	require.NoError(t, err)
	require.Len(t, enabled, 3)
	assert.Equal(t, late.ID, enabled[0].ID)
	assert.Equal(t, early.ID, enabled[1].ID)
	assert.Equal(t, older.ID, enabled[2].ID)
	assert.EqualValues(t, 1, enabled[0].ParticipationCount)
	assert.EqualValues(t, 2, enabled[1].ParticipationCount)
	assert.EqualValues(t, 0, enabled[2].ParticipationCount)

	on, err := repo.EnabledOn(db, day)
	require.NoError(t, err)
	assert.Len(t, on, 2)

	upcoming, err := repo.Upcoming(db, day.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, early.ID, upcoming[0].ID)

	latest, err := repo.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, late.ID, latest.ID)
}

func TestEventDayFiltersIgnoreLocalZone(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("UTC-5", -5*3600)
	t.Cleanup(func() { time.Local = prev })

	db := helpers.NewTestDB(t)
	repo := repositories.NewEventRepository()

	day := time.Date(2026, 10, 15, 23, 30, 0, 0, time.Local)
	target := helpers.CreateEvent(t, db, "Sera", day, 18, 0)
	helpers.CreateEvent(t, db, "Domani", day.AddDate(0, 0, 1), 9, 0)
	helpers.CreateEvent(t, db, "Ieri", day.AddDate(0, 0, -1), 9, 0)

	on, err := repo.EnabledOn(db, day)
	require.NoError(t, err)
	require.Len(t, on, 1)
	assert.Equal(t, target.ID, on[0].ID)

	upcoming, err := repo.Upcoming(db, day)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, target.ID, upcoming[0].ID)
}

func TestParticipationAddIgnoresDuplicates(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewParticipationRepository()
	e := helpers.CreateEvent(t, db, "Evento", time.Now(), 10, 0)
	s := helpers.CreateSubscriber(t, db, "300", "c@example.org", "Carla", "Neri")

	created, err := repo.Add(db, e.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Add(db, e.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, created)

	ids, err := repo.EventIDsBySubscriber(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{e.ID}, ids)

	removed, err := repo.Remove(db, e.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(db, e.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSubscriberUniqueCredentials(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewSubscriberRepository()
	helpers.CreateSubscriber(t, db, "400", "d@example.org", "Dario", "Rossi")

	err := repo.Create(db, &models.Subscriber{Matricola: "400", Email: "d@example.org", Enabled: true})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	ok, err := repo.Exists(db, "400", "d@example.org")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByCredentials(db, "400", "x@example.org")
	assert.ErrorIs(t, err, repositories.ErrSubscriberNotFound)

	list, total, err := repo.List(db, "ross", repositories.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}
