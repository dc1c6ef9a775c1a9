package helpers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"mediamatrixhub/database"
	"mediamatrixhub/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with every table
// migrated. It is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "migrate test db")
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser stores an admin user; a plain PasswordHash is hashed first.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.MinCost)
		require.NoError(t, err)
		user.PasswordHash = string(hashed)
	}
	if user.Role == "" {
		user.Role = models.UserRoleAdmin
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	require.NoError(t, db.Create(user).Error, "create user %s", user.Email)
}

func CreateCategory(t *testing.T, db *gorm.DB, name string, parent *models.Category, order int) *models.Category {
	t.Helper()
	c := &models.Category{
		Name:      name,
		Slug:      slugOf(name),
		IsActive:  true,
		SortOrder: order,
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error, "create category %s", name)
	return c
}

// CreateVideo stores an enabled video linked to the given categories.
func CreateVideo(t *testing.T, db *gorm.DB, title string, categories ...*models.Category) *models.Video {
	t.Helper()
	v := &models.Video{Media: models.Media{Title: title, Enabled: true, RefToken: uuid.NewString()}}
	require.NoError(t, db.Omit("Tags", "CategoryLinks", "DocumentLinks", "Pills", "Previews").Create(v).Error)
	for i, c := range categories {
		link := models.VideoCategory{VideoID: v.ID, CategoryID: c.ID, SortOrder: i}
		require.NoError(t, db.Omit("Video", "Category").Create(&link).Error)
	}
	return v
}

func CreateDocument(t *testing.T, db *gorm.DB, title, file string, categories ...*models.Category) *models.Document {
	t.Helper()
	d := &models.Document{Media: models.Media{Title: title, Enabled: true, RefToken: uuid.NewString()}, DocumentFile: file}
	require.NoError(t, db.Omit("Tags", "CategoryLinks").Create(d).Error)
	for i, c := range categories {
		link := models.DocumentCategory{DocumentID: d.ID, CategoryID: c.ID, SortOrder: i}
		require.NoError(t, db.Omit("Document", "Category").Create(&link).Error)
	}
	return d
}

// CreateEvent stores an enabled event on day at hh:mm.
func CreateEvent(t *testing.T, db *gorm.DB, title string, day time.Time, hh, mm int) *models.InformationEvent {
	t.Helper()
	start := datatypes.NewTime(hh, mm, 0, 0)
	e := &models.InformationEvent{
		Title:           title,
		EventDate:       time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		EventStartTime:  &start,
		DurationMinutes: 60,
		MeetingURL:      "https://meet.example.org/" + slugOf(title),
		Speaker:         "Relatore",
		Enabled:         true,
		RefToken:        uuid.NewString(),
	}
	require.NoError(t, db.Omit("Participations").Create(e).Error, "create event %s", title)
	return e
}

func CreateSubscriber(t *testing.T, db *gorm.DB, matricola, email, name, surname string) *models.Subscriber {
	t.Helper()
	s := &models.Subscriber{Matricola: matricola, Email: email, Name: name, Surname: surname, Enabled: true}
	require.NoError(t, db.Create(s).Error, "create subscriber %s", matricola)
	return s
}

func Subscribe(t *testing.T, db *gorm.DB, event *models.InformationEvent, subscriber *models.Subscriber) {
	t.Helper()
	p := models.EventParticipation{EventID: event.ID, SubscriberID: subscriber.ID}
	require.NoError(t, db.Omit("Event", "Subscriber").Create(&p).Error)
}

func slugOf(name string) string {
	return fmt.Sprintf("%s-%s", strings.ReplaceAll(strings.ToLower(name), " ", "-"), uuid.NewString()[:8])
}
