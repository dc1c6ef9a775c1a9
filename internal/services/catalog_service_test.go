package services_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"mediamatrixhub/internal/auth"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"
	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func uintPtr(v uint) *uint { return &v }

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Pillole Informative": "pillole-informative",
		"  Città & Comuni  ":  "citta-comuni",
		"Perché? Sì!":         "perche-si",
	}
	for in, want := range tests {
		assert.Equal(t, want, services.Slugify(in), in)
	}
}

func TestBuildCategoryTreeOrderAndCycles(t *testing.T) {
	cats := []models.Category{
		{BaseModel: models.BaseModel{ID: 1}, Name: "Root", SortOrder: 0},
		{BaseModel: models.BaseModel{ID: 2}, Name: "B", ParentID: uintPtr(1), SortOrder: 0},
		{BaseModel: models.BaseModel{ID: 3}, Name: "A", ParentID: uintPtr(1), SortOrder: 1},
		{BaseModel: models.BaseModel{ID: 4}, Name: "Self", ParentID: uintPtr(4)},
		{BaseModel: models.BaseModel{ID: 5}, Name: "Loop1", ParentID: uintPtr(6)},
		{BaseModel: models.BaseModel{ID: 6}, Name: "Loop2", ParentID: uintPtr(5)},
		{BaseModel: models.BaseModel{ID: 7}, Name: "Orphan", ParentID: uintPtr(99)},
	}
	forest := services.BuildCategoryTree(cats)
	require.Len(t, forest, 3)
	assert.Equal(t, "Root", forest[0].Name)
	assert.Equal(t, "Self", forest[1].Name)
	assert.Equal(t, "Orphan", forest[2].Name)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "B", forest[0].Children[0].Name)
	assert.Equal(t, "A", forest[0].Children[1].Name)
}

func TestRenderCategoryTree(t *testing.T) {
	nodes := []*dto.CategoryNode{
		{Name: "Pillole informative", Children: []*dto.CategoryNode{{Name: "PEC & firma"}}},
	}
	got := services.RenderCategoryTree(nodes, "/core/")
	assert.Equal(t,
		`<ul><li><a href="/core/c/Pillole%20informative/">Pillole informative</a>`+
			`<ul><li><a href="/core/c/PEC%20&amp;%20firma/">PEC &amp; firma</a></li></ul></li></ul>`,
		got)
	assert.Empty(t, services.RenderCategoryTree(nil, "/core"))
}

func TestCategoryServiceRejectsCycles(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := services.NewCategoryService(repositories.NewCategoryRepository())

	root, err := svc.Create(db, &dto.CategoryRequest{Name: "Radice"})
	require.NoError(t, err)
	assert.Equal(t, "radice", root.Slug)
	child, err := svc.Create(db, &dto.CategoryRequest{Name: "Figlio", ParentID: &root.ID})
	require.NoError(t, err)

	_, err = svc.Update(db, root.ID, &dto.CategoryRequest{Name: "Radice", ParentID: &child.ID})
	assert.ErrorIs(t, err, apperrors.ErrCategoryCycle)
	_, err = svc.Update(db, root.ID, &dto.CategoryRequest{Name: "Radice", ParentID: &root.ID})
	assert.ErrorIs(t, err, apperrors.ErrCategoryCycle)

	inactive := false
	hidden, err := svc.Create(db, &dto.CategoryRequest{Name: "Nascosta", IsActive: &inactive})
	require.NoError(t, err)
	got, err := svc.GetByID(db, hidden.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.GetByName(db, "inesistente")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestGallerySearch(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := services.NewGalleryService(
		repositories.NewCategoryRepository(),
		repositories.NewVideoRepository(),
		repositories.NewDocumentRepository(),
	)
	cat := helpers.CreateCategory(t, db, "pillole informative", nil, 0)
	helpers.CreateVideo(t, db, "Posta certificata", cat)
	helpers.CreateVideo(t, db, "Firma digitale", cat)
	off := helpers.CreateVideo(t, db, "Firma spenta", cat)
	require.NoError(t, db.Model(off).Update("enabled", false).Error)
	helpers.CreateDocument(t, db, "Guida firma", "documents/guida.pdf", cat)

	page, err := svc.CategoryGallery(db, "pillole informative")
	require.NoError(t, err)
	assert.Len(t, page.Videos, 2)
	assert.Len(t, page.Documents, 1)

	page, err = svc.SearchCategory(db, "pillole informative", "firma")
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "Firma digitale", page.Videos[0].Title)
	assert.Equal(t, "firma", page.Query)

	_, err = svc.CategoryGallery(db, "missing")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestUniqueViews(t *testing.T) {
	rome := time.FixedZone("CEST", 2*60*60)
	day := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	views := []repositories.PlaybackView{
		{VideoID: 1, Title: "A", IPAddress: "10.0.0.1", Timestamp: day},
		{VideoID: 1, Title: "A", IPAddress: "10.0.0.1", Timestamp: day.Add(2 * time.Hour)},
		{VideoID: 1, Title: "A", IPAddress: "10.0.0.2", Timestamp: day},
		{VideoID: 1, Title: "A", IPAddress: "10.0.0.1", Timestamp: day.AddDate(0, 0, 1)},
		// 23:30 UTC is already the next day at +02:00.
		{VideoID: 2, Title: "B", IPAddress: "10.0.0.1", Timestamp: time.Date(2026, 10, 14, 21, 0, 0, 0, time.UTC)},
		{VideoID: 2, Title: "B", IPAddress: "10.0.0.1", Timestamp: time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC)},
	}
	got := services.UniqueViews(views, rome)
	assert.Equal(t, []dto.ViewTotal{
		{VideoID: 1, Title: "A", Count: 3},
		{VideoID: 2, Title: "B", Count: 2},
	}, got)
}

func TestPlaybackRecordAndExport(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	svc := services.NewPlaybackService(repositories.NewPlaybackRepository(), repositories.NewVideoRepository(), time.UTC)
	v := helpers.CreateVideo(t, db, "Lezione")

	require.NoError(t, svc.Record(ctx, db, v.ID, "10.0.0.1", false, ""))
	require.NoError(t, svc.Record(ctx, db, v.ID, "10.0.0.1", true, "mrossi"))
	assert.ErrorIs(t, svc.Record(ctx, db, 999, "10.0.0.1", false, ""), apperrors.ErrVideoNotFound)

	counters, err := svc.Counters(db)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.EqualValues(t, 2, counters[0].PlaybackEventCounter)

	req := httptest.NewRequest("GET", "/core/media/abc", nil)
	req.Header.Set("X-Real-IP", "192.168.1.10")
	entry, err := svc.RecordRequest(ctx, db, services.RequestInfoFromHTTP(req))
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10", entry.HTTPRealIP)
	assert.Equal(t, "-", entry.HTTPReferer)

	buf, err := svc.ExportMessageLogs(db, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	rows, err := book.GetRows("MessageLog")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "created_at", "http_real_ip", "original_uri", "http_referer", "http_user_agent"}, rows[0])
	assert.Equal(t, "192.168.1.10", rows[1][2])
}

func TestAuthServiceLogin(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	tokens := auth.NewTokenManager("secret", "test")
	svc := services.NewAuthService(repositories.NewUserRepository(), tokens, time.Hour)

	created, err := svc.SeedFirstAdmin(ctx, db, "admin@example.org", "password123")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.SeedFirstAdmin(ctx, db, "other@example.org", "password123")
	require.NoError(t, err)
	assert.False(t, created, "an admin already exists")

	resp, err := svc.Login(ctx, db, &dto.LoginRequest{Email: "Admin@Example.org", Password: "password123"})
	require.NoError(t, err)
	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, claims.Role)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "admin@example.org", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	subToken, err := tokens.GenerateSubscriberToken(1, time.Hour)
	require.NoError(t, err)
	_, err = svc.ParseToken(subToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
