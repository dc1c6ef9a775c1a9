package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/mediatools"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/internal/storage"
	"mediamatrixhub/pkg/apperrors"
	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProber struct{ calls int }

func (p *fakeProber) Probe(_ context.Context, path string) (*mediatools.ProbeResult, error) {
	p.calls++
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &mediatools.ProbeResult{Width: 1280, Height: 720, Duration: 100, Raw: []byte(`{"format":{}}`)}, nil
}

type fakeFrames struct{ seconds []int }

func (f *fakeFrames) Extract(_ context.Context, _ string, second int, out string) error {
	f.seconds = append(f.seconds, second)
	return os.WriteFile(out, []byte("frame"), 0o644)
}

type fakePages struct{ dpi int }

func (p *fakePages) RenderFirstPage(_ context.Context, _ string, dpi int, out string) error {
	p.dpi = dpi
	return os.WriteFile(out, []byte("page"), 0o644)
}

type copyResizer struct{}

func (copyResizer) ProcessFile(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []services.MediaJob
}

func (q *recordingQueue) Enqueue(job services.MediaJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

type mediaFixture struct {
	db     *gorm.DB
	svc    services.MediaService
	store  *storage.LocalStorage
	root   string
	prober *fakeProber
	frames *fakeFrames
	pages  *fakePages
}

func newMediaFixture(t *testing.T) *mediaFixture {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStorage(storage.Config{BasePath: root, BaseURL: "/media"})
	require.NoError(t, err)

	f := &mediaFixture{
		db:     helpers.NewTestDB(t),
		store:  store,
		root:   root,
		prober: &fakeProber{},
		frames: &fakeFrames{},
		pages:  &fakePages{},
	}
	cfg := config.Defaults().Media
	cfg.PreviewFrames = 4
	cfg.PreviewDPI = 150
	tools := services.MediaTools{
		Prober:  f.prober,
		Frames:  f.frames,
		Pages:   f.pages,
		PDFText: func(string) (string, error) { return "testo estratto", nil },
		Images:  copyResizer{},
	}
	f.svc = services.NewMediaService(
		repositories.NewVideoRepository(),
		repositories.NewDocumentRepository(),
		repositories.NewCategoryRepository(),
		repositories.NewTagRepository(),
		repositories.NewPlaylistRepository(),
		store, tools, cfg,
	)
	return f
}

func (f *mediaFixture) exists(key string) bool {
	_, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(key)))
	return err == nil
}

func upload(name, body string) *services.FileUpload {
	return &services.FileUpload{Name: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func TestCreateVideoLinksCategoriesAndTags(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	cat := helpers.CreateCategory(t, f.db, "pillole informative", nil, 0)

	v, err := f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{
		Title:      "  Firma digitale ",
		Categories: []dto.CategoryLink{{CategoryID: cat.ID, Order: 2}},
		Tags:       []string{"firma", "pec"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Firma digitale", v.Title)
	assert.True(t, v.Enabled)
	require.Len(t, v.CategoryLinks, 1)
	assert.Equal(t, 2, v.CategoryLinks[0].SortOrder)
	assert.Len(t, v.Tags, 2)
	assert.Zero(t, f.prober.calls, "no file, no hooks")

	_, err = f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{
		Title:      "Orfano",
		Categories: []dto.CategoryLink{{CategoryID: 999}},
	})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestUploadVideoRunsHooksInline(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	v, err := f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{Title: "Lezione"})
	require.NoError(t, err)

	v, err = f.svc.UploadVideoFile(ctx, f.db, v.ID, services.FieldVideo, upload("Lezione 1.mp4", "fake video"))
	require.NoError(t, err)
	assert.True(t, f.exists(v.VideoFile))
	assert.True(t, strings.HasPrefix(v.VideoFile, "videos/"+v.RefToken+"/lezione-1-"))

	got, err := f.svc.GetVideo(f.db, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1280, got.Width)
	assert.Equal(t, 720, got.Height)
	assert.Equal(t, 100, got.Duration)
	assert.Equal(t, 100, got.StopTime)
	assert.Equal(t, []int{20, 40, 60, 80}, f.frames.seconds)
	require.Len(t, got.Previews, 4)
	require.NotNil(t, got.CoverImageID)
	assert.Equal(t, got.Previews[0].ID, *got.CoverImageID)
	for _, p := range got.Previews {
		assert.True(t, f.exists(p.ImagePath), p.ImagePath)
	}
}

func TestUploadTranscriptionIndexesText(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	v, err := f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{Title: "Lezione"})
	require.NoError(t, err)

	vtt := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nBuongiorno a tutti\n\n00:00:02.000 --> 00:00:03.000\n  oggi parliamo di PEC  \n"
	v, err = f.svc.UploadVideoFile(ctx, f.db, v.ID, services.FieldTranscription, upload("sub.vtt", vtt))
	require.NoError(t, err)
	assert.True(t, v.IsTranscriptionAvailable)

	got, err := f.svc.GetVideo(f.db, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buongiorno a tutti oggi parliamo di PEC", got.FulltextSearchData)
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	v, err := f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{Title: "Lezione"})
	require.NoError(t, err)

	_, err = f.svc.UploadVideoFile(ctx, f.db, v.ID, services.FieldVideo, upload("virus.exe", "x"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	_, err = f.svc.UploadVideoFile(ctx, f.db, v.ID, "poster", upload("a.jpg", "x"))
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestDeleteVideoRemovesFiles(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	v, err := f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{Title: "Lezione"})
	require.NoError(t, err)
	v, err = f.svc.UploadVideoFile(ctx, f.db, v.ID, services.FieldVideo, upload("a.mp4", "video"))
	require.NoError(t, err)
	got, err := f.svc.GetVideo(f.db, v.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got.Previews)

	require.NoError(t, f.svc.DeleteVideo(ctx, f.db, v.ID))
	assert.False(t, f.exists(got.VideoFile))
	for _, p := range got.Previews {
		assert.False(t, f.exists(p.ImagePath))
	}
	_, err = f.svc.GetVideo(f.db, v.ID)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)
}

func TestUploadPDFRendersPreviewAndText(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	d, err := f.svc.CreateDocument(ctx, f.db, &dto.DocumentRequest{Title: "Manuale"})
	require.NoError(t, err)

	d, err = f.svc.UploadDocumentFile(ctx, f.db, d.ID, services.FieldDocument, upload("manuale.pdf", "%PDF-1.4"))
	require.NoError(t, err)

	got, err := f.svc.GetDocument(f.db, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, f.pages.dpi)
	assert.NotEmpty(t, got.PreviewImage)
	assert.True(t, f.exists(got.PreviewImage))
	assert.Equal(t, "testo estratto", got.FulltextSearchData)

	url, err := f.svc.FileURL(ctx, f.db, got.RefToken)
	require.NoError(t, err)
	assert.Equal(t, "/media/"+got.DocumentFile, url)
}

func TestHooksGoThroughQueueWhenSet(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	queue := &recordingQueue{}
	f.svc.SetQueue(queue)

	v, err := f.svc.CreateVideo(ctx, f.db, &dto.VideoRequest{Title: "Lezione"})
	require.NoError(t, err)
	_, err = f.svc.UploadVideoFile(ctx, f.db, v.ID, services.FieldVideo, upload("a.mp4", "video"))
	require.NoError(t, err)

	assert.Zero(t, f.prober.calls)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, services.MediaJob{Kind: services.MediaKindVideo, ID: v.ID, Force: true}, queue.jobs[0])

	report, err := f.svc.Process(ctx, f.db, queue.jobs[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"probe", "previews"}, report.Steps)
	assert.Empty(t, report.Errors)
}

func TestProcessReportsStepFailures(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()
	v := helpers.CreateVideo(t, f.db, "Senza file")
	require.NoError(t, f.db.Model(&models.Video{}).Where("id = ?", v.ID).Update("video_file", "videos/missing.mp4").Error)

	report, err := f.svc.ProcessVideo(ctx, f.db, v.ID, false)
	require.NoError(t, err)
	require.NotEmpty(t, report.Errors)
	assert.True(t, strings.HasPrefix(report.Errors[0], "fetch:"))

	_, err = f.svc.Process(ctx, f.db, services.MediaJob{Kind: "audio", ID: 1})
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestPlaylistOrdering(t *testing.T) {
	f := newMediaFixture(t)
	a := helpers.CreateVideo(t, f.db, "A")
	b := helpers.CreateVideo(t, f.db, "B")

	p, err := f.svc.CreatePlaylist(f.db, &dto.PlaylistRequest{Name: "Percorso", VideoIDs: []uint{b.ID, a.ID}})
	require.NoError(t, err)
	got, err := f.svc.GetPlaylist(f.db, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, b.ID, got.Items[0].VideoID)

	_, err = f.svc.GetPlaylist(f.db, 999)
	assert.True(t, errors.Is(err, apperrors.ErrPlaylistNotFound))
}
