package workers_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/internal/workers"
	"mediamatrixhub/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingProcessor struct {
	mu   sync.Mutex
	jobs []services.MediaJob
	done chan struct{}
}

func (p *recordingProcessor) Process(ctx context.Context, db *gorm.DB, job services.MediaJob) (*dto.ProcessReport, error) {
	p.mu.Lock()
	p.jobs = append(p.jobs, job)
	p.mu.Unlock()
	p.done <- struct{}{}
	return &dto.ProcessReport{Kind: job.Kind, ID: job.ID}, nil
}

func TestMediaWorkerProcessesJobs(t *testing.T) {
	db := helpers.NewTestDB(t)
	p := &recordingProcessor{done: make(chan struct{}, 4)}
	w := workers.NewMediaWorker(db, p, 2, 4, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.NoError(t, w.Enqueue(services.MediaJob{Kind: services.MediaKindVideo, ID: 1}))
	require.NoError(t, w.Enqueue(services.MediaJob{Kind: services.MediaKindDocument, ID: 2}))
	for i := 0; i < 2; i++ {
		select {
		case <-p.done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}

	cancel()
	w.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.ElementsMatch(t, []services.MediaJob{
		{Kind: services.MediaKindVideo, ID: 1},
		{Kind: services.MediaKindDocument, ID: 2},
	}, p.jobs)

	assert.Eventually(t, func() bool {
		return w.Enqueue(services.MediaJob{Kind: services.MediaKindVideo, ID: 3}) == workers.ErrWorkerStopped
	}, time.Second, 10*time.Millisecond)
}

type failingProcessor struct {
	done chan struct{}
}

func (p *failingProcessor) Process(ctx context.Context, db *gorm.DB, job services.MediaJob) (*dto.ProcessReport, error) {
	defer func() { p.done <- struct{}{} }()
	return nil, errors.New("ffmpeg exited with status 1")
}

func TestMediaWorkerLogsProcessErrors(t *testing.T) {
	var buf syncBuffer
	prev := logger.GetLogger()
	logger.SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { logger.SetLogger(prev) })

	p := &failingProcessor{done: make(chan struct{}, 2)}
	w := workers.NewMediaWorker(helpers.NewTestDB(t), p, 1, 2, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.NoError(t, w.Enqueue(services.MediaJob{Kind: services.MediaKindVideo, ID: 7}))
	require.NoError(t, w.Enqueue(services.MediaJob{Kind: services.MediaKindVideo, ID: 8}))
	for i := 0; i < 2; i++ {
		select {
		case <-p.done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}
	cancel()
	w.Wait()

	out := buf.String()
	assert.Contains(t, out, "ffmpeg exited with status 1")
	assert.Contains(t, out, `"operation":"process"`)
	assert.Contains(t, out, `"id":8`)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMediaWorkerQueueFull(t *testing.T) {
	w := workers.NewMediaWorker(nil, &recordingProcessor{done: make(chan struct{}, 1)}, 1, 1, 0)
	// not started: nothing drains the queue
	require.NoError(t, w.Enqueue(services.MediaJob{Kind: services.MediaKindVideo, ID: 1}))
	assert.ErrorIs(t, w.Enqueue(services.MediaJob{Kind: services.MediaKindVideo, ID: 2}), workers.ErrQueueFull)
}

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before hour", time.Date(2026, 10, 14, 5, 30, 0, 0, loc), time.Date(2026, 10, 14, 7, 0, 0, 0, loc)},
		{"at hour", time.Date(2026, 10, 14, 7, 0, 0, 0, loc), time.Date(2026, 10, 15, 7, 0, 0, 0, loc)},
		{"after hour", time.Date(2026, 10, 14, 9, 0, 0, 0, loc), time.Date(2026, 10, 15, 7, 0, 0, 0, loc)},
		{"utc input", time.Date(2026, 10, 14, 4, 0, 0, 0, time.UTC), time.Date(2026, 10, 14, 7, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(workers.NextRun(tc.now, 7, loc)), "got %s", workers.NextRun(tc.now, 7, loc))
		})
	}
}

type fakeSender struct {
	days  []int
	debug []bool
}

func (f *fakeSender) SendReminders(ctx context.Context, db *gorm.DB, days *int, debug bool) (*dto.NotificationReport, error) {
	f.days = append(f.days, *days)
	f.debug = append(f.debug, debug)
	return &dto.NotificationReport{Events: []dto.EventDispatch{{EventID: 1, Sent: 3}}}, nil
}

func TestReminderWorkerRunOnce(t *testing.T) {
	sender := &fakeSender{}
	w := workers.NewReminderWorker(helpers.NewTestDB(t), sender, 7, 2, time.UTC)
	w.RunOnce(context.Background())

	assert.Equal(t, []int{2}, sender.days)
	assert.Equal(t, []bool{false}, sender.debug)
}
