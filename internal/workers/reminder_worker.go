package workers

import (
	"context"
	"time"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/services/dto"

	"gorm.io/gorm"
)

// ReminderSender sends the reminder batch for events days ahead.
type ReminderSender interface {
	SendReminders(ctx context.Context, db *gorm.DB, days *int, debug bool) (*dto.NotificationReport, error)
}

// ReminderWorker sends the participant reminders once a day at a fixed
// local hour.
type ReminderWorker struct {
	db     *gorm.DB
	sender ReminderSender
	hour   int
	days   int
	loc    *time.Location
	now    func() time.Time
}

func NewReminderWorker(db *gorm.DB, sender ReminderSender, hour, days int, loc *time.Location) *ReminderWorker {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderWorker{db: db, sender: sender, hour: hour, days: days, loc: loc, now: time.Now}
}

// Start runs the daily loop in a goroutine until ctx is cancelled.
func (w *ReminderWorker) Start(ctx context.Context) {
	go w.loop(ctx)
	logger.Info("reminder worker started", "hour", w.hour, "days", w.days)
}

// NextRun is the first hour:00 in loc strictly after now.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

func (w *ReminderWorker) loop(ctx context.Context) {
	for {
		now := w.now()
		timer := time.NewTimer(NextRun(now, w.hour, w.loc).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.WorkerLog("reminder", "stop", nil)
			return
		case <-timer.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce sends one batch and logs its outcome.
func (w *ReminderWorker) RunOnce(ctx context.Context) {
	days := w.days
	report, err := w.sender.SendReminders(ctx, w.db.WithContext(ctx), &days, false)
	if err != nil {
		logger.WorkerLog("reminder", "send", err)
		return
	}
	sent := 0
	for _, e := range report.Events {
		sent += e.Sent
	}
	logger.WorkerLog("reminder", "send", nil, "events", len(report.Events), "sent", sent)
}
