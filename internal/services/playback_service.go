package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/metrics"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/repositories"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/pkg/apperrors"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// RequestInfo is the request metadata stored in a MessageLog.
type RequestInfo struct {
	URI       string
	Referer   string
	UserAgent string
	RealIP    string
	Cookie    string
}

// RequestInfoFromHTTP reads the absolute URL and the logged headers of r.
func RequestInfoFromHTTP(r *http.Request) RequestInfo {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return RequestInfo{
		URI:       fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI()),
		Referer:   r.Header.Get("Referer"),
		UserAgent: r.Header.Get("User-Agent"),
		RealIP:    r.Header.Get("X-Real-IP"),
		Cookie:    r.Header.Get("Cookie"),
	}
}

// NewMessageLog fills missing headers with their placeholders.
func NewMessageLog(info RequestInfo) *models.MessageLog {
	return &models.MessageLog{
		OriginalURI:   info.URI,
		HTTPReferer:   valueOr(info.Referer, "-"),
		HTTPUserAgent: valueOr(info.UserAgent, "unknown"),
		HTTPRealIP:    valueOr(info.RealIP, "unknown"),
		HTTPCookie:    valueOr(info.Cookie, "-"),
	}
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type PlaybackService interface {
	Record(ctx context.Context, db *gorm.DB, videoID uint, ip string, authenticated bool, username string) error
	RecordRequest(ctx context.Context, db *gorm.DB, info RequestInfo) (*models.MessageLog, error)
	// UniqueViewTotals counts distinct (video, ip, day) views of the videos
	// in category, ordered by video id.
	UniqueViewTotals(db *gorm.DB, category string, authenticated bool) ([]dto.ViewTotal, error)
	DistinctIPsPerVideo(db *gorm.DB) ([]repositories.VideoCount, error)
	EventsPerVideo(db *gorm.DB) ([]repositories.VideoCount, error)
	Counters(db *gorm.DB) ([]models.VideoCounter, error)
	ExportMessageLogs(db *gorm.DB, from, to time.Time) (*bytes.Buffer, error)
}

type PlaybackServiceImpl struct {
	playbackRepo repositories.PlaybackRepository
	videoRepo    repositories.VideoRepository
	loc          *time.Location
}

func NewPlaybackService(
	playbackRepo repositories.PlaybackRepository,
	videoRepo repositories.VideoRepository,
	loc *time.Location,
) PlaybackService {
	if loc == nil {
		loc = time.Local
	}
	return &PlaybackServiceImpl{playbackRepo: playbackRepo, videoRepo: videoRepo, loc: loc}
}

func (s *PlaybackServiceImpl) Record(ctx context.Context, db *gorm.DB, videoID uint, ip string, authenticated bool, username string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.videoRepo.FindByID(tx, videoID); err != nil {
			return err
		}
		event := &models.VideoPlaybackEvent{
			VideoID:             videoID,
			IPAddress:           ip,
			Timestamp:           time.Now(),
			IsUserAuthenticated: authenticated,
			Username:            username,
		}
		if err := s.playbackRepo.CreateEvent(tx, event); err != nil {
			return err
		}
		return s.playbackRepo.IncrementCounter(tx, videoID)
	})
	if err != nil {
		return mediaError(err)
	}
	metrics.PlaybackEventsTotal.Inc()
	logger.CtxDebug(ctx, "playback recorded", "video_id", videoID, "ip", ip)
	return nil
}

func (s *PlaybackServiceImpl) RecordRequest(ctx context.Context, db *gorm.DB, info RequestInfo) (*models.MessageLog, error) {
	entry := NewMessageLog(info)
	if err := s.playbackRepo.CreateMessageLog(db, entry); err != nil {
		logger.CtxWithError(ctx, "failed to store message log", err, "uri", info.URI)
		return nil, apperrors.DatabaseError(err)
	}
	return entry, nil
}

func (s *PlaybackServiceImpl) UniqueViewTotals(db *gorm.DB, category string, authenticated bool) ([]dto.ViewTotal, error) {
	views, err := s.playbackRepo.Views(db, category, authenticated)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return UniqueViews(views, s.loc), nil
}

// UniqueViews groups rows ordered by video id into distinct (ip, day)
// counts per video.
func UniqueViews(views []repositories.PlaybackView, loc *time.Location) []dto.ViewTotal {
	type key struct {
		ip  string
		day string
	}
	var out []dto.ViewTotal
	seen := map[uint]map[key]bool{}
	index := map[uint]int{}
	for _, v := range views {
		k := key{ip: v.IPAddress, day: v.Timestamp.In(loc).Format("2006-01-02")}
		if seen[v.VideoID] == nil {
			seen[v.VideoID] = map[key]bool{}
			index[v.VideoID] = len(out)
			out = append(out, dto.ViewTotal{VideoID: v.VideoID, Title: v.Title})
		}
		if seen[v.VideoID][k] {
			continue
		}
		seen[v.VideoID][k] = true
		out[index[v.VideoID]].Count++
	}
	return out
}

func (s *PlaybackServiceImpl) DistinctIPsPerVideo(db *gorm.DB) ([]repositories.VideoCount, error) {
	out, err := s.playbackRepo.DistinctIPsPerVideo(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return out, nil
}

func (s *PlaybackServiceImpl) EventsPerVideo(db *gorm.DB) ([]repositories.VideoCount, error) {
	out, err := s.playbackRepo.EventsPerVideo(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return out, nil
}

func (s *PlaybackServiceImpl) Counters(db *gorm.DB) ([]models.VideoCounter, error) {
	out, err := s.playbackRepo.Counters(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return out, nil
}

var messageLogHeader = []interface{}{"id", "created_at", "http_real_ip", "original_uri", "http_referer", "http_user_agent"}

const messageLogSheet = "MessageLog"

func (s *PlaybackServiceImpl) ExportMessageLogs(db *gorm.DB, from, to time.Time) (*bytes.Buffer, error) {
	logs, err := s.playbackRepo.MessageLogs(db, from, to)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", messageLogSheet); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := f.SetSheetRow(messageLogSheet, "A1", &messageLogHeader); err != nil {
		return nil, apperrors.InternalError(err)
	}
	for i, l := range logs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		row := []interface{}{
			l.ID,
			l.CreatedAt.In(s.loc).Format("2006-01-02 15:04:05"),
			l.HTTPRealIP,
			l.OriginalURI,
			l.HTTPReferer,
			l.HTTPUserAgent,
		}
		if err := f.SetSheetRow(messageLogSheet, cell, &row); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buf, nil
}
