package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"mediamatrixhub/internal/config"
	"mediamatrixhub/internal/imageprocessor"
	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/mediatools"
	"mediamatrixhub/internal/metrics"
	"mediamatrixhub/internal/models"
	"mediamatrixhub/internal/services/dto"
	"mediamatrixhub/internal/storage"
	"mediamatrixhub/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultMediaTools wires ffprobe, ffmpeg, pdftoppm and the JPEG resizer
// from configuration.
func DefaultMediaTools(cfg config.MediaConfig) MediaTools {
	return MediaTools{
		Prober:  mediatools.NewProber(cfg.FFprobeBinary),
		Frames:  mediatools.NewFrameExtractor(cfg.FFmpegBinary),
		Pages:   mediatools.NewPDFPreviewer(cfg.PdftoppmBinary),
		PDFText: mediatools.ExtractPDFText,
		Images:  imageprocessor.NewProcessor(cfg.MaxImageWidth, cfg.MaxImageHeight, cfg.ImageQuality),
	}
}

func (s *MediaServiceImpl) afterVideoSave(ctx context.Context, db *gorm.DB, v *models.Video, force bool) {
	needed := force || v.NeedsProbe() || v.NeedsTranscriptionIndex() || (v.VideoFile != "" && len(v.Previews) == 0)
	if !needed {
		return
	}
	s.dispatch(ctx, db, MediaJob{Kind: MediaKindVideo, ID: v.ID, Force: force})
}

func (s *MediaServiceImpl) afterDocumentSave(ctx context.Context, db *gorm.DB, d *models.Document, force bool) {
	if !d.IsPDF() || !(force || d.NeedsPreview() || d.FulltextSearchData == "") {
		return
	}
	s.dispatch(ctx, db, MediaJob{Kind: MediaKindDocument, ID: d.ID, Force: force})
}

// dispatch queues job, or runs it inline when no worker is attached.
func (s *MediaServiceImpl) dispatch(ctx context.Context, db *gorm.DB, job MediaJob) {
	s.mu.RLock()
	queue := s.queue
	s.mu.RUnlock()

	if queue != nil {
		if err := queue.Enqueue(job); err != nil {
			logger.CtxWarn(ctx, "media job dropped", "kind", job.Kind, "id", job.ID, "error", err.Error())
		}
		return
	}
	if _, err := s.Process(ctx, db, job); err != nil {
		logger.CtxWithError(ctx, "media hooks failed", err, "kind", job.Kind, "id", job.ID)
	}
}

func (s *MediaServiceImpl) Process(ctx context.Context, db *gorm.DB, job MediaJob) (*dto.ProcessReport, error) {
	switch job.Kind {
	case MediaKindVideo:
		return s.ProcessVideo(ctx, db, job.ID, job.Force)
	case MediaKindDocument:
		return s.ProcessDocument(ctx, db, job.ID, job.Force)
	default:
		return nil, apperrors.NewBadRequestError("unknown media kind " + job.Kind)
	}
}

type hookRun struct {
	ctx    context.Context
	report *dto.ProcessReport
	start  time.Time
	first  error
}

func newHookRun(ctx context.Context, kind string, id uint) *hookRun {
	return &hookRun{ctx: ctx, report: &dto.ProcessReport{Kind: kind, ID: id}, start: time.Now()}
}

func (h *hookRun) done(step string) {
	h.report.Steps = append(h.report.Steps, step)
}

func (h *hookRun) fail(step string, err error) {
	if h.first == nil {
		h.first = err
	}
	h.report.Errors = append(h.report.Errors, fmt.Sprintf("%s: %v", step, err))
	logger.CtxWarn(h.ctx, "media hook step failed",
		"kind", h.report.Kind, "id", h.report.ID, "step", step, "error", err.Error())
}

func (h *hookRun) finish() *dto.ProcessReport {
	metrics.RecordMediaJob(h.report.Kind, time.Since(h.start), h.first)
	logger.WorkerLog("media", h.report.Kind, h.first, "id", h.report.ID, "steps", h.report.Steps)
	return h.report
}

func (s *MediaServiceImpl) ProcessVideo(ctx context.Context, db *gorm.DB, id uint, force bool) (*dto.ProcessReport, error) {
	v, err := s.videoRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	run := newHookRun(ctx, MediaKindVideo, id)

	wantProbe := v.VideoFile != "" && (force || v.NeedsProbe())
	wantPreviews := v.VideoFile != "" && (force || len(v.Previews) == 0)

	var local string
	if wantProbe || wantPreviews {
		p, cleanup, err := storage.Localize(ctx, s.storage, v.VideoFile)
		if err != nil {
			run.fail("fetch", err)
		} else {
			defer cleanup()
			local = p
		}
	}

	if wantProbe && local != "" {
		if err := s.probeVideo(ctx, db, v, local); err != nil {
			run.fail("probe", err)
		} else {
			run.done("probe")
		}
	}

	if v.NeedsTranscriptionIndex() {
		if err := s.indexTranscription(ctx, db, v); err != nil {
			run.fail("transcription", err)
		} else {
			run.done("transcription")
		}
	}

	if wantPreviews && local != "" {
		if err := s.generateFrames(ctx, db, v, local, force); err != nil {
			run.fail("previews", err)
		} else {
			run.done("previews")
		}
	}

	return run.finish(), nil
}

func (s *MediaServiceImpl) probeVideo(ctx context.Context, db *gorm.DB, v *models.Video, local string) error {
	res, err := s.tools.Prober.Probe(ctx, local)
	if err != nil {
		return err
	}
	values := map[string]interface{}{
		"width":      res.Width,
		"height":     res.Height,
		"duration":   res.Duration,
		"probe_data": datatypes.JSON(res.Raw),
	}
	if v.StopTime == 0 {
		values["stop_time"] = res.Duration
		v.StopTime = res.Duration
	}
	v.Width, v.Height, v.Duration = res.Width, res.Height, res.Duration
	return s.videoRepo.UpdateColumns(db, v.ID, values)
}

func (s *MediaServiceImpl) indexTranscription(ctx context.Context, db *gorm.DB, v *models.Video) error {
	rc, err := s.storage.Get(ctx, v.RawTranscriptionFile)
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	text := mediatools.ExtractTextFromVTT(string(data))
	v.FulltextSearchData = text
	return s.videoRepo.UpdateColumns(db, v.ID, map[string]interface{}{"fulltext_search_data": text})
}

func (s *MediaServiceImpl) generateFrames(ctx context.Context, db *gorm.DB, v *models.Video, local string, force bool) error {
	if force && len(v.Previews) > 0 {
		if err := s.videoRepo.DeletePreviews(db, v.ID); err != nil {
			return err
		}
		for _, p := range v.Previews {
			s.removeFiles(ctx, p.ImagePath)
		}
		v.Previews = nil
	}

	seconds := mediatools.FrameSeconds(v.Duration, s.cfg.PreviewFrames)
	if len(seconds) == 0 {
		seconds = []int{0}
	}

	work, err := os.MkdirTemp("", "mmh-frames-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	var errs []error
	var cover *uint
	for _, sec := range seconds {
		raw := filepath.Join(work, fmt.Sprintf("raw_%d.jpg", sec))
		out := filepath.Join(work, fmt.Sprintf("frame_%d.jpg", sec))
		if err := s.tools.Frames.Extract(ctx, local, sec, raw); err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", sec, err))
			continue
		}
		if err := s.tools.Images.ProcessFile(raw, out); err != nil {
			errs = append(errs, fmt.Errorf("resize frame %d: %w", sec, err))
			continue
		}
		key := path.Join("previews", "videos", v.RefToken, fmt.Sprintf("frame_%d-%s.jpg", sec, uuid.NewString()[:8]))
		if err := storage.SaveFile(ctx, s.storage, key, out, "image/jpeg"); err != nil {
			errs = append(errs, err)
			continue
		}
		preview := &models.AutomaticPreviewImage{VideoID: v.ID, ImagePath: key, FrameSecond: sec}
		if err := s.videoRepo.CreatePreview(db, preview); err != nil {
			s.removeFiles(ctx, key)
			errs = append(errs, err)
			continue
		}
		v.Previews = append(v.Previews, *preview)
		if cover == nil {
			id := preview.ID
			cover = &id
		}
	}

	if cover != nil {
		v.CoverImageID = cover
		if err := s.videoRepo.UpdateColumns(db, v.ID, map[string]interface{}{"cover_image_id": *cover}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *MediaServiceImpl) ProcessDocument(ctx context.Context, db *gorm.DB, id uint, force bool) (*dto.ProcessReport, error) {
	d, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		return nil, mediaError(err)
	}
	run := newHookRun(ctx, MediaKindDocument, id)
	if !d.IsPDF() || d.DocumentFile == "" {
		return run.finish(), nil
	}

	wantPreview := force || d.NeedsPreview()
	wantText := wantPreview || d.FulltextSearchData == ""
	if !wantPreview && !wantText {
		return run.finish(), nil
	}

	local, cleanup, err := storage.Localize(ctx, s.storage, d.DocumentFile)
	if err != nil {
		run.fail("fetch", err)
		return run.finish(), nil
	}
	defer cleanup()

	if wantPreview {
		if err := s.renderDocumentPreview(ctx, db, d, local); err != nil {
			run.fail("preview", err)
		} else {
			run.done("preview")
		}
	}
	if wantText {
		text, err := s.tools.PDFText(local)
		if err == nil {
			d.FulltextSearchData = text
			err = s.documentRepo.UpdateColumns(db, d.ID, map[string]interface{}{"fulltext_search_data": text})
		}
		if err != nil {
			run.fail("fulltext", err)
		} else {
			run.done("fulltext")
		}
	}
	return run.finish(), nil
}

func (s *MediaServiceImpl) renderDocumentPreview(ctx context.Context, db *gorm.DB, d *models.Document, local string) error {
	work, err := os.MkdirTemp("", "mmh-page-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	raw := filepath.Join(work, "page.jpg")
	if err := s.tools.Pages.RenderFirstPage(ctx, local, s.cfg.PreviewDPI, raw); err != nil {
		return err
	}
	out := filepath.Join(work, "preview.jpg")
	if err := s.tools.Images.ProcessFile(raw, out); err != nil {
		return err
	}

	key := path.Join("previews", "documents", d.RefToken, "page1-"+uuid.NewString()[:8]+".jpg")
	if err := storage.SaveFile(ctx, s.storage, key, out, "image/jpeg"); err != nil {
		return err
	}
	old := d.PreviewImage
	if err := s.documentRepo.UpdateColumns(db, d.ID, map[string]interface{}{"preview_image": key}); err != nil {
		s.removeFiles(ctx, key)
		return err
	}
	d.PreviewImage = key
	if old != "" {
		s.removeFiles(ctx, old)
	}
	return nil
}
