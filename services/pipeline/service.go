package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/repository"
	"tubebrief/scripts"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Stage names recorded into video metadata on failure.
const (
	StageDownload   = "download"
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
)

type service struct {
	videos         repository.VideoRepository
	transcriptions repository.TranscriptionRepository
	summaries      repository.SummaryRepository
	downloader     Downloader
	transcriber    Transcriber
	summarizer     Summarizer
	config         Config
	logger         *logrus.Logger
}

func NewService(
	videos repository.VideoRepository,
	transcriptions repository.TranscriptionRepository,
	summaries repository.SummaryRepository,
	downloader Downloader,
	transcriber Transcriber,
	summarizer Summarizer,
	config Config,
) Service {
	return &service{
		videos:         videos,
		transcriptions: transcriptions,
		summaries:      summaries,
		downloader:     downloader,
		transcriber:    transcriber,
		summarizer:     summarizer,
		config:         config,
		logger:         logrus.StandardLogger(),
	}
}

func (s *service) Get(ctx context.Context, videoID string) (*models.Video, error) {
	const op = "PipelineService.Get"

	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "ID is required")
	}
	return s.videos.Find(ctx, videoID)
}

func (s *service) Process(ctx context.Context, videoID string) (*models.Video, error) {
	const op = "PipelineService.Process"
	logger := s.logger.WithField("video_id", videoID)

	video, err := s.videos.Find(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if !video.IsProcessable() {
		return nil, errors.InvalidState(op, nil,
			fmt.Sprintf("Video is %s and cannot be processed", video.Status))
	}

	// The duration guard runs before the status leaves pending/failed, so a
	// skipped video never shows a stage status.
	if video.Duration != nil && ExceedsMaxDuration(*video.Duration, s.config.MaxDuration) {
		return s.skip(ctx, video)
	}

	if s.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ProcessTimeout)
		defer cancel()
	}

	logger.Info("Starting pipeline run")
	return s.run(ctx, video)
}

func (s *service) Retry(ctx context.Context, videoID string) (*models.Video, error) {
	const op = "PipelineService.Retry"

	video, err := s.videos.Find(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if video.Status != models.StatusFailed {
		return nil, errors.InvalidState(op, nil,
			fmt.Sprintf("Only failed videos can be retried, video is %s", video.Status))
	}

	// Clear the previous attempt's failure markers so they cannot leak into
	// a successful rerun.
	video.ClearMeta(models.MetaError, models.MetaFailedStage)
	video.Status = models.StatusPending
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	return s.Process(ctx, video.ID)
}

func (s *service) skip(ctx context.Context, video *models.Video) (*models.Video, error) {
	duration := 0
	if video.Duration != nil {
		duration = *video.Duration
	}
	maxSeconds := int(s.config.MaxDuration.Seconds())

	video.Status = models.StatusSkipped
	video.SetMeta(models.MetaSkipReason, models.SkipReasonDurationExceeded)
	video.SetMeta(models.MetaDuration, duration)
	video.SetMeta(models.MetaMaxDuration, maxSeconds)

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"video_id": video.ID,
		"duration": FormatDuration(duration),
		"max":      FormatDuration(maxSeconds),
	}).Info("Video exceeds maximum duration, skipping")

	return video, nil
}

// run executes the stages in order. The current stage is tracked so that a
// panic escaping an adapter is converted into the same failed-state outcome
// as a returned error; a video must never be left in a non-terminal status.
func (s *service) run(ctx context.Context, video *models.Video) (result *models.Video, err error) {
	stage := StageDownload

	defer func() {
		if p := recover(); p != nil {
			s.failStage(ctx, video, stage, fmt.Errorf("unexpected error: %v", p))
			result, err = video, nil
		}
	}()

	// Claiming the downloading status is the cooperative lock: a concurrent
	// attempt that lost the race observes the advanced status and is
	// rejected with InvalidState.
	video, err = s.videos.ClaimStatus(ctx, video.ID,
		[]models.Status{models.StatusPending, models.StatusFailed}, models.StatusDownloading)
	if err != nil {
		return nil, err
	}

	meta, err := s.downloader.FetchMetadata(ctx, video.ExternalID)
	if err != nil {
		s.failStage(ctx, video, StageDownload, err)
		return video, nil
	}
	applyMetadata(video, meta)

	// Re-check the guard now that the duration is known; the audio download
	// is the first expensive step and overlong videos must not reach it.
	if video.Duration != nil && ExceedsMaxDuration(*video.Duration, s.config.MaxDuration) {
		return s.skip(ctx, video)
	}

	audioPath, err := s.downloader.DownloadAudio(ctx, video.URL)
	if err != nil {
		s.failStage(ctx, video, StageDownload, err)
		return video, nil
	}
	defer s.cleanupAudio(audioPath)

	video.Status = models.StatusDownloaded
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	stage = StageTranscribe
	video.Status = models.StatusTranscribing
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	transcribed, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		s.failStage(ctx, video, StageTranscribe, err)
		return video, nil
	}

	transcription := &models.Transcription{
		ID:         uuid.New().String(),
		VideoID:    video.ID,
		Text:       transcribed.Text,
		Language:   transcribed.Language,
		Model:      transcribed.ModelName,
		Duration:   transcribed.Duration,
		Confidence: transcribed.LanguageProbability,
		CreatedAt:  time.Now(),
	}
	for _, seg := range transcribed.Segments {
		transcription.Segments = append(transcription.Segments, models.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	if err := s.transcriptions.Create(ctx, transcription); err != nil {
		s.failStage(ctx, video, StageTranscribe, err)
		return video, nil
	}

	video.Status = models.StatusTranscribed
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	stage = StageSummarize
	video.Status = models.StatusSummarizing
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	started := time.Now()
	summarized, err := s.summarizer.Summarize(ctx, transcription.Text)
	if err != nil {
		s.failStage(ctx, video, StageSummarize, err)
		return video, nil
	}

	summary := &models.Summary{
		ID:              uuid.New().String(),
		TranscriptionID: transcription.ID,
		Title:           summarized.Title,
		SummaryText:     summarized.Summary,
		KeyPoints:       summarized.KeyPoints,
		Topics:          summarized.Topics,
		Category:        summarized.Category,
		Model:           summarized.Model,
		InputTokens:     summarized.InputTokens,
		OutputTokens:    summarized.OutputTokens,
		TotalTokens:     summarized.TotalTokens,
		ProcessingMS:    time.Since(started).Milliseconds(),
		CreatedAt:       time.Now(),
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		s.failStage(ctx, video, StageSummarize, err)
		return video, nil
	}

	video.Status = models.StatusCompleted
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"video_id":   video.ID,
		"summary_id": summary.ID,
	}).Info("Pipeline run completed")

	return video, nil
}

// applyMetadata fills in fields the discovery pass did not know yet.
func applyMetadata(video *models.Video, meta *scripts.MetadataResult) {
	if video.Title == "" && meta.Title != "" {
		video.Title = meta.Title
	}
	if video.URL == "" && meta.URL != "" {
		video.URL = meta.URL
	}
	if video.Duration == nil && meta.Duration > 0 {
		seconds := int(meta.Duration)
		video.Duration = &seconds
	}
}

func (s *service) failStage(ctx context.Context, video *models.Video, stage string, stageErr error) {
	s.logger.WithError(stageErr).WithFields(logrus.Fields{
		"video_id": video.ID,
		"stage":    stage,
	}).Error("Pipeline stage failed")

	video.Status = models.StatusFailed
	video.SetMeta(models.MetaError, stageErr.Error())
	video.SetMeta(models.MetaFailedStage, stage)

	if err := s.videos.Update(ctx, video); err != nil {
		s.logger.WithError(err).WithField("video_id", video.ID).
			Error("Failed to persist failed status")
	}
}

func (s *service) cleanupAudio(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		// Cleanup must not mask the pipeline's real outcome.
		s.logger.WithError(err).WithField("path", path).Warn("Failed to remove audio file")
	}
}
