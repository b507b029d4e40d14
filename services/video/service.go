package video

import (
	"context"
	"time"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/repository"
	"tubebrief/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type service struct {
	videos    repository.VideoRepository
	sources   repository.SourceRepository
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewService(
	videos repository.VideoRepository,
	sources repository.SourceRepository,
	validator *validation.Validator,
) Service {
	return &service{
		videos:    videos,
		sources:   sources,
		validator: validator,
		logger:    logrus.StandardLogger(),
	}
}

func (s *service) Create(ctx context.Context, req *models.CreateVideoRequest) (*models.Video, error) {
	const op = "VideoService.Create"

	if err := s.validator.ValidateExternalID(req.ExternalID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateURL(req.URL); err != nil {
		return nil, err
	}

	// The source must exist before videos can reference it.
	if _, err := s.sources.Find(ctx, req.SourceID); err != nil {
		return nil, err
	}

	// Duplicate submissions are rejected at creation, not at processing
	// time; the unique constraint backs this up under concurrency.
	if _, err := s.videos.FindByExternalID(ctx, req.ExternalID); err == nil {
		return nil, errors.InvalidInput(op, nil, "A video with this external ID already exists")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	now := time.Now()
	video := &models.Video{
		ID:         uuid.New().String(),
		SourceID:   req.SourceID,
		ExternalID: req.ExternalID,
		Title:      req.Title,
		URL:        req.URL,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"video_id":    video.ID,
		"external_id": video.ExternalID,
	}).Info("Video registered")

	return video, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Video, error) {
	const op = "VideoService.Get"

	if id == "" {
		return nil, errors.InvalidInput(op, nil, "ID is required")
	}
	return s.videos.Find(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, req *models.UpdateVideoRequest) (*models.Video, error) {
	const op = "VideoService.Update"

	video, err := s.videos.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Duration != nil {
		if *req.Duration < 0 {
			return nil, errors.InvalidInput(op, nil, "Duration must not be negative")
		}
		video.Duration = req.Duration
	}

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	const op = "VideoService.Delete"

	if id == "" {
		return errors.InvalidInput(op, nil, "ID is required")
	}
	return s.videos.SoftDelete(ctx, id)
}
