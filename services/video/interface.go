package video

import (
	"context"

	"tubebrief/models"
)

// Service covers video registration and bookkeeping; the processing itself
// lives in the pipeline service.
type Service interface {
	Create(ctx context.Context, req *models.CreateVideoRequest) (*models.Video, error)
	Get(ctx context.Context, id string) (*models.Video, error)
	Update(ctx context.Context, id string, req *models.UpdateVideoRequest) (*models.Video, error)
	Delete(ctx context.Context, id string) error
}
