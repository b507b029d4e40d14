package repository

import (
	"context"
	"tubebrief/models"
)

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	Find(ctx context.Context, id string) (*models.Video, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error

	// ClaimStatus atomically moves the video from one of the expected
	// statuses to next, returning the refreshed row. It fails when the
	// current status is not in expected, which is what rejects a second
	// concurrent processing attempt.
	ClaimStatus(ctx context.Context, id string, expected []models.Status, next models.Status) (*models.Video, error)

	SoftDelete(ctx context.Context, id string) error
}

type TranscriptionRepository interface {
	Create(ctx context.Context, t *models.Transcription) error
	Find(ctx context.Context, id string) (*models.Transcription, error)
	FindByVideoID(ctx context.Context, videoID string) (*models.Transcription, error)
}

type SummaryRepository interface {
	Create(ctx context.Context, s *models.Summary) error
	Find(ctx context.Context, id string) (*models.Summary, error)
	FindByTranscriptionID(ctx context.Context, transcriptionID string) (*models.Summary, error)

	// MarkDelivered commits the receipt map, the delivered flag and the
	// delivery timestamp in one transaction. It fails when the summary was
	// already delivered.
	MarkDelivered(ctx context.Context, id string, receipts map[string]string) error
}

type SourceRepository interface {
	Create(ctx context.Context, s *models.Source) error
	Find(ctx context.Context, id string) (*models.Source, error)
}

type RecipientRepository interface {
	Create(ctx context.Context, r *models.Recipient) error
	Find(ctx context.Context, id string) (*models.Recipient, error)

	// SubscribersOf returns every recipient subscribed to the source,
	// blocked ones included.
	SubscribersOf(ctx context.Context, sourceID string) ([]*models.Recipient, error)

	Subscribe(ctx context.Context, recipientID, sourceID string) error

	// SetBlocked persists the blocked flag immediately so concurrent and
	// future distribution runs skip the recipient.
	SetBlocked(ctx context.Context, id string, blocked bool) error
}
