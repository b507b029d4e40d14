package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"tubebrief/errors"
	"tubebrief/models"
)

const (
	insertTranscriptionQuery = `
        INSERT INTO transcriptions (
            id, video_id, text, language, model,
            duration, segments, confidence, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	transcriptionColumns = `id, video_id, text, language, model,
               duration, segments, confidence, created_at`
)

type TranscriptionRepository struct {
	db *sql.DB
}

func NewTranscriptionRepository(db *sql.DB) *TranscriptionRepository {
	return &TranscriptionRepository{db: db}
}

func (r *TranscriptionRepository) Create(ctx context.Context, t *models.Transcription) error {
	const op = "TranscriptionRepository.Create"

	var segments sql.NullString
	if len(t.Segments) > 0 {
		col, err := marshalJSON(t.Segments)
		if err != nil {
			return errors.Internal(op, err, "failed to encode segments")
		}
		segments = col
	}

	_, err := r.db.ExecContext(ctx, insertTranscriptionQuery,
		t.ID,
		t.VideoID,
		t.Text,
		t.Language,
		t.Model,
		t.Duration,
		segments,
		t.Confidence,
		t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.InvalidState(op, err, "Video already has a transcription")
		}
		return errors.Internal(op, err, "Failed to create transcription")
	}
	return nil
}

func (r *TranscriptionRepository) Find(ctx context.Context, id string) (*models.Transcription, error) {
	const op = "TranscriptionRepository.Find"

	query := fmt.Sprintf("SELECT %s FROM transcriptions WHERE id = ?", transcriptionColumns)
	return r.scanTranscription(op, r.db.QueryRowContext(ctx, query, id))
}

func (r *TranscriptionRepository) FindByVideoID(ctx context.Context, videoID string) (*models.Transcription, error) {
	const op = "TranscriptionRepository.FindByVideoID"

	query := fmt.Sprintf("SELECT %s FROM transcriptions WHERE video_id = ?", transcriptionColumns)
	return r.scanTranscription(op, r.db.QueryRowContext(ctx, query, videoID))
}

func (r *TranscriptionRepository) scanTranscription(op string, row *sql.Row) (*models.Transcription, error) {
	t := &models.Transcription{}
	var language, model, segments sql.NullString

	err := row.Scan(
		&t.ID,
		&t.VideoID,
		&t.Text,
		&language,
		&model,
		&t.Duration,
		&segments,
		&t.Confidence,
		&t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Transcription not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query transcription")
	}

	t.Language = language.String
	t.Model = model.String
	if err := unmarshalJSON(segments, &t.Segments); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode segments")
	}
	return t, nil
}
