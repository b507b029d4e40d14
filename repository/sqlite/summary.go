package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tubebrief/errors"
	"tubebrief/models"
)

const (
	insertSummaryQuery = `
        INSERT INTO summaries (
            id, transcription_id, title, summary_text, key_points, topics,
            category, model, input_tokens, output_tokens, total_tokens,
            processing_ms, delivered, delivered_at, receipts, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	summaryColumns = `id, transcription_id, title, summary_text, key_points, topics,
               category, model, input_tokens, output_tokens, total_tokens,
               processing_ms, delivered, delivered_at, receipts, created_at`

	markDeliveredQuery = `
        UPDATE summaries SET delivered = 1, delivered_at = ?, receipts = ?
        WHERE id = ? AND delivered = 0
    `
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Create(ctx context.Context, s *models.Summary) error {
	const op = "SummaryRepository.Create"

	keyPoints, err := marshalJSON(s.KeyPoints)
	if err != nil {
		return errors.Internal(op, err, "failed to encode key points")
	}
	topics, err := marshalJSON(s.Topics)
	if err != nil {
		return errors.Internal(op, err, "failed to encode topics")
	}
	receipts, err := marshalJSON(s.Receipts)
	if err != nil {
		return errors.Internal(op, err, "failed to encode receipts")
	}

	_, err = r.db.ExecContext(ctx, insertSummaryQuery,
		s.ID,
		s.TranscriptionID,
		s.Title,
		s.SummaryText,
		keyPoints,
		topics,
		s.Category,
		s.Model,
		s.InputTokens,
		s.OutputTokens,
		s.TotalTokens,
		s.ProcessingMS,
		s.Delivered,
		s.DeliveredAt,
		receipts,
		s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.InvalidState(op, err, "Transcription already has a summary")
		}
		return errors.Internal(op, err, "Failed to create summary")
	}
	return nil
}

func (r *SummaryRepository) Find(ctx context.Context, id string) (*models.Summary, error) {
	const op = "SummaryRepository.Find"

	query := fmt.Sprintf("SELECT %s FROM summaries WHERE id = ?", summaryColumns)
	return r.scanSummary(op, r.db.QueryRowContext(ctx, query, id))
}

func (r *SummaryRepository) FindByTranscriptionID(ctx context.Context, transcriptionID string) (*models.Summary, error) {
	const op = "SummaryRepository.FindByTranscriptionID"

	query := fmt.Sprintf("SELECT %s FROM summaries WHERE transcription_id = ?", summaryColumns)
	return r.scanSummary(op, r.db.QueryRowContext(ctx, query, transcriptionID))
}

// MarkDelivered flips the delivered flag and stores the receipt map in one
// statement, guarded on delivered = 0 so a second distribution run cannot
// overwrite the first run's receipts.
func (r *SummaryRepository) MarkDelivered(ctx context.Context, id string, receipts map[string]string) error {
	const op = "SummaryRepository.MarkDelivered"

	receiptsCol, err := marshalJSON(receipts)
	if err != nil {
		return errors.Internal(op, err, "failed to encode receipts")
	}

	return WithTransaction(ctx, r.db, func(tx Executor) error {
		res, err := tx.ExecContext(ctx, markDeliveredQuery, time.Now(), receiptsCol, id)
		if err != nil {
			return errors.Internal(op, err, "Failed to mark summary delivered")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Internal(op, err, "Failed to mark summary delivered")
		}
		if affected == 0 {
			var delivered bool
			err := tx.QueryRowContext(ctx, "SELECT delivered FROM summaries WHERE id = ?", id).Scan(&delivered)
			if err == sql.ErrNoRows {
				return errors.NotFound(op, nil, "Summary not found")
			}
			if err != nil {
				return errors.Internal(op, err, "Failed to query summary")
			}
			return errors.AlreadyDelivered(op, nil, "Summary has already been delivered")
		}
		return nil
	})
}

func (r *SummaryRepository) scanSummary(op string, row *sql.Row) (*models.Summary, error) {
	s := &models.Summary{}
	var title, keyPoints, topics, category, model, receipts sql.NullString

	err := row.Scan(
		&s.ID,
		&s.TranscriptionID,
		&title,
		&s.SummaryText,
		&keyPoints,
		&topics,
		&category,
		&model,
		&s.InputTokens,
		&s.OutputTokens,
		&s.TotalTokens,
		&s.ProcessingMS,
		&s.Delivered,
		&s.DeliveredAt,
		&receipts,
		&s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Summary not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query summary")
	}

	s.Title = title.String
	s.Category = category.String
	s.Model = model.String
	if err := unmarshalJSON(keyPoints, &s.KeyPoints); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode key points")
	}
	if err := unmarshalJSON(topics, &s.Topics); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode topics")
	}
	if err := unmarshalJSON(receipts, &s.Receipts); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode receipts")
	}
	return s, nil
}
