package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tubebrief/errors"
	"tubebrief/models"
)

const (
	insertVideoQuery = `
        INSERT INTO videos (
            id, source_id, external_id, title, url, duration,
            status, published_at, metadata, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	videoColumns = `id, source_id, external_id, title, url, duration,
               status, published_at, metadata, deleted_at, created_at, updated_at`

	updateVideoQuery = `
        UPDATE videos SET
            title = ?,
            url = ?,
            duration = ?,
            status = ?,
            published_at = ?,
            metadata = ?,
            updated_at = ?
        WHERE id = ? AND deleted_at IS NULL
    `

	softDeleteVideoQuery = `
        UPDATE videos SET deleted_at = ?, updated_at = ?
        WHERE id = ? AND deleted_at IS NULL
    `
)

type VideoRepository struct {
	db     *sql.DB
	config DBConfig
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db, config: DefaultDBConfig()}
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	const op = "VideoRepository.Create"

	metadata, err := marshalJSON(video.Metadata)
	if err != nil {
		return errors.Internal(op, err, "failed to encode metadata")
	}

	err = r.withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, insertVideoQuery,
			video.ID,
			video.SourceID,
			video.ExternalID,
			video.Title,
			video.URL,
			video.Duration,
			string(video.Status),
			video.PublishedAt,
			metadata,
			video.CreatedAt,
			video.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errors.InvalidInput(op, err, "A video with this external ID already exists")
		}
		return errors.Internal(op, err, "Failed to create video")
	}
	return nil
}

func (r *VideoRepository) Find(ctx context.Context, id string) (*models.Video, error) {
	const op = "VideoRepository.Find"

	query := fmt.Sprintf("SELECT %s FROM videos WHERE id = ? AND deleted_at IS NULL", videoColumns)
	return r.scanVideo(ctx, op, r.db.QueryRowContext(ctx, query, id))
}

func (r *VideoRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Video, error) {
	const op = "VideoRepository.FindByExternalID"

	query := fmt.Sprintf("SELECT %s FROM videos WHERE external_id = ? AND deleted_at IS NULL", videoColumns)
	return r.scanVideo(ctx, op, r.db.QueryRowContext(ctx, query, externalID))
}

func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	const op = "VideoRepository.Update"

	metadata, err := marshalJSON(video.Metadata)
	if err != nil {
		return errors.Internal(op, err, "failed to encode metadata")
	}

	video.UpdatedAt = time.Now()

	err = r.withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, updateVideoQuery,
			video.Title,
			video.URL,
			video.Duration,
			string(video.Status),
			video.PublishedAt,
			metadata,
			video.UpdatedAt,
			video.ID,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err == sql.ErrNoRows {
		return errors.NotFound(op, nil, "Video not found")
	}
	if err != nil {
		return errors.Internal(op, err, "Failed to update video")
	}
	return nil
}

// ClaimStatus performs the check-then-set status transition as a single
// conditional UPDATE, so two concurrent attempts cannot both claim the row.
func (r *VideoRepository) ClaimStatus(ctx context.Context, id string, expected []models.Status, next models.Status) (*models.Video, error) {
	const op = "VideoRepository.ClaimStatus"

	placeholders := make([]string, len(expected))
	args := []interface{}{string(next), time.Now()}
	for i, s := range expected {
		placeholders[i] = "?"
		args = append(args, string(s))
	}
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE videos SET status = ?, updated_at = ?
        WHERE status IN (%s) AND id = ? AND deleted_at IS NULL
    `, strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to claim video status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to claim video status")
	}
	if affected == 0 {
		// Either the row does not exist or it is in a non-claimable status;
		// a follow-up read distinguishes the two.
		video, findErr := r.Find(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		return nil, errors.InvalidState(op, nil,
			fmt.Sprintf("Video is in status %q and cannot be claimed", video.Status))
	}

	return r.Find(ctx, id)
}

func (r *VideoRepository) SoftDelete(ctx context.Context, id string) error {
	const op = "VideoRepository.SoftDelete"

	now := time.Now()
	res, err := r.db.ExecContext(ctx, softDeleteVideoQuery, now, now, id)
	if err != nil {
		return errors.Internal(op, err, "Failed to delete video")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Internal(op, err, "Failed to delete video")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Video not found")
	}
	return nil
}

func (r *VideoRepository) scanVideo(ctx context.Context, op string, row *sql.Row) (*models.Video, error) {
	video := &models.Video{}
	var status string
	var metadata sql.NullString
	var title sql.NullString

	err := row.Scan(
		&video.ID,
		&video.SourceID,
		&video.ExternalID,
		&title,
		&video.URL,
		&video.Duration,
		&status,
		&video.PublishedAt,
		&metadata,
		&video.DeletedAt,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Video not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query video")
	}

	video.Status = models.Status(status)
	video.Title = title.String
	if err := unmarshalJSON(metadata, &video.Metadata); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode metadata")
	}
	return video, nil
}

func (r *VideoRepository) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < r.config.MaxRetries; i++ {
		if err := fn(); err != nil {
			if !isLockError(err) {
				return err
			}
			lastErr = err
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.config.RetryDelay * time.Duration(i+1)):
			}
			continue
		}
		return nil
	}
	return lastErr
}
