package sqlite

import (
	"context"
	"database/sql"

	"tubebrief/errors"
	"tubebrief/models"
)

const (
	insertSourceQuery = `
        INSERT INTO sources (id, name, channel_id, url, created_at)
        VALUES (?, ?, ?, ?, ?)
    `

	getSourceQuery = `
        SELECT id, name, channel_id, url, created_at
        FROM sources WHERE id = ?
    `
)

type SourceRepository struct {
	db *sql.DB
}

func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) Create(ctx context.Context, s *models.Source) error {
	const op = "SourceRepository.Create"

	_, err := r.db.ExecContext(ctx, insertSourceQuery,
		s.ID, s.Name, s.ChannelID, s.URL, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.InvalidInput(op, err, "A source with this channel ID already exists")
		}
		return errors.Internal(op, err, "Failed to create source")
	}
	return nil
}

func (r *SourceRepository) Find(ctx context.Context, id string) (*models.Source, error) {
	const op = "SourceRepository.Find"

	s := &models.Source{}
	err := r.db.QueryRowContext(ctx, getSourceQuery, id).Scan(
		&s.ID, &s.Name, &s.ChannelID, &s.URL, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Source not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query source")
	}
	return s, nil
}
