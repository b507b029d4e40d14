package sqlite

import (
	"context"
	"database/sql"
	"time"

	"tubebrief/errors"
	"tubebrief/models"
)

const (
	insertRecipientQuery = `
        INSERT INTO recipients (id, chat_id, name, blocked, created_at)
        VALUES (?, ?, ?, ?, ?)
    `

	getRecipientQuery = `
        SELECT id, chat_id, name, blocked, created_at
        FROM recipients WHERE id = ?
    `

	subscribersOfQuery = `
        SELECT r.id, r.chat_id, r.name, r.blocked, r.created_at
        FROM recipients r
        JOIN subscriptions s ON s.recipient_id = r.id
        WHERE s.source_id = ?
        ORDER BY r.created_at, r.id
    `

	insertSubscriptionQuery = `
        INSERT INTO subscriptions (recipient_id, source_id, created_at)
        VALUES (?, ?, ?)
        ON CONFLICT(recipient_id, source_id) DO NOTHING
    `

	setBlockedQuery = `
        UPDATE recipients SET blocked = ? WHERE id = ?
    `
)

type RecipientRepository struct {
	db *sql.DB
}

func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

func (r *RecipientRepository) Create(ctx context.Context, rec *models.Recipient) error {
	const op = "RecipientRepository.Create"

	_, err := r.db.ExecContext(ctx, insertRecipientQuery,
		rec.ID, rec.ChatID, rec.Name, rec.Blocked, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.InvalidInput(op, err, "A recipient with this chat ID already exists")
		}
		return errors.Internal(op, err, "Failed to create recipient")
	}
	return nil
}

func (r *RecipientRepository) Find(ctx context.Context, id string) (*models.Recipient, error) {
	const op = "RecipientRepository.Find"

	rec := &models.Recipient{}
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, getRecipientQuery, id).Scan(
		&rec.ID, &rec.ChatID, &name, &rec.Blocked, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Recipient not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query recipient")
	}
	rec.Name = name.String
	return rec, nil
}

func (r *RecipientRepository) SubscribersOf(ctx context.Context, sourceID string) ([]*models.Recipient, error) {
	const op = "RecipientRepository.SubscribersOf"

	rows, err := r.db.QueryContext(ctx, subscribersOfQuery, sourceID)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query subscribers")
	}
	defer rows.Close()

	var recipients []*models.Recipient
	for rows.Next() {
		rec := &models.Recipient{}
		var name sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ChatID, &name, &rec.Blocked, &rec.CreatedAt); err != nil {
			return nil, errors.Internal(op, err, "Failed to scan subscriber")
		}
		rec.Name = name.String
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "Failed to iterate subscribers")
	}
	return recipients, nil
}

func (r *RecipientRepository) Subscribe(ctx context.Context, recipientID, sourceID string) error {
	const op = "RecipientRepository.Subscribe"

	_, err := r.db.ExecContext(ctx, insertSubscriptionQuery, recipientID, sourceID, time.Now())
	if err != nil {
		return errors.Internal(op, err, "Failed to subscribe recipient")
	}
	return nil
}

func (r *RecipientRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	const op = "RecipientRepository.SetBlocked"

	res, err := r.db.ExecContext(ctx, setBlockedQuery, blocked, id)
	if err != nil {
		return errors.Internal(op, err, "Failed to update recipient")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Internal(op, err, "Failed to update recipient")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Recipient not found")
	}
	return nil
}
