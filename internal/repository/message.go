package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/msgboard/msgboard/internal/model"
)

const messageWithUserColumns = `
	m.id, m.content, m.user_id, m.created_at,
	u.id, u.name, u.email, u.created_at`

// CreateMessage inserts a new message and returns it joined with its author.
// Returns ErrOwnerNotFound when message.UserID does not reference a user.
func (r *Repository) CreateMessage(ctx context.Context, message *model.Message) (*model.MessageWithUser, error) {
	query := `
		WITH m AS (
			INSERT INTO messages (id, content, user_id, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, content, user_id, created_at
		)
		SELECT ` + messageWithUserColumns + `
		FROM m
		JOIN users u ON u.id = m.user_id
	`

	created, err := scanMessageWithUser(r.pool.QueryRow(ctx, query,
		message.ID,
		message.Content,
		message.UserID,
		message.CreatedAt,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return created, nil
}

// ListMessages returns every message with its author, newest first.
func (r *Repository) ListMessages(ctx context.Context) ([]model.MessageWithUser, error) {
	query := `
		SELECT ` + messageWithUserColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC, m.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.MessageWithUser, 0)
	for rows.Next() {
		message, err := scanMessageWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// GetMessageByID retrieves a message and its author.
func (r *Repository) GetMessageByID(ctx context.Context, id string) (*model.MessageWithUser, error) {
	query := `
		SELECT ` + messageWithUserColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = $1
	`

	message, err := scanMessageWithUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUnmatchableKey(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", err)
	}

	return message, nil
}

// DeleteMessage removes a message and returns the ID of the user that owned it.
func (r *Repository) DeleteMessage(ctx context.Context, id string) (string, error) {
	query := `
		DELETE FROM messages
		WHERE id = $1
		RETURNING user_id
	`

	var userID string
	err := r.pool.QueryRow(ctx, query, id).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUnmatchableKey(err) {
			return "", ErrMessageNotFound
		}
		return "", fmt.Errorf("failed to delete message: %w", err)
	}

	return userID, nil
}

// listMessagesByUser returns a user's messages, newest first. Never nil.
func listMessagesByUser(ctx context.Context, q querier, userID string) ([]model.Message, error) {
	query := `
		SELECT id, content, user_id, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by user: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		var message model.Message
		if err := rows.Scan(
			&message.ID,
			&message.Content,
			&message.UserID,
			&message.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// scanMessageWithUser scans a joined message/user row.
func scanMessageWithUser(row pgx.Row) (*model.MessageWithUser, error) {
	var m model.MessageWithUser
	err := row.Scan(
		&m.ID,
		&m.Content,
		&m.UserID,
		&m.CreatedAt,
		&m.User.ID,
		&m.User.Name,
		&m.User.Email,
		&m.User.CreatedAt,
	)
	return &m, err
}
