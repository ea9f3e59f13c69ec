package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/msgboard/msgboard/internal/model"
)

const userColumns = `id, name, email, created_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// ListUsers returns every user, newest first.
func (r *Repository) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// GetUserWithMessages retrieves a user and all of its messages, newest first.
// Both reads share one read-only snapshot.
func (r *Repository) GetUserWithMessages(ctx context.Context, id string) (*model.UserWithMessages, error) {
	var result *model.UserWithMessages

	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, r.pool, txOpts, func(tx pgx.Tx) error {
		user, err := getUserByID(ctx, tx, id)
		if err != nil {
			return err
		}

		messages, err := listMessagesByUser(ctx, tx, id)
		if err != nil {
			return err
		}

		result = &model.UserWithMessages{User: *user, Messages: messages}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user with messages: %w", err)
	}

	return result, nil
}

// DeleteUser removes a user. The database cascades the delete to the user's
// messages; their IDs are returned so callers can drop derived state.
func (r *Repository) DeleteUser(ctx context.Context, id string) ([]string, error) {
	var messageIDs []string

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Row lock blocks concurrent message inserts referencing this user,
		// so the collected IDs match what the cascade removes.
		var locked string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || isUnmatchableKey(err) {
				return ErrUserNotFound
			}
			return err
		}

		rows, err := tx.Query(ctx, `SELECT id FROM messages WHERE user_id = $1`, id)
		if err != nil {
			return err
		}
		messageIDs, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return messageIDs, nil
}

func getUserByID(ctx context.Context, q querier, id string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUnmatchableKey(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	return &user, err
}
