package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/training-portal/internal/model"
)

type TokenRepository struct {
	db *Database
}

func NewTokenRepository(db *Database) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t *model.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (token, employee_id, purpose, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, t.Token, t.EmployeeID, t.Purpose, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Find(ctx context.Context, token string) (*model.ResetToken, error) {
	var t model.ResetToken
	query := `
		SELECT token, employee_id, purpose, expires_at, consumed_at, created_at
		FROM reset_tokens WHERE token = $1
	`
	err := r.db.GetContext(ctx, &t, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}
	return &t, nil
}

// DeleteByEmployee removes every outstanding token for the subject, consumed
// or not. Issuing a fresh token always calls this first so stale links can
// never be replayed.
func (r *TokenRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}
	return int(n), nil
}

// Consume marks the token consumed and sets the employee's password hash in
// one transaction; either both rows change or neither does. The guard on
// consumed_at makes a second consumption of the same token fail.
func (r *TokenRepository) Consume(ctx context.Context, token, employeeID, passwordHash string, consumedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE reset_tokens SET consumed_at = $2 WHERE token = $1 AND consumed_at IS NULL AND expires_at > $2`,
		token, consumedAt)
	if err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	} else if n == 0 {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE employees SET password_hash = $2 WHERE id = $1`,
		employeeID, passwordHash); err != nil {
		return fmt.Errorf("failed to set password hash: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// PurgeDead deletes tokens that can never be consumed again: expired ones and
// consumed ones. Run periodically; correctness never depends on it.
func (r *TokenRepository) PurgeDead(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reset_tokens WHERE expires_at <= $1 OR consumed_at IS NOT NULL`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	return n, nil
}
