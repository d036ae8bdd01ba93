package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo persists the refresh and password reset token hashes kept on the
// users row.  A user has at most one active refresh token: logging in on a
// new device ends the previous session.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records the refresh token hash of userID.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=?, refresh_expires_at=? WHERE id=?",
		tokenHash, exp, userID)
	return err
}

// ValidateRefresh returns the user owning a non-expired refresh token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, refresh_expires_at FROM users WHERE refresh_token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	if !expiresAt.Valid || time.Now().UTC().After(expiresAt.Time) {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// RevokeForUser clears the refresh token of userID.
func (r *TokenRepo) RevokeForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=NULL, refresh_expires_at=NULL WHERE id=?",
		userID)
	return err
}

// StoreReset records a password reset token hash for userID.
func (r *TokenRepo) StoreReset(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_expires_at=? WHERE id=?",
		tokenHash, exp, userID)
	return err
}

// ResetPassword consumes a reset token and installs passwordHash.  The reset
// token and any refresh token are cleared in the same transaction.
func (r *TokenRepo) ResetPassword(ctx context.Context, tokenHash, passwordHash string) (userID uint64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	var expiresAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		"SELECT id, reset_expires_at FROM users WHERE reset_token_hash=? LIMIT 1 FOR UPDATE",
		tokenHash).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	if !expiresAt.Valid || time.Now().UTC().After(expiresAt.Time) {
		err = ErrInvalidToken
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_expires_at=NULL,
		 refresh_token_hash=NULL, refresh_expires_at=NULL WHERE id=?`,
		passwordHash, userID); err != nil {
		return 0, err
	}
	return userID, nil
}
