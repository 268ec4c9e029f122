package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
)

const errInvalidRefresh = "Invalid or expired refresh token"

// TokenRepo stores refresh tokens by their SHA-256 hash.  The raw value
// only ever lives in the client's cookie.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a new session for userID.  The user's expired and
// revoked rows are pruned in the same transaction so the table only grows
// with live sessions.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM refresh_tokens WHERE user_id = ? AND (revoked_at IS NOT NULL OR expires_at <= UTC_TIMESTAMP())",
			userID); err != nil {
			return translate(err, "refresh token")
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)",
			userID, tokenHash, exp.UTC())
		return translate(err, "refresh token")
	})
}

// ValidateRefresh returns the owner of a live token.  Unknown, revoked and
// expired tokens are indistinguishable to the caller.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens
               WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
		tokenHash).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, apperr.New(apperr.Unauthorized, errInvalidRefresh)
	}
	return userID, translate(err, "refresh token")
}

// RevokeByHash revokes a single session.  Revoking an unknown or already
// revoked token is not an error.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.revoke(ctx, "token_hash = ?", tokenHash)
}

// RevokeAllForUser ends every session of userID.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return r.revoke(ctx, "user_id = ?", userID)
}

func (r *TokenRepo) revoke(ctx context.Context, where string, arg interface{}) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE revoked_at IS NULL AND "+where, arg)
	return translate(err, "refresh token")
}
