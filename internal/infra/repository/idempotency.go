package repository

import (
	"context"
	"time"

	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	tryInsertIdempotencyKeySQL = `INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
	VALUES ($1, $2, $3, $4, 'processing', $5)
	ON CONFLICT (key, user_id) DO NOTHING`

	getIdempotencyKeySQL = `SELECT key, user_id, endpoint, request_hash, status, result_session_id, expires_at
	FROM idempotency_keys WHERE key = $1 AND user_id = $2`

	completeIdempotencyKeySQL = `UPDATE idempotency_keys
	SET status = 'completed', result_session_id = $3, expires_at = $4, updated_at = now()
	WHERE key = $1 AND user_id = $2`

	deleteIdempotencyKeySQL = `DELETE FROM idempotency_keys WHERE key = $1 AND user_id = $2`

	claimExpiredIdempotencyKeySQL = `UPDATE idempotency_keys
	SET endpoint = $3, request_hash = $4, status = 'processing', result_session_id = NULL,
		expires_at = $5, updated_at = now()
	WHERE key = $1 AND user_id = $2 AND expires_at < $6`
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(db db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, rec shared.IdempotencyRecord) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKeySQL, rec.Key, rec.UserID, rec.Endpoint, rec.RequestHash, rec.ExpiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec      shared.IdempotencyRecord
		resultID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, getIdempotencyKeySQL, key, userID).
		Scan(&rec.Key, &rec.UserID, &rec.Endpoint, &rec.RequestHash, &rec.Status, &resultID, &rec.ExpiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec.ResultSessionID = pgconv.UUIDPtrFromPgtype(resultID)
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, key, userID, sessionID uuid.UUID, expiresAt time.Time) error {
	if _, err := r.db.Exec(ctx, completeIdempotencyKeySQL, key, userID, sessionID, expiresAt); err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, key, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteIdempotencyKeySQL, key, userID); err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, rec shared.IdempotencyRecord, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, claimExpiredIdempotencyKeySQL,
		rec.Key, rec.UserID, rec.Endpoint, rec.RequestHash, rec.ExpiresAt, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}
