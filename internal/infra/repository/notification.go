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
	createNotificationJobSQL = `INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
	VALUES ($1, $2, $3, $4, 'pending')`

	claimPendingNotificationJobsSQL = `SELECT id, kind, topic, payload, run_at, attempts, status, last_error
	FROM notification_jobs
	WHERE status = 'pending' AND run_at <= $1
	ORDER BY run_at ASC
	LIMIT $2
	FOR UPDATE SKIP LOCKED`

	markNotificationJobSentSQL = `UPDATE notification_jobs
	SET status = 'sent', attempts = attempts + 1, last_error = NULL, updated_at = $2
	WHERE id = $1`

	rescheduleNotificationJobSQL = `UPDATE notification_jobs
	SET status = $2, attempts = attempts + 1, last_error = $3, run_at = $4, updated_at = now()
	WHERE id = $1`
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(db db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	if _, err := r.db.Exec(ctx, createNotificationJobSQL, kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimPending(ctx context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	rows, err := r.db.Query(ctx, claimPendingNotificationJobsSQL, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	jobs := make([]shared.NotificationJob, 0, limit)
	for rows.Next() {
		var (
			job       shared.NotificationJob
			lastError pgtype.Text
		)
		if err := rows.Scan(&job.ID, &job.Kind, &job.Topic, &job.Payload, &job.RunAt, &job.Attempts, &job.Status, &lastError); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		job.LastError = pgconv.StringPtrFromPgtype(lastError)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, now time.Time) error {
	if _, err := r.db.Exec(ctx, markNotificationJobSentSQL, id, now); err != nil {
		return infra.WrapRepoErr("failed to mark notification job sent", err)
	}
	return nil
}

func (r *NotificationRepository) Reschedule(ctx context.Context, id uuid.UUID, status, lastError string, runAt time.Time) error {
	if _, err := r.db.Exec(ctx, rescheduleNotificationJobSQL, id, status, lastError, runAt); err != nil {
		return infra.WrapRepoErr("failed to reschedule notification job", err)
	}
	return nil
}
