package uow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"coach-booking/internal/infra/db"
	"coach-booking/internal/infra/repository"
	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"

	maxAttempts = 4
	baseBackoff = 100 * time.Millisecond
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// PostgresUoW runs booking, capture and cancel flows in one READ COMMITTED
// transaction each. Row locks taken by the repositories (FOR UPDATE) give the
// isolation those flows need; deadlocks and serialization failures are retried.
type PostgresUoW struct {
	pool  *pgxpool.Pool
	reads *repos
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{
		pool:  pool,
		reads: eagerRepos(pool),
	}
}

func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	var err error
	for attempt := range maxAttempts {
		if attempt > 0 {
			wait := backoff(attempt)
			slog.Warn("retrying transaction",
				"attempt", attempt+1,
				"wait_ms", wait.Milliseconds(),
				"error", err.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err = u.attempt(ctx, opts, fn)
		if err == nil || !isRetryableError(err) {
			return err
		}
	}

	slog.Error("transaction failed after max retries", "attempts", maxAttempts, "error", err.Error())
	return errs.Mark(err, errMaxRetriesExceeded)
}

func (u *PostgresUoW) Reads() shared.Repositories {
	return u.reads
}

// attempt keeps begin and rollback in one frame so a retry loop never
// accumulates deferred rollbacks.
func (u *PostgresUoW) attempt(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, opts)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}
	defer func() {
		if rbErr := pgxTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("rollback failed", "error", rbErr.Error())
		}
	}()

	if err := fn(ctx, &repos{dbtx: pgxTx}); err != nil {
		return err
	}
	if err := pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, errTransactionCommit)
	}
	return nil
}

// backoff doubles per attempt with up to 20% jitter.
func backoff(attempt int) time.Duration {
	wait := baseBackoff << (attempt - 1)
	return wait + rand.N(wait/5+1)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrCodeSerializationFailure || pgErr.Code == pgErrCodeDeadlockDetected
}

// repos binds repositories to one DBTX, created on first use.
type repos struct {
	dbtx db.DBTX

	sessions      *repository.SessionRepository
	timeSlots     *repository.TimeSlotRepository
	discounts     *repository.DiscountRepository
	payments      *repository.PaymentRepository
	bookingTypes  *repository.BookingTypeRepository
	idempotency   *repository.IdempotencyRepository
	notifications *repository.NotificationRepository
}

// eagerRepos initializes every repository up front so the pool-bound set can
// be shared between goroutines.
func eagerRepos(dbtx db.DBTX) *repos {
	r := &repos{dbtx: dbtx}
	r.Sessions()
	r.TimeSlots()
	r.Discounts()
	r.Payments()
	r.BookingTypes()
	r.Idempotency()
	r.Notifications()
	return r
}

func (t *repos) Sessions() shared.SessionRepository {
	if t.sessions == nil {
		t.sessions = repository.NewSessionRepository(t.dbtx)
	}
	return t.sessions
}

func (t *repos) TimeSlots() shared.TimeSlotRepository {
	if t.timeSlots == nil {
		t.timeSlots = repository.NewTimeSlotRepository(t.dbtx)
	}
	return t.timeSlots
}

func (t *repos) Discounts() shared.DiscountRepository {
	if t.discounts == nil {
		t.discounts = repository.NewDiscountRepository(t.dbtx)
	}
	return t.discounts
}

func (t *repos) Payments() shared.PaymentRepository {
	if t.payments == nil {
		t.payments = repository.NewPaymentRepository(t.dbtx)
	}
	return t.payments
}

func (t *repos) BookingTypes() shared.BookingTypeRepository {
	if t.bookingTypes == nil {
		t.bookingTypes = repository.NewBookingTypeRepository(t.dbtx)
	}
	return t.bookingTypes
}

func (t *repos) Idempotency() shared.IdempotencyRepository {
	if t.idempotency == nil {
		t.idempotency = repository.NewIdempotencyRepository(t.dbtx)
	}
	return t.idempotency
}

func (t *repos) Notifications() shared.NotificationRepository {
	if t.notifications == nil {
		t.notifications = repository.NewNotificationRepository(t.dbtx)
	}
	return t.notifications
}
