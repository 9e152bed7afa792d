// Package worker runs background jobs next to the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/usecase/shared"
)

const maxRetryDelay = 10 * time.Minute

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// OutboxRelay forwards notification jobs written by the commands to the
// publisher with at-least-once delivery. Jobs are claimed with SKIP LOCKED so
// any number of replicas can run a relay.
type OutboxRelay struct {
	uow       shared.UnitOfWork
	publisher Publisher
	clock     clock.Clock
	cfg       config.AMQPConfig

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewOutboxRelay(uow shared.UnitOfWork, publisher Publisher, clk clock.Clock, cfg config.AMQPConfig) *OutboxRelay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &OutboxRelay{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *OutboxRelay) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	slog.Info("outbox relay started", "interval", r.cfg.PollInterval, "batch_size", r.cfg.BatchSize)

	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			case <-ticker.C:
				if _, err := r.RunOnce(ctx); err != nil {
					slog.Error("outbox relay tick failed", "error", err)
				}
			}
		}
	}()
}

// Stop waits for the current tick to finish or ctx to expire.
func (r *OutboxRelay) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stop) })
	select {
	case <-r.done:
		slog.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce publishes one batch of due jobs and reports how many were sent.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	sent := 0
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sent = 0
		now := r.clock.Now()
		jobs, err := tx.Notifications().ClaimPending(ctx, now, r.cfg.BatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			pubErr := r.publisher.Publish(ctx, job.Topic, job.Payload)
			if pubErr == nil {
				if err := tx.Notifications().MarkSent(ctx, job.ID, now); err != nil {
					return err
				}
				sent++
				continue
			}

			attempts := job.Attempts + 1
			if attempts >= r.cfg.MaxAttempts {
				slog.Error("outbox job gave up", "job_id", job.ID, "topic", job.Topic, "attempts", attempts, "error", pubErr)
				if err := tx.Notifications().Reschedule(ctx, job.ID, shared.JobFailed, pubErr.Error(), now); err != nil {
					return err
				}
				continue
			}

			runAt := now.Add(retryDelay(r.cfg.PollInterval, attempts))
			slog.Warn("outbox job rescheduled", "job_id", job.ID, "topic", job.Topic, "attempts", attempts, "run_at", runAt, "error", pubErr)
			if err := tx.Notifications().Reschedule(ctx, job.ID, shared.JobPending, pubErr.Error(), runAt); err != nil {
				return err
			}
		}
		return nil
	})
	return sent, err
}

func retryDelay(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}
