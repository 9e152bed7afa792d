//go:build unit

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/usecase/shared"
	"coach-booking/tests/common/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	fail   map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[topic] {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T, pub Publisher, topics ...string) (*OutboxRelay, *memstore.Store, *clock.MockClock) {
	t.Helper()
	store := memstore.New()
	clk := clock.NewMockClock(t0)
	for i, topic := range topics {
		at := t0.Add(-time.Duration(len(topics)-i) * time.Second)
		err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
			return tx.Notifications().CreateJob(ctx, "event", topic, []byte(`{}`), at)
		})
		require.NoError(t, err)
	}
	cfg := config.AMQPConfig{PollInterval: time.Second, BatchSize: 10, MaxAttempts: 3}
	return NewOutboxRelay(store, pub, clk, cfg), store, clk
}

func TestOutboxRelay_RunOnce(t *testing.T) {
	t.Run("success: publishes due jobs in order", func(t *testing.T) {
		pub := &recordingPublisher{}
		relay, store, _ := setup(t, pub, "session.booked", "payment.captured")

		sent, err := relay.RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []string{"session.booked", "payment.captured"}, pub.topics)
		for _, j := range store.Jobs() {
			assert.Equal(t, shared.JobSent, j.Status)
		}

		sent, err = relay.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("success: failed publish is retried with backoff", func(t *testing.T) {
		pub := &recordingPublisher{fail: map[string]bool{"session.booked": true}}
		relay, store, clk := setup(t, pub, "session.booked")

		sent, err := relay.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)

		jobs := store.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, shared.JobPending, jobs[0].Status)
		assert.Equal(t, 1, jobs[0].Attempts)
		assert.Equal(t, t0.Add(time.Second), jobs[0].RunAt)
		require.NotNil(t, jobs[0].LastError)

		// not yet due
		sent, err = relay.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Equal(t, 1, store.Jobs()[0].Attempts)

		pub.fail = nil
		clk.Add(time.Second)
		sent, err = relay.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, shared.JobSent, store.Jobs()[0].Status)
	})

	t.Run("error: job gives up after max attempts", func(t *testing.T) {
		pub := &recordingPublisher{fail: map[string]bool{"session.booked": true}}
		relay, store, clk := setup(t, pub, "session.booked")

		for range 3 {
			_, err := relay.RunOnce(context.Background())
			require.NoError(t, err)
			clk.Add(time.Hour)
		}

		jobs := store.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, shared.JobFailed, jobs[0].Status)
		assert.Equal(t, 3, jobs[0].Attempts)
	})
}

func TestOutboxRelay_StartStop(t *testing.T) {
	pub := &recordingPublisher{}
	relay, _, _ := setup(t, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, relay.Stop(stopCtx))
	assert.NoError(t, relay.Stop(stopCtx))
}

func TestRetryDelay(t *testing.T) {
	testCases := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 1, want: 2 * time.Second},
		{attempts: 2, want: 4 * time.Second},
		{attempts: 4, want: 16 * time.Second},
		{attempts: 20, want: maxRetryDelay},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, retryDelay(2*time.Second, tc.attempts), "attempts=%d", tc.attempts)
	}
}
