package commands

import (
	"context"
	"time"

	"coach-booking/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	jobKindEvent = "event"

	TopicSessionBooked    = "session.booked"
	TopicSessionCancelled = "session.cancelled"
	TopicSessionStatus    = "session.status_changed"
	TopicPaymentCaptured  = "payment.captured"
	TopicPaymentRefunded  = "payment.refunded"
)

type SessionEvent struct {
	SessionID  uuid.UUID       `json:"session_id"`
	UserID     uuid.UUID       `json:"user_id"`
	CoachID    uuid.UUID       `json:"coach_id"`
	Status     string          `json:"status"`
	DateTime   time.Time       `json:"date_time"`
	Price      decimal.Decimal `json:"price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type PaymentEvent struct {
	PaymentID  uuid.UUID       `json:"payment_id"`
	SessionID  uuid.UUID       `json:"session_id"`
	OrderID    string          `json:"order_id,omitempty"`
	CaptureID  string          `json:"capture_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// enqueue writes an outbox row in the caller's transaction.
func enqueue(ctx context.Context, tx shared.Tx, topic string, event any, now time.Time) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, jobKindEvent, topic, payload, now)
}
