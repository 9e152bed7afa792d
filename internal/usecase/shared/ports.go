package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	ReferenceID string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

type Order struct {
	ID          string
	Status      string
	ApprovalURL string
}

// Capture is what the gateway actually took, which may differ from the
// amount the order was opened for locally.
type Capture struct {
	OrderID   string
	CaptureID string
	Status    string
	Amount    decimal.Decimal
	Currency  string
}

func (c *Capture) Matches(amount decimal.Decimal, currency string) bool {
	return c.Amount.Equal(amount) && c.Currency == currency
}

type Refund struct {
	ID     string
	Status string
}

const (
	GatewayStatusCompleted = "COMPLETED"
	GatewayStatusPending   = "PENDING"
)

// Accepted reports whether the gateway took the refund; PENDING refunds settle later.
func (r *Refund) Accepted() bool {
	return r.Status == GatewayStatusCompleted || r.Status == GatewayStatusPending
}

// PaymentGateway is the external order/capture API. Implementations bound
// every call by a timeout.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
	RefundCapture(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (*Refund, error)
}

type CalendarEvent struct {
	SessionID uuid.UUID
	Summary   string
	Start     time.Time
	End       time.Time
	Attendees []string
}

type CalendarProvider interface {
	CreateEvent(ctx context.Context, ev CalendarEvent) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Locker hands out short-lived exclusive locks. TryLock returns a token that
// must be passed back to Unlock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, key, token string) error
}
