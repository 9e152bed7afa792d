package payment

import (
	"time"

	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errs.BadRequest("Payment amount must be positive")
	ErrInvalidCurrency   = errs.BadRequest("Currency must be a 3-letter code")
	ErrInvalidTransition = errs.BadRequest("Invalid payment status transition")
)

// Payment tracks one gateway order for a session. OrderID is empty until the
// gateway has accepted the order.
type Payment struct {
	id        uuid.UUID
	sessionID uuid.UUID
	userID    uuid.UUID
	amount    decimal.Decimal
	currency  string
	status    Status
	orderID   *string
	captureID *string
	createdAt time.Time
	updatedAt time.Time
}

func NewPayment(sessionID, userID uuid.UUID, amount decimal.Decimal, currency string, now time.Time) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	return &Payment{
		id:        uuid.New(),
		sessionID: sessionID,
		userID:    userID,
		amount:    amount,
		currency:  currency,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewCompletedPayment records a capture for which no local order row existed.
func NewCompletedPayment(sessionID, userID uuid.UUID, amount decimal.Decimal, currency, orderID, captureID string, now time.Time) *Payment {
	return &Payment{
		id:        uuid.New(),
		sessionID: sessionID,
		userID:    userID,
		amount:    amount,
		currency:  currency,
		status:    StatusCompleted,
		orderID:   &orderID,
		captureID: &captureID,
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstructPayment(
	id, sessionID, userID uuid.UUID,
	amount decimal.Decimal,
	currency string,
	status Status,
	orderID, captureID *string,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:        id,
		sessionID: sessionID,
		userID:    userID,
		amount:    amount,
		currency:  currency,
		status:    status,
		orderID:   orderID,
		captureID: captureID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p *Payment) ID() uuid.UUID           { return p.id }
func (p *Payment) SessionID() uuid.UUID    { return p.sessionID }
func (p *Payment) UserID() uuid.UUID       { return p.userID }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) Currency() string        { return p.currency }
func (p *Payment) Status() Status          { return p.status }
func (p *Payment) OrderID() *string        { return p.orderID }
func (p *Payment) CaptureID() *string      { return p.captureID }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time    { return p.updatedAt }

func (p *Payment) IsPending() bool   { return p.status == StatusPending }
func (p *Payment) IsCompleted() bool { return p.status == StatusCompleted }

// IsSettledNegatively reports whether no further capture may be attempted.
func (p *Payment) IsSettledNegatively() bool {
	return p.status == StatusFailed || p.status == StatusRefunded
}

// IsStalePending reports a PENDING payment older than ttl, i.e. an order the
// client abandoned.
func (p *Payment) IsStalePending(now time.Time, ttl time.Duration) bool {
	return p.status == StatusPending && now.Sub(p.createdAt) >= ttl
}

func (p *Payment) AttachOrder(orderID string, now time.Time) {
	p.orderID = &orderID
	p.updatedAt = now
}

func (p *Payment) TransitionTo(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !p.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	p.status = next
	p.updatedAt = now
	return nil
}

func (p *Payment) Complete(captureID string, now time.Time) error {
	if err := p.TransitionTo(StatusCompleted, now); err != nil {
		return err
	}
	p.captureID = &captureID
	return nil
}

// Reverse records a capture that could not be settled locally. The payment
// ends REFUNDED when the funds went back to the payer and FAILED otherwise;
// either way the capture id is kept for reconciliation.
func (p *Payment) Reverse(captureID string, refunded bool, now time.Time) {
	p.captureID = &captureID
	p.status = StatusFailed
	if refunded {
		p.status = StatusRefunded
	}
	p.updatedAt = now
}

// Override sets any valid status regardless of the transition table.
func (p *Payment) Override(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	p.status = next
	p.updatedAt = now
	return nil
}
