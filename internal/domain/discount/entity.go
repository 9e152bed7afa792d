package discount

import (
	"time"

	"coach-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCode          = errs.BadRequest("Invalid discount code format")
	ErrInvalidAmount        = errs.BadRequest("Discount amount cannot be negative")
	ErrInvalidMaxUsage      = errs.BadRequest("Max usage must be at least 1")
	ErrMaxUsageBelowUsed    = errs.BadRequest("Max usage cannot be lower than current use count")
	ErrExpiryInPast         = errs.BadRequest("Expiry must be in the future")
	ErrInvalidOrExpiredCode = errs.BadRequest("Invalid or expired discount code")
	ErrUsageLimitReached    = errs.BadRequest("Discount usage limit reached")
)

type Discount struct {
	id        uuid.UUID
	code      Code
	amount    decimal.Decimal
	expiry    time.Time
	useCount  int
	maxUsage  int
	isActive  bool
	coachID   uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

func NewDiscount(coachID uuid.UUID, code string, amount decimal.Decimal, expiry time.Time, maxUsage int, now time.Time) (*Discount, error) {
	c, err := NewCode(code)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if maxUsage < 1 {
		return nil, ErrInvalidMaxUsage
	}
	if !expiry.After(now) {
		return nil, ErrExpiryInPast
	}

	return &Discount{
		id:        uuid.New(),
		code:      c,
		amount:    amount,
		expiry:    expiry,
		maxUsage:  maxUsage,
		isActive:  true,
		coachID:   coachID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructDiscount(
	id uuid.UUID,
	code Code,
	amount decimal.Decimal,
	expiry time.Time,
	useCount, maxUsage int,
	isActive bool,
	coachID uuid.UUID,
	createdAt, updatedAt time.Time,
) *Discount {
	return &Discount{
		id:        id,
		code:      code,
		amount:    amount,
		expiry:    expiry,
		useCount:  useCount,
		maxUsage:  maxUsage,
		isActive:  isActive,
		coachID:   coachID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Eligibility reports why a code cannot be used right now, or nil.
func (d *Discount) Eligibility(now time.Time) error {
	if !d.isActive || now.After(d.expiry) {
		return ErrInvalidOrExpiredCode
	}
	if d.useCount >= d.maxUsage {
		return ErrUsageLimitReached
	}
	return nil
}

func (d *Discount) IsUsable(now time.Time) bool {
	return d.Eligibility(now) == nil
}

func (d *Discount) OwnedBy(coachID uuid.UUID) bool {
	return d.coachID == coachID
}

type Changes struct {
	Amount   *decimal.Decimal
	Expiry   *time.Time
	MaxUsage *int
}

func (d *Discount) Apply(ch Changes, now time.Time) error {
	amount, expiry, maxUsage := d.amount, d.expiry, d.maxUsage
	if ch.Amount != nil {
		amount = *ch.Amount
	}
	if ch.Expiry != nil {
		expiry = *ch.Expiry
	}
	if ch.MaxUsage != nil {
		maxUsage = *ch.MaxUsage
	}

	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if maxUsage < 1 {
		return ErrInvalidMaxUsage
	}
	if maxUsage < d.useCount {
		return ErrMaxUsageBelowUsed
	}
	if ch.Expiry != nil && !expiry.After(now) {
		return ErrExpiryInPast
	}

	d.amount, d.expiry, d.maxUsage = amount, expiry, maxUsage
	d.updatedAt = now
	return nil
}

func (d *Discount) Deactivate(now time.Time) {
	d.isActive = false
	d.updatedAt = now
}

func (d *Discount) ID() uuid.UUID           { return d.id }
func (d *Discount) Code() Code              { return d.code }
func (d *Discount) Amount() decimal.Decimal { return d.amount }
func (d *Discount) Expiry() time.Time       { return d.expiry }
func (d *Discount) UseCount() int           { return d.useCount }
func (d *Discount) MaxUsage() int           { return d.maxUsage }
func (d *Discount) IsActive() bool          { return d.isActive }
func (d *Discount) CoachID() uuid.UUID      { return d.coachID }
func (d *Discount) CreatedAt() time.Time    { return d.createdAt }
func (d *Discount) UpdatedAt() time.Time    { return d.updatedAt }
