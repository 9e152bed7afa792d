package shared

import (
	"context"
	"time"

	"coach-booking/internal/domain/bookingtype"
	"coach-booking/internal/domain/discount"
	"coach-booking/internal/domain/payment"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/domain/timeslot"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn in a read-committed transaction, retrying on serialization failure and deadlock
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads exposes repositories bound to the pool for single statements outside a transaction
	Reads() Repositories
}

type Repositories interface {
	Sessions() SessionRepository
	TimeSlots() TimeSlotRepository
	Discounts() DiscountRepository
	Payments() PaymentRepository
	BookingTypes() BookingTypeRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
}

type Tx interface {
	Repositories
}

// Repositories report a missing row as infra.KindNotFound. Methods returning
// a bool perform a conditional update and report whether a row matched.

type SessionRepository interface {
	Create(ctx context.Context, s *session.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*session.Session, error)
	FindByCalendarEventID(ctx context.Context, eventID string) (*session.Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status session.Status, now time.Time) error
	MarkPaid(ctx context.Context, id, paymentID uuid.UUID, now time.Time) (bool, error)
	AttachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string, now time.Time) (bool, error)
	DetachCalendarEvent(ctx context.Context, id uuid.UUID, now time.Time) error
	CountActiveBySlot(ctx context.Context, slotID uuid.UUID) (int, error)
	CountBySlot(ctx context.Context, slotID uuid.UUID) (int, error)
}

type TimeSlotRepository interface {
	Create(ctx context.Context, slot *timeslot.TimeSlot) error
	FindByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error)
	FindAvailableByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error)
	ListAvailableByCoach(ctx context.Context, coachID uuid.UUID, from time.Time) ([]*timeslot.TimeSlot, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
	MarkUnavailable(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DiscountRepository interface {
	Create(ctx context.Context, d *discount.Discount) error
	FindByCode(ctx context.Context, code discount.Code) (*discount.Discount, error)
	// Consume increments use_count only while the code is usable and returns
	// the row as it is after the increment.
	Consume(ctx context.Context, code discount.Code, now time.Time) (*discount.Discount, bool, error)
	Update(ctx context.Context, d *discount.Discount) error
	Deactivate(ctx context.Context, code discount.Code, now time.Time) (bool, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*payment.Payment, error)
	Update(ctx context.Context, p *payment.Payment) error
}

type BookingTypeRepository interface {
	Create(ctx context.Context, bt *bookingtype.BookingType) error
	FindByID(ctx context.Context, id uuid.UUID) (*bookingtype.BookingType, error)
	ListActiveByCoach(ctx context.Context, coachID uuid.UUID) ([]*bookingtype.BookingType, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Endpoint        string
	RequestHash     string
	Status          string
	ResultSessionID *uuid.UUID
	ExpiresAt       time.Time
}

type IdempotencyRepository interface {
	// TryInsert reports false when the key already exists for the user.
	TryInsert(ctx context.Context, rec IdempotencyRecord) (bool, error)
	Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	// MarkCompleted stores the result and keeps it replayable until expiresAt.
	MarkCompleted(ctx context.Context, key, userID, sessionID uuid.UUID, expiresAt time.Time) error
	Delete(ctx context.Context, key, userID uuid.UUID) error
	// ClaimExpired takes over an expired key for a new request.
	ClaimExpired(ctx context.Context, rec IdempotencyRecord, now time.Time) (bool, error)
}

const (
	JobPending = "pending"
	JobSent    = "sent"
	JobFailed  = "failed"
)

type NotificationJob struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	RunAt     time.Time
	Attempts  int
	Status    string
	LastError *string
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimPending locks due jobs with SKIP LOCKED; it must run inside a transaction.
	ClaimPending(ctx context.Context, now time.Time, limit int) ([]NotificationJob, error)
	MarkSent(ctx context.Context, id uuid.UUID, now time.Time) error
	Reschedule(ctx context.Context, id uuid.UUID, status, lastError string, runAt time.Time) error
}
