//go:build unit || e2e

// Package memstore is an in-memory shared.UnitOfWork for use-case tests.
// Transactions are serialized and roll back by restoring a snapshot, which
// is enough to exercise the conditional updates the commands rely on.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"coach-booking/internal/domain/bookingtype"
	"coach-booking/internal/domain/discount"
	"coach-booking/internal/domain/payment"
	"coach-booking/internal/domain/session"
	"coach-booking/internal/domain/timeslot"
	"coach-booking/internal/infra"
	"coach-booking/internal/usecase/queries"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sessionRow struct {
	id, userID, coachID, bookingTypeID, slotID uuid.UUID
	discountID, paymentID                      *uuid.UUID
	dateTime                                   time.Time
	durationMin                                int
	price                                      decimal.Decimal
	isPaid                                     bool
	status                                     session.Status
	calendarEventID                            *string
	createdAt, updatedAt                       time.Time
}

type slotRow struct {
	id, coachID uuid.UUID
	start       time.Time
	durationMin int
	isAvailable bool
	createdAt   time.Time
}

type discountRow struct {
	id                   uuid.UUID
	code                 discount.Code
	amount               decimal.Decimal
	expiry               time.Time
	useCount, maxUsage   int
	isActive             bool
	coachID              uuid.UUID
	createdAt, updatedAt time.Time
}

type paymentRow struct {
	id, sessionID, userID uuid.UUID
	amount                decimal.Decimal
	currency              string
	status                payment.Status
	orderID, captureID    *string
	createdAt, updatedAt  time.Time
}

type bookingTypeRow struct {
	id, coachID uuid.UUID
	name        string
	durationMin int
	basePrice   decimal.Decimal
	isActive    bool
	createdAt   time.Time
}

type idemKey struct {
	key, userID uuid.UUID
}

type state struct {
	sessions     map[uuid.UUID]sessionRow
	slots        map[uuid.UUID]slotRow
	discounts    map[discount.Code]discountRow
	payments     map[uuid.UUID]paymentRow
	bookingTypes map[uuid.UUID]bookingTypeRow
	idempotency  map[idemKey]shared.IdempotencyRecord
	jobs         map[uuid.UUID]shared.NotificationJob
	users        map[uuid.UUID]string
}

func (s state) clone() state {
	return state{
		sessions:     maps.Clone(s.sessions),
		slots:        maps.Clone(s.slots),
		discounts:    maps.Clone(s.discounts),
		payments:     maps.Clone(s.payments),
		bookingTypes: maps.Clone(s.bookingTypes),
		idempotency:  maps.Clone(s.idempotency),
		jobs:         maps.Clone(s.jobs),
		users:        maps.Clone(s.users),
	}
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	// Commits counts successful Within calls.
	Commits int
	// FailCommit makes the next Within return this error after fn succeeds.
	FailCommit error
}

func New() *Store {
	return &Store{st: state{
		sessions:     map[uuid.UUID]sessionRow{},
		slots:        map[uuid.UUID]slotRow{},
		discounts:    map[discount.Code]discountRow{},
		payments:     map[uuid.UUID]paymentRow{},
		bookingTypes: map[uuid.UUID]bookingTypeRow{},
		idempotency:  map[idemKey]shared.IdempotencyRecord{},
		jobs:         map[uuid.UUID]shared.NotificationJob{},
		users:        map[uuid.UUID]string{},
	}}
}

var _ shared.UnitOfWork = (*Store)(nil)
var _ queries.SessionReadStore = (*Store)(nil)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	err := fn(ctx, s)
	if err == nil && s.FailCommit != nil {
		err, s.FailCommit = s.FailCommit, nil
	}
	if err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	s.Commits++
	return nil
}

func (s *Store) Reads() shared.Repositories { return s }

func (s *Store) Sessions() shared.SessionRepository         { return sessionRepo{s} }
func (s *Store) TimeSlots() shared.TimeSlotRepository       { return slotRepo{s} }
func (s *Store) Discounts() shared.DiscountRepository       { return discountRepo{s} }
func (s *Store) Payments() shared.PaymentRepository         { return paymentRepo{s} }
func (s *Store) BookingTypes() shared.BookingTypeRepository { return bookingTypeRepo{s} }
func (s *Store) Idempotency() shared.IdempotencyRepository  { return idempotencyRepo{s} }
func (s *Store) Notifications() shared.NotificationRepository {
	return notificationRepo{s}
}

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func notFound(what string) error {
	return infra.NewRepoErr(infra.KindNotFound, what+" not found")
}

// ---- fixtures and inspection ----

func (s *Store) AddUser(id uuid.UUID, email string) {
	defer s.lock()()
	s.st.users[id] = email
}

func (s *Store) Jobs() []shared.NotificationJob {
	defer s.lock()()
	jobs := slices.Collect(maps.Values(s.st.jobs))
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].RunAt.Before(jobs[j].RunAt) })
	return jobs
}

func (s *Store) JobTopics() []string {
	jobs := s.Jobs()
	topics := make([]string, 0, len(jobs))
	for _, j := range jobs {
		topics = append(topics, j.Topic)
	}
	return topics
}

func (s *Store) Session(id uuid.UUID) (*session.Session, bool) {
	defer s.lock()()
	r, ok := s.st.sessions[id]
	if !ok {
		return nil, false
	}
	return r.entity(), true
}

func (s *Store) Slot(id uuid.UUID) (*timeslot.TimeSlot, bool) {
	defer s.lock()()
	r, ok := s.st.slots[id]
	if !ok {
		return nil, false
	}
	return r.entity(), true
}

func (s *Store) Discount(code string) (*discount.Discount, bool) {
	defer s.lock()()
	r, ok := s.st.discounts[discount.Code(code)]
	if !ok {
		return nil, false
	}
	return r.entity(), true
}

func (s *Store) PaymentsOf(sessionID uuid.UUID) []*payment.Payment {
	ps, _ := paymentRepo{s}.ListBySession(context.Background(), sessionID)
	return ps
}

func (s *Store) SessionCount() int {
	defer s.lock()()
	return len(s.st.sessions)
}

// ---- sessions ----

func (r sessionRow) entity() *session.Session {
	return session.ReconstructSession(r.id, r.userID, r.coachID, r.bookingTypeID, r.slotID, r.discountID,
		r.dateTime, r.durationMin, r.price, r.isPaid, r.status, r.paymentID, r.calendarEventID, r.createdAt, r.updatedAt)
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, se *session.Session) error {
	defer r.s.lock()()
	if _, ok := r.s.st.sessions[se.ID()]; ok {
		return infra.NewRepoErr(infra.KindDuplicateKey, "session exists")
	}
	for _, row := range r.s.st.sessions {
		if row.slotID == se.TimeSlotID() && row.status != session.StatusCancelled {
			return infra.NewRepoErr(infra.KindDuplicateKey, "active session for slot exists")
		}
	}
	r.s.st.sessions[se.ID()] = sessionRow{
		id: se.ID(), userID: se.UserID(), coachID: se.CoachID(), bookingTypeID: se.BookingTypeID(),
		slotID: se.TimeSlotID(), discountID: se.DiscountID(), paymentID: se.PaymentID(),
		dateTime: se.DateTime(), durationMin: se.DurationMin(), price: se.Price(), isPaid: se.IsPaid(),
		status: se.Status(), calendarEventID: se.CalendarEventID(), createdAt: se.CreatedAt(), updatedAt: se.UpdatedAt(),
	}
	return nil
}

func (r sessionRepo) FindByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	defer r.s.lock()()
	row, ok := r.s.st.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	return row.entity(), nil
}

func (r sessionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return r.FindByID(ctx, id)
}

func (r sessionRepo) FindByCalendarEventID(_ context.Context, eventID string) (*session.Session, error) {
	defer r.s.lock()()
	for _, row := range r.s.st.sessions {
		if row.calendarEventID != nil && *row.calendarEventID == eventID {
			return row.entity(), nil
		}
	}
	return nil, notFound("session")
}

func (r sessionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status session.Status, now time.Time) error {
	defer r.s.lock()()
	row, ok := r.s.st.sessions[id]
	if !ok {
		return notFound("session")
	}
	row.status, row.updatedAt = status, now
	r.s.st.sessions[id] = row
	return nil
}

func (r sessionRepo) MarkPaid(_ context.Context, id, paymentID uuid.UUID, now time.Time) (bool, error) {
	defer r.s.lock()()
	row, ok := r.s.st.sessions[id]
	if !ok || row.status == session.StatusCancelled || row.isPaid {
		return false, nil
	}
	row.isPaid, row.paymentID, row.updatedAt = true, &paymentID, now
	r.s.st.sessions[id] = row
	return true, nil
}

func (r sessionRepo) AttachCalendarEvent(_ context.Context, id uuid.UUID, eventID string, now time.Time) (bool, error) {
	defer r.s.lock()()
	row, ok := r.s.st.sessions[id]
	if !ok || row.calendarEventID != nil {
		return false, nil
	}
	row.calendarEventID, row.updatedAt = &eventID, now
	r.s.st.sessions[id] = row
	return true, nil
}

func (r sessionRepo) DetachCalendarEvent(_ context.Context, id uuid.UUID, now time.Time) error {
	defer r.s.lock()()
	row, ok := r.s.st.sessions[id]
	if !ok {
		return notFound("session")
	}
	row.calendarEventID, row.updatedAt = nil, now
	r.s.st.sessions[id] = row
	return nil
}

func (r sessionRepo) CountActiveBySlot(_ context.Context, slotID uuid.UUID) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, row := range r.s.st.sessions {
		if row.slotID == slotID && row.status != session.StatusCancelled {
			n++
		}
	}
	return n, nil
}

func (r sessionRepo) CountBySlot(_ context.Context, slotID uuid.UUID) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, row := range r.s.st.sessions {
		if row.slotID == slotID {
			n++
		}
	}
	return n, nil
}

// ---- time slots ----

func (r slotRow) entity() *timeslot.TimeSlot {
	return timeslot.ReconstructTimeSlot(r.id, r.coachID, r.start, r.durationMin, r.isAvailable, r.createdAt)
}

type slotRepo struct{ s *Store }

func (r slotRepo) Create(_ context.Context, t *timeslot.TimeSlot) error {
	defer r.s.lock()()
	r.s.st.slots[t.ID()] = slotRow{
		id: t.ID(), coachID: t.CoachID(), start: t.Start(), durationMin: t.DurationMin(),
		isAvailable: t.IsAvailable(), createdAt: t.CreatedAt(),
	}
	return nil
}

func (r slotRepo) FindByID(_ context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	defer r.s.lock()()
	row, ok := r.s.st.slots[id]
	if !ok {
		return nil, notFound("time slot")
	}
	return row.entity(), nil
}

func (r slotRepo) FindAvailableByID(_ context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	defer r.s.lock()()
	row, ok := r.s.st.slots[id]
	if !ok || !row.isAvailable {
		return nil, notFound("time slot")
	}
	return row.entity(), nil
}

func (r slotRepo) ListAvailableByCoach(_ context.Context, coachID uuid.UUID, from time.Time) ([]*timeslot.TimeSlot, error) {
	defer r.s.lock()()
	var rows []slotRow
	for _, row := range r.s.st.slots {
		if row.coachID == coachID && row.isAvailable && !row.start.Before(from) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].start.Before(rows[j].start) })
	out := make([]*timeslot.TimeSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

func (r slotRepo) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lock()()
	row, ok := r.s.st.slots[id]
	if !ok || !row.isAvailable {
		return false, nil
	}
	row.isAvailable = false
	r.s.st.slots[id] = row
	return true, nil
}

func (r slotRepo) setAvailable(id uuid.UUID, v bool) error {
	defer r.s.lock()()
	row, ok := r.s.st.slots[id]
	if !ok {
		return nil
	}
	row.isAvailable = v
	r.s.st.slots[id] = row
	return nil
}

func (r slotRepo) Release(_ context.Context, id uuid.UUID) error {
	return r.setAvailable(id, true)
}

func (r slotRepo) MarkUnavailable(_ context.Context, id uuid.UUID) error {
	return r.setAvailable(id, false)
}

func (r slotRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, ok := r.s.st.slots[id]; !ok {
		return notFound("time slot")
	}
	for _, row := range r.s.st.sessions {
		if row.slotID == id {
			return infra.NewRepoErr(infra.KindForeignKeyViolated, "time slot referenced")
		}
	}
	delete(r.s.st.slots, id)
	return nil
}

// ---- discounts ----

func (r discountRow) entity() *discount.Discount {
	return discount.ReconstructDiscount(r.id, r.code, r.amount, r.expiry, r.useCount, r.maxUsage, r.isActive, r.coachID, r.createdAt, r.updatedAt)
}

func discountRowOf(d *discount.Discount) discountRow {
	return discountRow{
		id: d.ID(), code: d.Code(), amount: d.Amount(), expiry: d.Expiry(), useCount: d.UseCount(),
		maxUsage: d.MaxUsage(), isActive: d.IsActive(), coachID: d.CoachID(), createdAt: d.CreatedAt(), updatedAt: d.UpdatedAt(),
	}
}

type discountRepo struct{ s *Store }

func (r discountRepo) Create(_ context.Context, d *discount.Discount) error {
	defer r.s.lock()()
	if _, ok := r.s.st.discounts[d.Code()]; ok {
		return infra.NewRepoErr(infra.KindDuplicateKey, "discount code exists")
	}
	r.s.st.discounts[d.Code()] = discountRowOf(d)
	return nil
}

func (r discountRepo) FindByCode(_ context.Context, code discount.Code) (*discount.Discount, error) {
	defer r.s.lock()()
	row, ok := r.s.st.discounts[code]
	if !ok {
		return nil, notFound("discount")
	}
	return row.entity(), nil
}

func (r discountRepo) Consume(_ context.Context, code discount.Code, now time.Time) (*discount.Discount, bool, error) {
	defer r.s.lock()()
	row, ok := r.s.st.discounts[code]
	if !ok || !row.isActive || row.expiry.Before(now) || row.useCount >= row.maxUsage {
		return nil, false, nil
	}
	row.useCount++
	row.updatedAt = now
	r.s.st.discounts[code] = row
	return row.entity(), true, nil
}

func (r discountRepo) Update(_ context.Context, d *discount.Discount) error {
	defer r.s.lock()()
	if _, ok := r.s.st.discounts[d.Code()]; !ok {
		return notFound("discount")
	}
	r.s.st.discounts[d.Code()] = discountRowOf(d)
	return nil
}

func (r discountRepo) Deactivate(_ context.Context, code discount.Code, now time.Time) (bool, error) {
	defer r.s.lock()()
	row, ok := r.s.st.discounts[code]
	if !ok || !row.isActive {
		return false, nil
	}
	row.isActive, row.updatedAt = false, now
	r.s.st.discounts[code] = row
	return true, nil
}

// ---- payments ----

func (r paymentRow) entity() *payment.Payment {
	return payment.ReconstructPayment(r.id, r.sessionID, r.userID, r.amount, r.currency, r.status, r.orderID, r.captureID, r.createdAt, r.updatedAt)
}

func paymentRowOf(p *payment.Payment) paymentRow {
	return paymentRow{
		id: p.ID(), sessionID: p.SessionID(), userID: p.UserID(), amount: p.Amount(), currency: p.Currency(),
		status: p.Status(), orderID: p.OrderID(), captureID: p.CaptureID(), createdAt: p.CreatedAt(), updatedAt: p.UpdatedAt(),
	}
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *payment.Payment) error {
	defer r.s.lock()()
	if p.OrderID() != nil {
		for _, row := range r.s.st.payments {
			if row.orderID != nil && *row.orderID == *p.OrderID() {
				return infra.NewRepoErr(infra.KindDuplicateKey, "order id exists")
			}
		}
	}
	r.s.st.payments[p.ID()] = paymentRowOf(p)
	return nil
}

func (r paymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	defer r.s.lock()()
	row, ok := r.s.st.payments[id]
	if !ok {
		return nil, notFound("payment")
	}
	return row.entity(), nil
}

func (r paymentRepo) FindByOrderID(_ context.Context, orderID string) (*payment.Payment, error) {
	defer r.s.lock()()
	for _, row := range r.s.st.payments {
		if row.orderID != nil && *row.orderID == orderID {
			return row.entity(), nil
		}
	}
	return nil, notFound("payment")
}

func (r paymentRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]*payment.Payment, error) {
	defer r.s.lock()()
	var rows []paymentRow
	for _, row := range r.s.st.payments {
		if row.sessionID == sessionID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].createdAt.Before(rows[j].createdAt) })
	out := make([]*payment.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

func (r paymentRepo) Update(_ context.Context, p *payment.Payment) error {
	defer r.s.lock()()
	if _, ok := r.s.st.payments[p.ID()]; !ok {
		return notFound("payment")
	}
	r.s.st.payments[p.ID()] = paymentRowOf(p)
	return nil
}

// ---- booking types ----

func (r bookingTypeRow) entity() *bookingtype.BookingType {
	return bookingtype.ReconstructBookingType(r.id, r.coachID, r.name, r.durationMin, r.basePrice, r.isActive, r.createdAt)
}

type bookingTypeRepo struct{ s *Store }

func (r bookingTypeRepo) Create(_ context.Context, bt *bookingtype.BookingType) error {
	defer r.s.lock()()
	r.s.st.bookingTypes[bt.ID()] = bookingTypeRow{
		id: bt.ID(), coachID: bt.CoachID(), name: bt.Name(), durationMin: bt.DurationMin(),
		basePrice: bt.BasePrice(), isActive: bt.IsActive(), createdAt: bt.CreatedAt(),
	}
	return nil
}

func (r bookingTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingtype.BookingType, error) {
	defer r.s.lock()()
	row, ok := r.s.st.bookingTypes[id]
	if !ok {
		return nil, notFound("booking type")
	}
	return row.entity(), nil
}

func (r bookingTypeRepo) ListActiveByCoach(_ context.Context, coachID uuid.UUID) ([]*bookingtype.BookingType, error) {
	defer r.s.lock()()
	var rows []bookingTypeRow
	for _, row := range r.s.st.bookingTypes {
		if row.coachID == coachID && row.isActive {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
	out := make([]*bookingtype.BookingType, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

func (r bookingTypeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	row, ok := r.s.st.bookingTypes[id]
	if !ok {
		return notFound("booking type")
	}
	row.isActive = false
	r.s.st.bookingTypes[id] = row
	return nil
}

// ---- idempotency ----

type idempotencyRepo struct{ s *Store }

func (r idempotencyRepo) TryInsert(_ context.Context, rec shared.IdempotencyRecord) (bool, error) {
	defer r.s.lock()()
	k := idemKey{rec.Key, rec.UserID}
	if _, ok := r.s.st.idempotency[k]; ok {
		return false, nil
	}
	rec.Status = shared.IdempotencyProcessing
	rec.ResultSessionID = nil
	r.s.st.idempotency[k] = rec
	return true, nil
}

func (r idempotencyRepo) Get(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	defer r.s.lock()()
	rec, ok := r.s.st.idempotency[idemKey{key, userID}]
	if !ok {
		return nil, notFound("idempotency key")
	}
	return &rec, nil
}

func (r idempotencyRepo) MarkCompleted(_ context.Context, key, userID, sessionID uuid.UUID, expiresAt time.Time) error {
	defer r.s.lock()()
	k := idemKey{key, userID}
	rec, ok := r.s.st.idempotency[k]
	if !ok {
		return nil
	}
	rec.Status = shared.IdempotencyCompleted
	rec.ResultSessionID = &sessionID
	rec.ExpiresAt = expiresAt
	r.s.st.idempotency[k] = rec
	return nil
}

func (r idempotencyRepo) Delete(_ context.Context, key, userID uuid.UUID) error {
	defer r.s.lock()()
	delete(r.s.st.idempotency, idemKey{key, userID})
	return nil
}

func (r idempotencyRepo) ClaimExpired(_ context.Context, rec shared.IdempotencyRecord, now time.Time) (bool, error) {
	defer r.s.lock()()
	k := idemKey{rec.Key, rec.UserID}
	cur, ok := r.s.st.idempotency[k]
	if !ok || !cur.ExpiresAt.Before(now) {
		return false, nil
	}
	rec.Status = shared.IdempotencyProcessing
	rec.ResultSessionID = nil
	r.s.st.idempotency[k] = rec
	return true, nil
}

// ---- notifications ----

type notificationRepo struct{ s *Store }

func (r notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	defer r.s.lock()()
	id := uuid.New()
	r.s.st.jobs[id] = shared.NotificationJob{
		ID: id, Kind: kind, Topic: topic, Payload: slices.Clone(payload), RunAt: runAt, Status: shared.JobPending,
	}
	return nil
}

func (r notificationRepo) ClaimPending(_ context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	defer r.s.lock()()
	var due []shared.NotificationJob
	for _, j := range r.s.st.jobs {
		if j.Status == shared.JobPending && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r notificationRepo) MarkSent(_ context.Context, id uuid.UUID, _ time.Time) error {
	defer r.s.lock()()
	j, ok := r.s.st.jobs[id]
	if !ok {
		return notFound("job")
	}
	j.Status, j.Attempts, j.LastError = shared.JobSent, j.Attempts+1, nil
	r.s.st.jobs[id] = j
	return nil
}

func (r notificationRepo) Reschedule(_ context.Context, id uuid.UUID, status, lastError string, runAt time.Time) error {
	defer r.s.lock()()
	j, ok := r.s.st.jobs[id]
	if !ok {
		return notFound("job")
	}
	j.Status, j.Attempts, j.LastError, j.RunAt = status, j.Attempts+1, &lastError, runAt
	r.s.st.jobs[id] = j
	return nil
}

// ---- read store ----

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*queries.SessionView, error) {
	defer s.lock()()
	row, ok := s.st.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	return s.view(row), nil
}

func (s *Store) view(row sessionRow) *queries.SessionView {
	v := &queries.SessionView{
		ID:              row.id,
		UserID:          row.userID,
		UserEmail:       s.st.users[row.userID],
		CoachID:         row.coachID,
		CoachEmail:      s.st.users[row.coachID],
		BookingTypeID:   row.bookingTypeID,
		BookingTypeName: s.st.bookingTypes[row.bookingTypeID].name,
		TimeSlotID:      row.slotID,
		DiscountID:      row.discountID,
		DateTime:        row.dateTime,
		DurationMin:     row.durationMin,
		Price:           row.price,
		IsPaid:          row.isPaid,
		Status:          row.status.String(),
		PaymentID:       row.paymentID,
		CalendarEventID: row.calendarEventID,
		CreatedAt:       row.createdAt,
		UpdatedAt:       row.updatedAt,
	}
	if row.discountID != nil {
		for code, d := range s.st.discounts {
			if d.id == *row.discountID {
				c := code.String()
				v.DiscountCode = &c
			}
		}
	}
	return v
}

func (s *Store) FindFirstPage(ctx context.Context, filter queries.SessionFilter, limit int32) ([]*queries.SessionListItem, error) {
	return s.list(filter, nil, uuid.Nil, limit), nil
}

func (s *Store) FindKeyset(ctx context.Context, filter queries.SessionFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.SessionListItem, error) {
	return s.list(filter, &lastCreatedAt, lastID, limit), nil
}

func (s *Store) list(filter queries.SessionFilter, afterAt *time.Time, afterID uuid.UUID, limit int32) []*queries.SessionListItem {
	defer s.lock()()
	var rows []sessionRow
	for _, row := range s.st.sessions {
		if filter.UserID != nil && row.userID != *filter.UserID {
			continue
		}
		if filter.CoachID != nil && row.coachID != *filter.CoachID {
			continue
		}
		if afterAt != nil && !before(row, *afterAt, afterID) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return before(rows[j], rows[i].createdAt, rows[i].id)
	})
	if int32(len(rows)) > limit {
		rows = rows[:limit]
	}
	out := make([]*queries.SessionListItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, &queries.SessionListItem{
			ID:              row.id,
			UserID:          row.userID,
			CoachID:         row.coachID,
			BookingTypeName: s.st.bookingTypes[row.bookingTypeID].name,
			DateTime:        row.dateTime,
			DurationMin:     row.durationMin,
			Price:           row.price,
			IsPaid:          row.isPaid,
			Status:          row.status.String(),
			CreatedAt:       row.createdAt,
		})
	}
	return out
}

// before mirrors (created_at, id) < (at, id) in the keyset query.
func before(row sessionRow, at time.Time, id uuid.UUID) bool {
	if !row.createdAt.Equal(at) {
		return row.createdAt.Before(at)
	}
	return bytesLess(row.id, id)
}

func bytesLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
