package repository

import (
	"context"
	"time"

	"coach-booking/internal/domain/payment"
	"coach-booking/internal/infra"
	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, session_id, user_id, amount, currency, status, paypal_order_id, paypal_capture_id, created_at, updated_at`

const (
	createPaymentSQL = `INSERT INTO payments (` + paymentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	findPaymentByIDSQL = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	findPaymentByOrderIDSQL = `SELECT ` + paymentColumns + ` FROM payments WHERE paypal_order_id = $1`

	listPaymentsBySessionSQL = `SELECT ` + paymentColumns + ` FROM payments
	WHERE session_id = $1
	ORDER BY created_at DESC, id DESC`

	updatePaymentSQL = `UPDATE payments
	SET status = $2, paypal_order_id = $3, paypal_capture_id = $4, updated_at = $5
	WHERE id = $1`
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(db db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db.Exec(ctx, createPaymentSQL,
		p.ID(),
		p.SessionID(),
		p.UserID(),
		pgconv.DecimalToPgtype(p.Amount()),
		p.Currency(),
		string(p.Status()),
		pgconv.StringPtrToPgtype(p.OrderID()),
		pgconv.StringPtrToPgtype(p.CaptureID()),
		p.CreatedAt(),
		p.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, findPaymentByIDSQL, id)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.findOne(ctx, findPaymentByOrderIDSQL, orderID)
}

func (r *PaymentRepository) findOne(ctx context.Context, query string, arg any) (*payment.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}
	return p, nil
}

func (r *PaymentRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*payment.Payment, error) {
	rows, err := r.db.Query(ctx, listPaymentsBySessionSQL, sessionID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list payments", err)
	}
	defer rows.Close()

	result := make([]*payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payments", err)
	}
	return result, nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db.Exec(ctx, updatePaymentSQL,
		p.ID(),
		string(p.Status()),
		pgconv.StringPtrToPgtype(p.OrderID()),
		pgconv.StringPtrToPgtype(p.CaptureID()),
		p.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	return nil
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var (
		id, sessionID, userID uuid.UUID
		amount                pgtype.Numeric
		currency, status      string
		orderID, captureID    pgtype.Text
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &sessionID, &userID, &amount, &currency, &status, &orderID, &captureID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	value, err := pgconv.DecimalFromPgtype(amount)
	if err != nil {
		return nil, err
	}
	return payment.ReconstructPayment(
		id, sessionID, userID,
		value,
		currency,
		payment.Status(status),
		pgconv.StringPtrFromPgtype(orderID),
		pgconv.StringPtrFromPgtype(captureID),
		createdAt, updatedAt,
	), nil
}
