package response

import (
	"time"

	"coach-booking/internal/domain/payment"
	"coach-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	OrderID     string    `json:"orderId"`
	ApprovalURL string    `json:"approvalUrl"`
	PaymentID   uuid.UUID `json:"paymentId"`
}

type CaptureResponse struct {
	OrderID         string    `json:"orderId"`
	CaptureID       string    `json:"captureId,omitempty"`
	PaymentID       uuid.UUID `json:"paymentId"`
	SessionID       uuid.UUID `json:"sessionId"`
	Status          string    `json:"status"`
	AlreadyCaptured bool      `json:"alreadyCaptured"`
}

type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"sessionId"`
	UserID    uuid.UUID       `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	OrderID   *string         `json:"orderId,omitempty"`
	CaptureID *string         `json:"captureId,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func FromOrderResult(r *commands.OrderResult) (*OrderResponse, error) {
	var out OrderResponse
	if err := copier.Copy(&out, r); err != nil {
		return nil, err
	}
	return &out, nil
}

func FromCaptureResult(r *commands.CaptureResult) (*CaptureResponse, error) {
	var out CaptureResponse
	if err := copier.Copy(&out, r); err != nil {
		return nil, err
	}
	return &out, nil
}

func FromPayment(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID(),
		SessionID: p.SessionID(),
		UserID:    p.UserID(),
		Amount:    p.Amount(),
		Currency:  p.Currency(),
		Status:    p.Status().String(),
		OrderID:   p.OrderID(),
		CaptureID: p.CaptureID(),
		UpdatedAt: p.UpdatedAt(),
	}
}
