package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Amount may be omitted; the session price is charged then.
type CreateOrderRequest struct {
	SessionID uuid.UUID       `json:"sessionId" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type CaptureOrderRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
