package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateDiscountRequest struct {
	Code     string          `json:"code" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Expiry   time.Time       `json:"expiry" binding:"required"`
	MaxUsage int             `json:"maxUsage" binding:"required,min=1"`
}

type UpdateDiscountRequest struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Expiry   *time.Time       `json:"expiry,omitempty"`
	MaxUsage *int             `json:"maxUsage,omitempty"`
}

type ValidateDiscountQuery struct {
	Code    string `form:"code" binding:"required"`
	CoachID string `form:"coachId" binding:"omitempty,uuid"`
}
