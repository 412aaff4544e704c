package transport

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePromotionRequest struct {
	Name            string          `json:"name"             validate:"required,max=255"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        time.Time       `json:"starts_at"        validate:"required"`
	EndsAt          time.Time       `json:"ends_at"          validate:"required"`
	ProductIDs      []uint          `json:"product_ids"`
}

type PromotionView struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
	IsActive        bool            `json:"is_active"`
	ProductIDs      []uint          `json:"product_ids"`
}
