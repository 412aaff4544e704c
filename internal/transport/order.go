package transport

import "github.com/shopspring/decimal"

type OrderLine struct {
	VariantID uint `json:"variant_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required,min=1,max=9999"`
}

type CreateOrderRequest struct {
	AddressID *uint       `json:"address_id"`
	Items     []OrderLine `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	OrderID     uint            `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped completed cancelled"`
}
