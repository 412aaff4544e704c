package transport

import "github.com/shopspring/decimal"

type CartAddRequest struct {
	VariantID uint `json:"variantId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"omitempty,min=1,max=9999"`
}

type CartUpdateRequest struct {
	VariantID uint `json:"variantId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"required,min=1,max=9999"`
}

type ChangeVariantRequest struct {
	OldVariantID uint `json:"oldVariantId" validate:"required"`
	NewVariantID uint `json:"newVariantId" validate:"required"`
}

type MergeItem struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity" validate:"max=9999"`
}

type MergeRequest struct {
	Items []MergeItem `json:"items" validate:"max=200,dive"`
}

type CartLine struct {
	VariantID   uint            `json:"variant_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Slug        string          `json:"slug"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
}

type CartResponse struct {
	Guest    bool            `json:"guest,omitempty"`
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartMutationResponse struct {
	Message      string `json:"message"`
	Quantity     int    `json:"quantity"`
	StockLimited bool   `json:"stockLimited"`
}

type MergeResponse struct {
	Merged  int          `json:"merged"`
	Skipped int          `json:"skipped"`
	Cart    CartResponse `json:"cart"`
}
