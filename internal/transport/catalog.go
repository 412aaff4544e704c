package transport

import (
	"time"

	"github.com/shopspring/decimal"
)

type Meta struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// Page is the {data, meta} envelope of every paginated listing.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

type ProductSummary struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Brand     string          `json:"brand"`
	Category  string          `json:"category"`
	MainImage string          `json:"main_image"`
	PriceMin  decimal.Decimal `json:"price_min"`
	PriceMax  decimal.Decimal `json:"price_max"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	TotalSold *int64          `json:"total_sold,omitempty"`
}

type VariantView struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Images    []string        `json:"images"`
}

type ProductDetail struct {
	ProductSummary
	Description string              `json:"description"`
	Options     map[string][]string `json:"options"`
	ColorImages map[string][]string `json:"colorImages"`
	Thumbnails  map[string]string   `json:"thumbnails"`
	Variants    []VariantView       `json:"variants"`
}

type BrandView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type CategoryView struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Aliases     []string `json:"aliases"`
}

type CategoryProducts struct {
	Category *CategoryView    `json:"category"`
	Products []ProductSummary `json:"products"`
}
