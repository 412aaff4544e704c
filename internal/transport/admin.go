package transport

import "github.com/shopspring/decimal"

type VariantRequest struct {
	SKU      string          `json:"sku"      validate:"required,max=100"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
	Stock    int             `json:"stock"    validate:"min=0"`
	Color    string          `json:"color"    validate:"max=50"`
	Size     string          `json:"size"     validate:"max=50"`
}

type ImageRequest struct {
	Color string `json:"color" validate:"max=50"`
	URL   string `json:"url"   validate:"required,url"`
}

type CreateProductRequest struct {
	Name        string              `json:"name"        validate:"required,max=255"`
	BrandName   string              `json:"brand_name"  validate:"max=100"`
	Category    string              `json:"category"    validate:"max=100"`
	Description string              `json:"description"`
	Variants    []VariantRequest    `json:"variants"    validate:"dive"`
	Options     map[string][]string `json:"options"`
	Images      []ImageRequest      `json:"images"      validate:"dive"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=255"`
	BrandName   *string `json:"brand_name"  validate:"omitempty,max=100"`
	Category    *string `json:"category"    validate:"omitempty,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	MainImage   *string `json:"main_image"`
}

type UpdateVariantRequest struct {
	SKU      *string          `json:"sku"      validate:"omitempty,min=1,max=100"`
	Price    *decimal.Decimal `json:"price"`
	Discount *decimal.Decimal `json:"discount"`
	Color    *string          `json:"color"    validate:"omitempty,max=50"`
	Size     *string          `json:"size"     validate:"omitempty,max=50"`
}

type AddImagesRequest struct {
	Color string   `json:"color" validate:"max=50"`
	URLs  []string `json:"urls"  validate:"required,min=1,dive,url"`
}

type BrandRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description"`
}

type UpdateBrandRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryRequest struct {
	Name        string   `json:"name"         validate:"required,max=100"`
	DisplayName string   `json:"display_name" validate:"max=100"`
	Aliases     []string `json:"aliases"      validate:"dive,max=100"`
}

type AliasRequest struct {
	Alias string `json:"alias" validate:"required,max=100"`
}
