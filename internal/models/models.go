package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey"                               json:"id"`
	Name         string    `gorm:"size:100"                                 json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"not null"                                 json:"-"`
	Role         string    `gorm:"size:20;not null;default:user"            json:"role"`
	IsActive     bool      `gorm:"not null;default:true"                    json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken is one link of a rotation chain. The signed token itself is
// never stored, only its sha256.
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"index;not null"`
	JTI        string     `gorm:"size:64;uniqueIndex;not null"`
	TokenHash  string     `gorm:"size:64;uniqueIndex;not null"`
	DeviceInfo string     `gorm:"size:255"`
	IPAddress  string     `gorm:"size:64"`
	ExpiresAt  time.Time  `gorm:"not null"`
	RevokedAt  *time.Time
	ReplacedBy string `gorm:"size:64"`
	CreatedAt  time.Time
}

func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

type Address struct {
	ID           uint      `gorm:"primaryKey"                                                       json:"id"`
	UserID       uint      `gorm:"index;not null"                                                  json:"-"`
	FirstName    string    `gorm:"size:100"                                                         json:"first_name"`
	LastName     string    `gorm:"size:100"                                                         json:"last_name"`
	Phone        string    `gorm:"size:30"                                                          json:"phone"`
	AddressLine1 string    `gorm:"size:255;not null"                                                json:"address_line1"`
	AddressLine2 string    `gorm:"size:255"                                                         json:"address_line2"`
	City         string    `gorm:"size:100;not null"                                                json:"city"`
	State        string    `gorm:"size:100"                                                         json:"state"`
	PostalCode   string    `gorm:"size:20"                                                          json:"postal_code"`
	Country      string    `gorm:"size:100;not null"                                                json:"country"`
	IsDefault    bool      `gorm:"not null;default:false"                                           json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Address) TableName() string { return "user_addresses" }

type Brand struct {
	ID          uint   `gorm:"primaryKey"                      json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null"   json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;default:true"           json:"is_active"`
}

// Category names are canonical lowercase; Aliases map alternative spellings
// (plurals, synonyms) onto them.
type Category struct {
	ID          uint            `gorm:"primaryKey"                     json:"id"`
	Name        string          `gorm:"size:100;uniqueIndex;not null"  json:"name"`
	DisplayName string          `gorm:"size:100"                       json:"display_name"`
	Aliases     []CategoryAlias `gorm:"constraint:OnDelete:CASCADE"    json:"aliases,omitempty"`
}

type CategoryAlias struct {
	ID         uint   `gorm:"primaryKey"                     json:"id"`
	CategoryID uint   `gorm:"index;not null"                 json:"category_id"`
	Alias      string `gorm:"size:100;uniqueIndex;not null"  json:"alias"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey"                     json:"id"`
	Name        string          `gorm:"size:255;not null"              json:"name"`
	Slug        string          `gorm:"size:255;uniqueIndex;not null"  json:"slug"`
	BrandID     *uint           `gorm:"index"                          json:"brand_id"`
	Brand       *Brand          `json:"brand,omitempty"`
	Category    string          `gorm:"size:100;index"                 json:"category"`
	Description string          `json:"description"`
	MainImage   string          `json:"main_image"`
	PriceMin    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price_min"`
	PriceMax    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price_max"`
	IsActive    bool            `gorm:"not null;default:true"          json:"is_active"`
	CreatedAt   time.Time       `gorm:"index"                          json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Variants []Variant       `gorm:"constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Images   []ProductImage  `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Options  []ProductOption `gorm:"constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

type ProductOption struct {
	ID        uint                 `gorm:"primaryKey"                   json:"id"`
	ProductID uint                 `gorm:"index;not null"               json:"product_id"`
	Name      string               `gorm:"size:100;not null"            json:"name"`
	Values    []ProductOptionValue `gorm:"foreignKey:OptionID;constraint:OnDelete:CASCADE" json:"values"`
}

type ProductOptionValue struct {
	ID       uint   `gorm:"primaryKey"          json:"id"`
	OptionID uint   `gorm:"index;not null"      json:"option_id"`
	Value    string `gorm:"size:100;not null"   json:"value"`
}

type Variant struct {
	ID        uint            `gorm:"primaryKey"                          json:"id"`
	ProductID uint            `gorm:"index;not null"                      json:"product_id"`
	SKU       string          `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"         json:"price"`
	Discount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	Stock     int             `gorm:"not null;default:0"                  json:"stock"`
	Color     string          `gorm:"size:50;index"                       json:"color"`
	Size      string          `gorm:"size:50"                             json:"size"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Variant) TableName() string { return "product_variants" }

// UnitPrice is price minus discount, floored at zero.
func (v Variant) UnitPrice() decimal.Decimal {
	p := v.Price.Sub(v.Discount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

type ProductImage struct {
	ID         uint      `gorm:"primaryKey"               json:"id"`
	ProductID  uint      `gorm:"index;not null"           json:"product_id"`
	Color      string    `gorm:"size:50;index"            json:"color"`
	ImageURL   string    `gorm:"not null"                 json:"image_url"`
	MediaType  string    `gorm:"size:20;default:image"    json:"media_type"`
	UploadedAt time.Time `gorm:"autoCreateTime"           json:"uploaded_at"`
}

// MaxLineQuantity bounds a single cart row or order line.
const MaxLineQuantity = 9999

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                   json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_variant"   json:"user_id"`
	VariantID uint      `gorm:"not null;uniqueIndex:idx_cart_user_variant"   json:"variant_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                  json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime"                               json:"added_at"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"

	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID            uint            `gorm:"primaryKey"                         json:"id"`
	UserID        uint            `gorm:"index;not null"                     json:"user_id"`
	AddressID     *uint           `json:"address_id"`
	Address       *Address        `gorm:"constraint:OnDelete:SET NULL"       json:"address,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null"        json:"total_amount"`
	Status        string          `gorm:"size:20;not null;index"             json:"status"`
	PaymentStatus string          `gorm:"size:20;not null"                   json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE"        json:"items,omitempty"`
}

// OrderItem is an immutable snapshot taken when the order is placed.
// VariantID deliberately carries no foreign key.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                   json:"id"`
	OrderID     uint            `gorm:"index;not null"               json:"order_id"`
	VariantID   uint            `gorm:"index;not null"               json:"variant_id"`
	Quantity    int             `gorm:"not null;check:quantity > 0"  json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"discount"`
	ProductName string          `gorm:"size:255"                     json:"product_name"`
	SKU         string          `gorm:"column:sku;size:100"          json:"sku"`
	Color       string          `gorm:"size:50"                      json:"color"`
	Size        string          `gorm:"size:50"                      json:"size"`
}

// InventoryLog is append-only and outlives the variant it describes.
type InventoryLog struct {
	ID           uint      `gorm:"primaryKey"       json:"id"`
	VariantID    uint      `gorm:"index;not null"   json:"variant_id"`
	ChangeAmount int       `gorm:"not null"         json:"change_amount"`
	Reason       string    `gorm:"size:255"         json:"reason"`
	CreatedAt    time.Time `gorm:"index"            json:"created_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"                                   json:"id"`
	ProductID uint      `gorm:"index;not null"                               json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"                  json:"-"`
	UserID    *uint     `gorm:"index"                                        json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL"                 json:"-"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"   json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Promotion struct {
	ID              uint            `gorm:"primaryKey"                      json:"id"`
	Name            string          `gorm:"size:255;not null"               json:"name"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"      json:"discount_percent"`
	StartsAt        time.Time       `gorm:"not null"                        json:"starts_at"`
	EndsAt          time.Time       `gorm:"not null"                        json:"ends_at"`
	IsActive        bool            `gorm:"not null;default:true"           json:"is_active"`
	Products        []Product       `gorm:"many2many:promotion_products"    json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey"                                      json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product"  json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product"  json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"                     json:"product,omitempty"`
	AddedAt   time.Time `gorm:"autoCreateTime"                                  json:"added_at"`
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &RefreshToken{}, &Address{},
		&Brand{}, &Category{}, &CategoryAlias{},
		&Product{}, &ProductOption{}, &ProductOptionValue{}, &Variant{}, &ProductImage{},
		&CartItem{}, &Order{}, &OrderItem{}, &InventoryLog{},
		&Review{}, &Promotion{}, &WishlistItem{},
	}
}
