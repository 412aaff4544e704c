package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Transition is what a status change decides for a locked order.
type Transition struct {
	Status        string
	PaymentStatus string
	Restock       bool
}

// CreateOrder places an order in one transaction: the variants are locked in
// ascending id order, checked against stock, snapshotted into order items
// and decremented, with one inventory log per line. Any failure rolls back
// everything.
func (r *GormRepo) CreateOrder(ctx context.Context, userID uint, addressID *uint, lines []CartEntry) (*models.Order, error) {
	sorted := make([]CartEntry, len(lines))
	copy(sorted, lines)
	for _, l := range sorted {
		if l.Quantity <= 0 || l.Quantity > models.MaxLineQuantity {
			return nil, fmt.Errorf("%w: variant %d", ErrQuantityLimit, l.VariantID)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VariantID < sorted[j].VariantID })

	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if addressID != nil {
			var a models.Address
			if err := tx.Select("id", "user_id").First(&a, *addressID).Error; err != nil {
				if translate(err) == ErrNotFound {
					return ErrForeignAddress
				}
				return err
			}
			if a.UserID != userID {
				return ErrForeignAddress
			}
		}

		variants := make([]models.Variant, len(sorted))
		productIDs := make([]uint, 0, len(sorted))
		total := decimal.Zero
		for i, l := range sorted {
			if err := forUpdate(tx).First(&variants[i], l.VariantID).Error; err != nil {
				if translate(err) == ErrNotFound {
					return fmt.Errorf("%w: variant %d", ErrNotFound, l.VariantID)
				}
				return err
			}
			if variants[i].Stock < l.Quantity {
				return fmt.Errorf("%w: variant %d has %d left, %d requested",
					ErrInsufficientStock, l.VariantID, variants[i].Stock, l.Quantity)
			}
			total = total.Add(variants[i].UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
			productIDs = append(productIDs, variants[i].ProductID)
		}

		var products []models.Product
		if err := tx.Select("id", "name").Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return err
		}
		names := make(map[uint]string, len(products))
		for _, p := range products {
			names[p.ID] = p.Name
		}

		order = models.Order{
			UserID:        userID,
			AddressID:     addressID,
			TotalAmount:   total,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
		}
		if err := tx.Omit("Address", "Items").Create(&order).Error; err != nil {
			return err
		}

		reason := fmt.Sprintf("order #%d", order.ID)
		for i, l := range sorted {
			v := variants[i]
			item := models.OrderItem{
				OrderID:     order.ID,
				VariantID:   v.ID,
				Quantity:    l.Quantity,
				Price:       v.UnitPrice(),
				Discount:    v.Discount,
				ProductName: names[v.ProductID],
				SKU:         v.SKU,
				Color:       v.Color,
				Size:        v.Size,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Variant{}).Where("id = ?", v.ID).
				UpdateColumn("stock", gorm.Expr("stock - ?", l.Quantity)).Error; err != nil {
				return err
			}
			if err := appendLog(tx, v.ID, -l.Quantity, reason); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Address").
		First(&o, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var out []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return total, out, err
}

// TransitionOrder locks the order, lets decide pick the next state and
// applies it. A restock returns every line to stock with a positive log.
func (r *GormRepo) TransitionOrder(ctx context.Context, id uint, decide func(o *models.Order) (Transition, error)) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&o, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("order_id = ?", o.ID).Order("variant_id ASC").Find(&o.Items).Error; err != nil {
			return err
		}

		next, err := decide(&o)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
			"status":         next.Status,
			"payment_status": next.PaymentStatus,
		}).Error; err != nil {
			return err
		}
		o.Status, o.PaymentStatus = next.Status, next.PaymentStatus
		if !next.Restock {
			return nil
		}

		reason := fmt.Sprintf("order #%d cancelled", o.ID)
		for _, item := range o.Items {
			res := tx.Model(&models.Variant{}).Where("id = ?", item.VariantID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := appendLog(tx, item.VariantID, item.Quantity, reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}
