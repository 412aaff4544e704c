package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

// nextStatuses is the order lifecycle. Completed and cancelled are final.
var nextStatuses = map[string][]string{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusCompleted},
}

func canMove(from, to string) bool {
	for _, s := range nextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	Repo    *repo.GormRepo
	Events  mykafka.Publisher
	Metrics *metrics.Metrics
}

// combineLines merges duplicate variant ids, keeping first-seen order.
func combineLines(items []transport.OrderLine) ([]repo.CartEntry, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	idx := map[uint]int{}
	var out []repo.CartEntry
	for _, it := range items {
		if it.VariantID == 0 {
			return nil, fmt.Errorf("%w: variant_id is required", ErrValidation)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
		}
		if it.Quantity > models.MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity cannot exceed %d", ErrValidation, models.MaxLineQuantity)
		}
		if i, ok := idx[it.VariantID]; ok {
			if out[i].Quantity > models.MaxLineQuantity-it.Quantity {
				return nil, fmt.Errorf("%w: quantity cannot exceed %d", ErrValidation, models.MaxLineQuantity)
			}
			out[i].Quantity += it.Quantity
			continue
		}
		idx[it.VariantID] = len(out)
		out = append(out, repo.CartEntry{VariantID: it.VariantID, Quantity: it.Quantity})
	}
	return out, nil
}

func (s *OrderService) Create(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	lines, err := combineLines(req.Items)
	if err != nil {
		l.Warn("order_create_error", "status", 400, "error", err)
		return nil, err
	}

	order, err := s.Repo.CreateOrder(ctx, userID, req.AddressID, lines)
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrQuantityLimit):
		l.Warn("order_create_error", "status", 400, "error", err)
		return nil, fromRepo(err, "order line")
	case errors.Is(err, repo.ErrForeignAddress):
		l.Warn("order_create_error", "status", 400, "reason", "foreign address")
		return nil, fmt.Errorf("%w: invalid address", ErrValidation)
	case errors.Is(err, repo.ErrInsufficientStock):
		l.Warn("order_create_error", "status", 400, "error", err)
		return nil, fmt.Errorf("%w%s", ErrInsufficientStock, strings.TrimPrefix(err.Error(), repo.ErrInsufficientStock.Error()))
	case errors.Is(err, repo.ErrNotFound):
		l.Warn("order_create_error", "status", 400, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.TrimPrefix(err.Error(), repo.ErrNotFound.Error()+": ")+" not found")
	default:
		l.Error("order_create_error", "status", 500, "error", err)
		return nil, err
	}

	s.Metrics.IncOrdersCreated()
	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID, "order_created", map[string]any{
		"order_id":     order.ID,
		"user_id":      userID,
		"total_amount": order.TotalAmount.StringFixed(2),
		"items":        len(order.Items),
	})

	ids := make([]uint, len(order.Items))
	for i, it := range order.Items {
		ids[i] = it.VariantID
	}
	if err := s.Repo.RemoveVariantsFromCart(ctx, userID, ids); err != nil {
		l.Warn("order_cart_cleanup_failed", "order_id", order.ID, "error", err)
	}

	l.Info("order_created", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2))
	return order, nil
}

func (s *OrderService) My(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

// Get returns an order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, userID uint, admin bool, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "order")
	}
	if o.UserID != userID && !admin {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return o, nil
}

// Cancel lets the owner withdraw an order that is still pending.
func (s *OrderService) Cancel(ctx context.Context, userID, id uint) (*models.Order, error) {
	o, err := s.Repo.TransitionOrder(ctx, id, func(o *models.Order) (repo.Transition, error) {
		if o.UserID != userID {
			return repo.Transition{}, fmt.Errorf("%w: not your order", ErrForbidden)
		}
		if o.Status != models.OrderStatusPending {
			return repo.Transition{}, fmt.Errorf("%w: only pending orders can be cancelled", ErrValidation)
		}
		return repo.Transition{Status: models.OrderStatusCancelled, PaymentStatus: o.PaymentStatus, Restock: true}, nil
	})
	if err != nil {
		return nil, fromRepo(err, "order")
	}
	s.statusChanged(ctx, o, models.OrderStatusPending)
	return o, nil
}

func (s *OrderService) AdminList(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, status, offset, limit)
}

// UpdateStatus moves an order along its lifecycle on behalf of an admin.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	var prev string
	o, err := s.Repo.TransitionOrder(ctx, id, func(o *models.Order) (repo.Transition, error) {
		prev = o.Status
		if !canMove(o.Status, status) {
			return repo.Transition{}, fmt.Errorf("%w: cannot move order from %s to %s", ErrValidation, o.Status, status)
		}
		next := repo.Transition{Status: status, PaymentStatus: o.PaymentStatus}
		switch status {
		case models.OrderStatusPaid:
			next.PaymentStatus = models.PaymentStatusPaid
		case models.OrderStatusCancelled:
			if o.PaymentStatus == models.PaymentStatusPaid {
				next.PaymentStatus = models.PaymentStatusRefunded
			}
			next.Restock = true
		}
		return next, nil
	})
	if err != nil {
		return nil, fromRepo(err, "order")
	}
	s.statusChanged(ctx, o, prev)
	return o, nil
}

func (s *OrderService) statusChanged(ctx context.Context, o *models.Order, from string) {
	publish(ctx, s.Events, mykafka.TopicOrderEvents, o.ID, "order_status_changed", map[string]any{
		"order_id":       o.ID,
		"user_id":        o.UserID,
		"from":           from,
		"to":             o.Status,
		"payment_status": o.PaymentStatus,
	})
	logging.FromContext(ctx).Info("order_status_changed", "order_id", o.ID, "from", from, "to", o.Status)
}
