package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

func cartLine(l repo.CartLine) transport.CartLine {
	unit := models.Variant{Price: l.Price, Discount: l.Discount}.UnitPrice()
	return transport.CartLine{
		VariantID:   l.VariantID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Slug:        l.Slug,
		Brand:       l.BrandName,
		Color:       l.Color,
		Size:        l.Size,
		Price:       l.Price,
		Discount:    l.Discount,
		UnitPrice:   unit,
		Stock:       l.Stock,
		Image:       l.Image,
		Quantity:    l.Quantity,
	}
}

func (s *CartService) Get(ctx context.Context, userID uint) (transport.CartResponse, error) {
	lines, err := s.Repo.GetCartLines(ctx, userID)
	if err != nil {
		return transport.CartResponse{}, err
	}
	out := transport.CartResponse{Items: make([]transport.CartLine, 0, len(lines)), Subtotal: decimal.Zero}
	for _, l := range lines {
		cl := cartLine(l)
		out.Items = append(out.Items, cl)
		out.Subtotal = out.Subtotal.Add(cl.UnitPrice.Mul(decimal.NewFromInt(int64(cl.Quantity))))
	}
	return out, nil
}

// Add puts a variant into the cart. created reports whether a new row was
// inserted rather than an existing one updated.
func (s *CartService) Add(ctx context.Context, userID uint, req transport.CartAddRequest) (res transport.CartMutationResponse, created bool, err error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID)

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return res, false, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	r, err := s.Repo.AddToCart(ctx, userID, req.VariantID, qty)
	if err != nil {
		if errors.Is(err, repo.ErrOutOfStock) || errors.Is(err, repo.ErrNotFound) {
			l.Warn("cart_add_error", "variant_id", req.VariantID, "error", err)
		}
		return res, false, fromRepo(err, "variant")
	}

	msg := "cart updated"
	typ := "cart_item_updated"
	if r.Created {
		msg = "added to cart"
		typ = "cart_item_added"
	}
	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, typ, map[string]any{
		"user_id":    userID,
		"variant_id": req.VariantID,
		"quantity":   r.Quantity,
	})
	return transport.CartMutationResponse{Message: msg, Quantity: r.Quantity, StockLimited: r.StockLimited}, r.Created, nil
}

func (s *CartService) Update(ctx context.Context, userID uint, req transport.CartUpdateRequest) (transport.CartMutationResponse, error) {
	if req.Quantity < 1 {
		return transport.CartMutationResponse{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	r, err := s.Repo.UpdateCartItem(ctx, userID, req.VariantID, req.Quantity)
	if err != nil {
		return transport.CartMutationResponse{}, fromRepo(err, "cart item")
	}
	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, "cart_item_updated", map[string]any{
		"user_id":    userID,
		"variant_id": req.VariantID,
		"quantity":   r.Quantity,
	})
	return transport.CartMutationResponse{Message: "cart updated", Quantity: r.Quantity, StockLimited: r.StockLimited}, nil
}

func (s *CartService) ChangeVariant(ctx context.Context, userID uint, req transport.ChangeVariantRequest) (transport.CartMutationResponse, error) {
	r, err := s.Repo.ChangeVariant(ctx, userID, req.OldVariantID, req.NewVariantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return transport.CartMutationResponse{}, fmt.Errorf("%w: cart item or variant not found", ErrNotFound)
		}
		return transport.CartMutationResponse{}, fromRepo(err, "variant")
	}
	if req.OldVariantID != req.NewVariantID {
		publish(ctx, s.Events, mykafka.TopicCartEvents, userID, "cart_variant_changed", map[string]any{
			"user_id":        userID,
			"old_variant_id": req.OldVariantID,
			"new_variant_id": req.NewVariantID,
			"quantity":       r.Quantity,
		})
	}
	return transport.CartMutationResponse{Message: "variant changed", Quantity: r.Quantity, StockLimited: r.StockLimited}, nil
}

func (s *CartService) Remove(ctx context.Context, userID, variantID uint) error {
	if err := s.Repo.RemoveFromCart(ctx, userID, variantID); err != nil {
		return fromRepo(err, "cart item")
	}
	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, "cart_item_removed", map[string]any{
		"user_id":    userID,
		"variant_id": variantID,
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, "cart_cleared", map[string]any{"user_id": userID})
	return nil
}

// Merge folds a guest cart into the stored one and returns the result.
func (s *CartService) Merge(ctx context.Context, userID uint, req transport.MergeRequest) (transport.MergeResponse, error) {
	entries := make([]repo.CartEntry, len(req.Items))
	for i, it := range req.Items {
		entries[i] = repo.CartEntry{VariantID: it.VariantID, Quantity: it.Quantity}
	}
	merged, skipped, err := s.Repo.MergeCart(ctx, userID, entries)
	if err != nil {
		return transport.MergeResponse{}, err
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return transport.MergeResponse{}, err
	}
	if merged > 0 {
		publish(ctx, s.Events, mykafka.TopicCartEvents, userID, "cart_merged", map[string]any{
			"user_id": userID,
			"merged":  merged,
			"skipped": skipped,
		})
	}
	return transport.MergeResponse{Merged: merged, Skipped: skipped, Cart: cart}, nil
}
