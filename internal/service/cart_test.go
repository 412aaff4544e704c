package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCartAdd_DefaultsAndClamps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "jo@example.com")
	p := e.product(t, "Tee", variantReq("TEE-1", "20.00", 3), variantReq("TEE-0", "20.00", 0))
	s := &CartService{Repo: e.repo, Events: e.events}

	res, created, err := s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: p.Variants[0].ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, res.Quantity)
	assert.False(t, res.StockLimited)

	res, created, err = s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: p.Variants[0].ID, Quantity: 5})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 3, res.Quantity)
	assert.True(t, res.StockLimited)

	_, _, err = s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: p.Variants[1].ID})
	assert.ErrorIs(t, err, ErrConflict)
	_, _, err = s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: 9999})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"cart_item_added", "cart_item_updated"}, e.events.types(mykafka.TopicCartEvents))
}

func TestCartGet_Subtotal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "jo@example.com")
	discounted := variantReq("TEE-1", "20.00", 5)
	discounted.Discount = decimal.RequireFromString("5.00")
	p := e.product(t, "Tee", discounted, variantReq("TEE-2", "10.00", 5))
	s := &CartService{Repo: e.repo}

	_, _, err := s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: p.Variants[0].ID, Quantity: 2})
	require.NoError(t, err)
	_, _, err = s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: p.Variants[1].ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "Acme", cart.Items[0].Brand)
	assert.True(t, decimal.RequireFromString("15").Equal(cart.Items[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("40").Equal(cart.Subtotal))
}

func TestCartUpdateRemoveClear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "jo@example.com")
	p := e.product(t, "Tee", variantReq("TEE-1", "20.00", 4))
	v := p.Variants[0].ID
	s := &CartService{Repo: e.repo}

	_, err := s.Update(ctx, u.ID, transport.CartUpdateRequest{VariantID: v, Quantity: 2})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: v})
	require.NoError(t, err)
	_, err = s.Update(ctx, u.ID, transport.CartUpdateRequest{VariantID: v, Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)

	res, err := s.Update(ctx, u.ID, transport.CartUpdateRequest{VariantID: v, Quantity: 9})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Quantity)
	assert.True(t, res.StockLimited)

	require.NoError(t, s.Remove(ctx, u.ID, v))
	assert.ErrorIs(t, s.Remove(ctx, u.ID, v), ErrNotFound)

	_, _, err = s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: v})
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx, u.ID))
	cart, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartChangeVariantAndMerge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "jo@example.com")
	p := e.product(t, "Tee", variantReq("TEE-1", "20.00", 5), variantReq("TEE-2", "20.00", 2), variantReq("TEE-0", "20.00", 0))
	a, b, sold := p.Variants[0].ID, p.Variants[1].ID, p.Variants[2].ID
	s := &CartService{Repo: e.repo, Events: e.events}

	_, _, err := s.Add(ctx, u.ID, transport.CartAddRequest{VariantID: a, Quantity: 3})
	require.NoError(t, err)

	res, err := s.ChangeVariant(ctx, u.ID, transport.ChangeVariantRequest{OldVariantID: a, NewVariantID: b})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Quantity, "quantity moves over even past the target's stock")
	assert.False(t, res.StockLimited)

	_, err = s.ChangeVariant(ctx, u.ID, transport.ChangeVariantRequest{OldVariantID: a, NewVariantID: b})
	assert.ErrorIs(t, err, ErrNotFound)

	merged, err := s.Merge(ctx, u.ID, transport.MergeRequest{Items: []transport.MergeItem{
		{VariantID: a, Quantity: 4},
		{VariantID: b, Quantity: 1},
		{VariantID: sold, Quantity: 1},
		{VariantID: 9999, Quantity: 1},
		{VariantID: a, Quantity: -1},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Merged)
	assert.Equal(t, 3, merged.Skipped)
	require.Len(t, merged.Cart.Items, 2)

	qty := map[uint]int{}
	for _, it := range merged.Cart.Items {
		qty[it.VariantID] = it.Quantity
	}
	assert.Equal(t, 4, qty[a])
	assert.Equal(t, 2, qty[b], "merge re-clamps to stock")

	assert.Contains(t, e.events.types(mykafka.TopicCartEvents), "cart_variant_changed")
	assert.Contains(t, e.events.types(mykafka.TopicCartEvents), "cart_merged")
}
