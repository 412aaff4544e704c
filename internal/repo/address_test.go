package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func newAddress(userID uint, line string) *models.Address {
	return &models.Address{UserID: userID, AddressLine1: line, City: "Springfield", Country: "US"}
}

func TestAddress_FirstBecomesDefault(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "home@example.com")

	first := newAddress(u.ID, "1 Main St")
	require.NoError(t, r.CreateAddress(ctx, first))
	assert.True(t, first.IsDefault)

	second := newAddress(u.ID, "2 Main St")
	require.NoError(t, r.CreateAddress(ctx, second))
	assert.False(t, second.IsDefault)

	third := newAddress(u.ID, "3 Main St")
	third.IsDefault = true
	require.NoError(t, r.CreateAddress(ctx, third))

	list, err := r.ListAddresses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, int64(1), countRows(t, r, &models.Address{}, "user_id = ? AND is_default = ?", u.ID, true))
}

func TestSetDefaultAddress_Idempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "home@example.com")

	a := newAddress(u.ID, "1 Main St")
	b := newAddress(u.ID, "2 Main St")
	require.NoError(t, r.CreateAddress(ctx, a))
	require.NoError(t, r.CreateAddress(ctx, b))

	for i := 0; i < 2; i++ {
		got, err := r.SetDefaultAddress(ctx, u.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)
	}

	var defaults []models.Address
	require.NoError(t, r.DB.Where("user_id = ? AND is_default = ?", u.ID, true).Find(&defaults).Error)
	require.Len(t, defaults, 1)
	assert.Equal(t, b.ID, defaults[0].ID)
}

func TestAddress_ForeignAccessIsNotFound(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	other := seedUser(t, r, "other@example.com")

	a := newAddress(owner.ID, "1 Main St")
	require.NoError(t, r.CreateAddress(ctx, a))

	_, err := r.GetAddress(ctx, other.ID, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.SetDefaultAddress(ctx, other.ID, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.DeleteAddress(ctx, other.ID, a.ID), ErrNotFound)
	_, err = r.UpdateAddress(ctx, other.ID, a.ID, *newAddress(other.ID, "x"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAddress_PromotesNewest(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "home@example.com")

	a := newAddress(u.ID, "1 Main St")
	b := newAddress(u.ID, "2 Main St")
	c := newAddress(u.ID, "3 Main St")
	for _, addr := range []*models.Address{a, b, c} {
		require.NoError(t, r.CreateAddress(ctx, addr))
	}
	require.True(t, a.IsDefault)

	require.NoError(t, r.DeleteAddress(ctx, u.ID, a.ID))

	got, err := r.GetAddress(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
}

func TestUpdateAddress(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "home@example.com")

	a := newAddress(u.ID, "1 Main St")
	b := newAddress(u.ID, "2 Main St")
	require.NoError(t, r.CreateAddress(ctx, a))
	require.NoError(t, r.CreateAddress(ctx, b))

	in := *newAddress(u.ID, "22 Side St")
	in.IsDefault = true
	got, err := r.UpdateAddress(ctx, u.ID, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "22 Side St", got.AddressLine1)
	assert.True(t, got.IsDefault)

	first, err := r.GetAddress(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, first.IsDefault)
}
