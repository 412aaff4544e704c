package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestUserService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := &UserService{Repo: e.repo}
	jo := e.user(t, "jo@example.com")
	e.user(t, "taken@example.com")

	taken := "Taken@example.com"
	_, err := s.UpdateProfile(ctx, jo.ID, transport.UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	name := " Jo "
	u, err := s.UpdateProfile(ctx, jo.ID, transport.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jo", u.Name)

	admin, err := s.Create(ctx, transport.AdminCreateUserRequest{Email: "boss@example.com", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	_, err = s.Create(ctx, transport.AdminCreateUserRequest{Email: "boss@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.SetActive(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, ErrValidation)
	off, err := s.SetActive(ctx, admin.ID, jo.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	_, err = s.SetActive(ctx, admin.ID, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)

	total, users, err := s.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)

	require.NoError(t, s.EnsureAdmin(ctx, "boss@example.com", "secret1"))
	require.NoError(t, s.EnsureAdmin(ctx, "", ""))
}

func TestAddressService_ForeignIs404(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := &AddressService{Repo: e.repo}
	owner := e.user(t, "owner@example.com")
	other := e.user(t, "other@example.com")

	req := transport.AddressRequest{AddressLine1: " 1 Main ", City: "Springfield", Country: "US"}
	a, err := s.Create(ctx, owner.ID, req)
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Equal(t, "1 Main", a.AddressLine1)

	_, err = s.Update(ctx, other.ID, a.ID, req)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SetDefault(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, other.ID, a.ID), ErrNotFound)

	b, err := s.Create(ctx, owner.ID, req)
	require.NoError(t, err)
	_, err = s.SetDefault(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	_, err = s.SetDefault(ctx, owner.ID, b.ID)
	require.NoError(t, err)

	list, err := s.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)
}
