package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	out, err := s.Repo.ListWishlist(ctx, userID)
	if out == nil {
		out = []models.WishlistItem{}
	}
	return out, err
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uint) (bool, error) {
	created, err := s.Repo.AddToWishlist(ctx, userID, productID)
	return created, fromRepo(err, "product")
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) error {
	return fromRepo(s.Repo.RemoveFromWishlist(ctx, userID, productID), "wishlist item")
}
