package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var hundred = decimal.NewFromInt(100)

// PromotionService manages informational promotions. They never feed into
// order pricing.
type PromotionService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func promotionView(p models.Promotion) transport.PromotionView {
	ids := make([]uint, len(p.Products))
	for i, pr := range p.Products {
		ids[i] = pr.ID
	}
	return transport.PromotionView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		DiscountPercent: p.DiscountPercent,
		StartsAt:        p.StartsAt,
		EndsAt:          p.EndsAt,
		IsActive:        p.IsActive,
		ProductIDs:      ids,
	}
}

func promotionViews(ps []models.Promotion) []transport.PromotionView {
	out := make([]transport.PromotionView, len(ps))
	for i, p := range ps {
		out[i] = promotionView(p)
	}
	return out
}

func (s *PromotionService) Create(ctx context.Context, req transport.CreatePromotionRequest) (transport.PromotionView, error) {
	if strings.TrimSpace(req.Name) == "" {
		return transport.PromotionView{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return transport.PromotionView{}, fmt.Errorf("%w: discount_percent must be between 0 and 100", ErrValidation)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return transport.PromotionView{}, fmt.Errorf("%w: ends_at must be after starts_at", ErrValidation)
	}

	p := models.Promotion{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt.UTC(),
		EndsAt:          req.EndsAt.UTC(),
		IsActive:        true,
	}
	if err := s.Repo.CreatePromotion(ctx, &p, req.ProductIDs); err != nil {
		return transport.PromotionView{}, fromRepo(err, "product")
	}
	return promotionView(p), nil
}

func (s *PromotionService) List(ctx context.Context) ([]transport.PromotionView, error) {
	ps, err := s.Repo.ListPromotions(ctx)
	if err != nil {
		return nil, err
	}
	return promotionViews(ps), nil
}

func (s *PromotionService) Active(ctx context.Context) ([]transport.PromotionView, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	ps, err := s.Repo.ActivePromotions(ctx, now.UTC())
	if err != nil {
		return nil, err
	}
	return promotionViews(ps), nil
}

func (s *PromotionService) Delete(ctx context.Context, id uint) error {
	return fromRepo(s.Repo.DeletePromotion(ctx, id), "promotion")
}
