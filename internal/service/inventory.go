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
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 200

	ReasonRestock      = "restock"
	ReasonManualAdjust = "manual_adjust"
)

type InventoryService struct {
	Repo    *repo.GormRepo
	Events  mykafka.Publisher
	Metrics *metrics.Metrics
}

func (s *InventoryService) Variants(ctx context.Context, productID uint, lowStock *int) ([]repo.VariantStock, error) {
	out, err := s.Repo.ListVariantsWithProduct(ctx, productID, lowStock)
	if out == nil {
		out = []repo.VariantStock{}
	}
	return out, err
}

func (s *InventoryService) Variant(ctx context.Context, id uint) (*repo.VariantStock, error) {
	v, err := s.Repo.GetVariantWithProduct(ctx, id)
	return v, fromRepo(err, "variant")
}

// Adjust applies a signed stock change. A blank reason becomes restock for
// additions and manual_adjust otherwise.
func (s *InventoryService) Adjust(ctx context.Context, variantID uint, req transport.StockAdjustRequest) (repo.StockChange, error) {
	l := logging.FromContext(ctx).With("svc", "inventory.adjust", "variant_id", variantID)

	if req.Change == 0 {
		return repo.StockChange{}, fmt.Errorf("%w: change must not be zero", ErrValidation)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = ReasonManualAdjust
		if req.Change > 0 {
			reason = ReasonRestock
		}
	}

	res, err := s.Repo.AdjustStock(ctx, variantID, req.Change, reason)
	if err != nil {
		if errors.Is(err, repo.ErrNegativeStock) {
			l.Warn("stock_adjust_error", "status", 400, "change", req.Change)
			return repo.StockChange{}, fmt.Errorf("%w: stock cannot go below zero", ErrValidation)
		}
		return repo.StockChange{}, fromRepo(err, "variant")
	}

	s.Metrics.IncStockAdjusted()
	publish(ctx, s.Events, mykafka.TopicInventoryEvents, variantID, "stock_adjusted", map[string]any{
		"variant_id": variantID,
		"old_stock":  res.OldStock,
		"new_stock":  res.NewStock,
		"change":     res.Change,
		"reason":     reason,
	})
	l.Info("stock_adjusted", "old", res.OldStock, "new", res.NewStock, "reason", reason)
	return res, nil
}

func (s *InventoryService) Logs(ctx context.Context, variantID uint, limit int) ([]models.InventoryLog, error) {
	out, err := s.Repo.ListInventoryLogs(ctx, variantID, util.Clamp(limit, DefaultLogLimit, MaxLogLimit))
	if out == nil {
		out = []models.InventoryLog{}
	}
	return out, err
}
