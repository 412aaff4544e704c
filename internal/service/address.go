package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AddressService struct {
	Repo *repo.GormRepo
}

func addressFromRequest(userID uint, req transport.AddressRequest) models.Address {
	return models.Address{
		UserID:       userID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		AddressLine1: strings.TrimSpace(req.AddressLine1),
		AddressLine2: strings.TrimSpace(req.AddressLine2),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		Country:      strings.TrimSpace(req.Country),
		IsDefault:    req.IsDefault,
	}
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *AddressService) Create(ctx context.Context, userID uint, req transport.AddressRequest) (*models.Address, error) {
	a := addressFromRequest(userID, req)
	if err := s.Repo.CreateAddress(ctx, &a); err != nil {
		return nil, fromRepo(err, "user")
	}
	return &a, nil
}

func (s *AddressService) Update(ctx context.Context, userID, id uint, req transport.AddressRequest) (*models.Address, error) {
	a, err := s.Repo.UpdateAddress(ctx, userID, id, addressFromRequest(userID, req))
	return a, fromRepo(err, "address")
}

func (s *AddressService) Delete(ctx context.Context, userID, id uint) error {
	return fromRepo(s.Repo.DeleteAddress(ctx, userID, id), "address")
}

func (s *AddressService) SetDefault(ctx context.Context, userID, id uint) (*models.Address, error) {
	a, err := s.Repo.SetDefaultAddress(ctx, userID, id)
	return a, fromRepo(err, "address")
}
