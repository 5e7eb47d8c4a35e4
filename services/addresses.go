package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"fooddelivery/models"
	"fooddelivery/validation"
)

type AddressStore interface {
	ListCustomerAddresses(ctx context.Context, userID uuid.UUID) ([]models.CustomerAddress, error)
	CreateCustomerAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.CustomerAddress, error)
	DeleteCustomerAddress(ctx context.Context, userID uuid.UUID, id int64) error
}

type AddressService struct {
	store AddressStore
}

func NewAddressService(store AddressStore) *AddressService {
	return &AddressService{store: store}
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.CustomerAddress, error) {
	return s.store.ListCustomerAddresses(ctx, userID)
}

func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.CustomerAddress, error) {
	if err := validation.Address(&req); err != nil {
		return nil, err
	}
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	return s.store.CreateCustomerAddress(ctx, userID, req)
}

// Delete removes the address if userID owns it. An address an order still
// delivers to cannot be removed and reports a conflict.
func (s *AddressService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return s.store.DeleteCustomerAddress(ctx, userID, id)
}
