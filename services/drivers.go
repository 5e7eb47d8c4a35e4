package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fooddelivery/models"
	"fooddelivery/validation"
)

type DriverStore interface {
	CreateDriver(ctx context.Context, d *models.Driver) error
	ApproveDriver(ctx context.Context, id int64) (*models.Driver, error)
	UpdateDriverStatus(ctx context.Context, userID uuid.UUID, available bool, lat, lng *float64) (*models.Driver, error)
}

type DriverService struct {
	store DriverStore
	log   zerolog.Logger
}

func NewDriverService(store DriverStore, log zerolog.Logger) *DriverService {
	return &DriverService{store: store, log: log}
}

// Register creates an unapproved driver profile for userID.
func (s *DriverService) Register(ctx context.Context, userID uuid.UUID, req models.DriverRegisterRequest) (*models.Driver, error) {
	if err := validation.DriverRegister(&req); err != nil {
		return nil, err
	}
	d := &models.Driver{
		UserID:       userID,
		VehicleType:  strings.TrimSpace(req.VehicleType),
		VehiclePlate: strings.ToUpper(strings.TrimSpace(req.VehiclePlate)),
	}
	if err := s.store.CreateDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Approve marks the driver approved and grants the driver role.
func (s *DriverService) Approve(ctx context.Context, id int64) (*models.Driver, error) {
	d, err := s.store.ApproveDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("driver_id", d.ID).Msg("driver approved")
	return d, nil
}

func (s *DriverService) UpdateStatus(ctx context.Context, userID uuid.UUID, req models.DriverStatusRequest) (*models.Driver, error) {
	if err := validation.DriverStatus(&req); err != nil {
		return nil, err
	}
	return s.store.UpdateDriverStatus(ctx, userID, req.IsAvailable, req.Latitude, req.Longitude)
}
