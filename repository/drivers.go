package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fooddelivery/apperr"
	"fooddelivery/models"
)

var driverColumns = []string{
	"id", "user_id", "vehicle_type", "vehicle_plate", "is_approved", "is_available",
	"latitude", "longitude", "created_at", "updated_at",
}

// CreateDriver registers a driver profile awaiting approval.
func CreateDriver(ctx context.Context, q sqlx.QueryerContext, d *models.Driver) error {
	b := QB.Insert("drivers").
		Columns("user_id", "vehicle_type", "vehicle_plate").
		Values(d.UserID, d.VehicleType, d.VehiclePlate).
		Suffix("RETURNING id, is_approved, is_available, created_at, updated_at")
	if err := insertReturning(ctx, q, b, &d.ID, &d.IsApproved, &d.IsAvailable, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.Conflict("A driver profile already exists for this user.", err)
		}
		return err
	}
	return nil
}

func GetDriver(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Driver, error) {
	var d models.Driver
	b := QB.Select(driverColumns...).From("drivers").Where(squirrel.Eq{"id": id})
	if err := get(ctx, q, &d, b, "Driver not found."); err != nil {
		return nil, err
	}
	return &d, nil
}

func GetDriverByUserID(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID) (*models.Driver, error) {
	var d models.Driver
	b := QB.Select(driverColumns...).From("drivers").Where(squirrel.Eq{"user_id": userID})
	if err := get(ctx, q, &d, b, "Driver profile not found."); err != nil {
		return nil, err
	}
	return &d, nil
}

func ApproveDriver(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Driver, error) {
	var d models.Driver
	b := QB.Update("drivers").
		Set("is_approved", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(driverColumns))
	if err := get(ctx, q, &d, b, "Driver not found."); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDriverStatus sets availability and, when given, the last known
// position.
func UpdateDriverStatus(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID, available bool, lat, lng *float64) (*models.Driver, error) {
	b := QB.Update("drivers").
		Set("is_available", available).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID})
	if lat != nil && lng != nil {
		b = b.Set("latitude", *lat).Set("longitude", *lng)
	}

	var d models.Driver
	if err := get(ctx, q, &d, b.Suffix("RETURNING "+joinColumns(driverColumns)), "Driver profile not found."); err != nil {
		return nil, err
	}
	return &d, nil
}
