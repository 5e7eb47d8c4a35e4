package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fooddelivery/apperr"
	"fooddelivery/database"
	"fooddelivery/models"
)

// Store binds the repository functions to a database handle and owns every
// multi-statement transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Restaurants

func (s *Store) DiscoverRestaurants(ctx context.Context, f models.DiscoveryFilter) (models.Page[models.RestaurantListing], error) {
	return DiscoverRestaurants(ctx, s.db, f)
}

func (s *Store) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	return GetRestaurant(ctx, s.db, id)
}

func (s *Store) ListRestaurants(ctx context.Context, page, perPage int) (models.Page[models.Restaurant], error) {
	return ListRestaurants(ctx, s.db, page, perPage)
}

func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if err := CreateRestaurant(ctx, s.db, r); err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.Field("name", "The name has already been taken.")
		}
		return err
	}
	return nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, id int64, req models.RestaurantRequest) (*models.Restaurant, error) {
	r, err := UpdateRestaurant(ctx, s.db, id, req)
	if err != nil && apperr.IsUniqueViolation(err) {
		return nil, apperr.Field("name", "The name has already been taken.")
	}
	return r, err
}

func (s *Store) SoftDeleteRestaurant(ctx context.Context, id int64) (bool, error) {
	return SoftDeleteRestaurant(ctx, s.db, id)
}

func (s *Store) ListMenu(ctx context.Context, restaurantID int64, availableOnly bool) ([]models.MenuItem, error) {
	return ListMenu(ctx, s.db, restaurantID, availableOnly)
}

func (s *Store) GetMenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	return GetMenuItemsByIDs(ctx, s.db, ids)
}

func (s *Store) CreateMenuItem(ctx context.Context, it *models.MenuItem) error {
	return CreateMenuItem(ctx, s.db, it)
}

func (s *Store) UpdateMenuItem(ctx context.Context, id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	return UpdateMenuItem(ctx, s.db, id, req)
}

func (s *Store) SoftDeleteMenuItem(ctx context.Context, id int64) (bool, error) {
	return SoftDeleteMenuItem(ctx, s.db, id)
}

func (s *Store) AddFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error {
	return AddFavorite(ctx, s.db, userID, restaurantID)
}

func (s *Store) RemoveFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error {
	return RemoveFavorite(ctx, s.db, userID, restaurantID)
}

// Orders

// CreateOrder writes the order header, its line items in input order and
// the initial history row in one transaction. o.Items must carry the unit
// price snapshot.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order, changedBy uuid.UUID) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		pendingID, err := StatusID(ctx, tx, models.StatusPending)
		if err != nil {
			return err
		}
		o.StatusID = pendingID
		o.Status = models.StatusPending

		if err := InsertOrder(ctx, tx, o); err != nil {
			return inTx(err)
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := InsertLineItem(ctx, tx, &o.Items[i]); err != nil {
				return inTx(err)
			}
		}
		if err := InsertStatusHistory(ctx, tx, o.ID, pendingID, changedBy); err != nil {
			return inTx(err)
		}
		return nil
	})
}

// inTx reports integrity failures inside a transaction as retryable
// conflicts.
func inTx(err error) error {
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("The order could not be placed because its data changed. Please retry.", err)
	}
	return err
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return GetOrder(ctx, s.db, id)
}

// LoadOrder reloads o with its details and, optionally, its history.
func (s *Store) LoadOrder(ctx context.Context, id int64, withHistory bool) (*models.Order, error) {
	o, err := GetOrder(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := LoadOrderDetails(ctx, s.db, o); err != nil {
		return nil, err
	}
	if withHistory {
		if err := LoadOrderHistory(ctx, s.db, o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *Store) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, page, perPage int) (models.Page[models.Order], error) {
	return ListCustomerOrders(ctx, s.db, customerID, page, perPage)
}

// TransitionOrder moves an order from one status to another and records the
// history row. It reports false when the order was no longer at from.
func (s *Store) TransitionOrder(ctx context.Context, orderID int64, from, to models.OrderStatus, by uuid.UUID) (bool, error) {
	var moved bool
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		fromID, err := StatusID(ctx, tx, from)
		if err != nil {
			return err
		}
		toID, err := StatusID(ctx, tx, to)
		if err != nil {
			return err
		}
		moved, err = CompareAndSetStatus(ctx, tx, orderID, fromID, toID)
		if err != nil || !moved {
			return err
		}
		return InsertStatusHistory(ctx, tx, orderID, toID, by)
	})
	return moved, err
}

func (s *Store) RateOrder(ctx context.Context, orderID int64, customerID uuid.UUID, r Ratings) (bool, error) {
	deliveredID, err := StatusID(ctx, s.db, models.StatusDelivered)
	if err != nil {
		return false, err
	}
	return SetRatings(ctx, s.db, orderID, customerID, deliveredID, r)
}

// AssignDriver attaches a driver while the order has not left the
// restaurant.
func (s *Store) AssignDriver(ctx context.Context, orderID, driverID int64) (bool, error) {
	var ids []int
	for _, st := range []models.OrderStatus{models.StatusPending, models.StatusConfirmed, models.StatusPreparing, models.StatusReady} {
		id, err := StatusID(ctx, s.db, st)
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
	}
	return AssignDriver(ctx, s.db, orderID, driverID, ids)
}

// Addresses

func (s *Store) GetCustomerAddress(ctx context.Context, userID uuid.UUID, id int64) (*models.CustomerAddress, error) {
	return GetCustomerAddress(ctx, s.db, userID, id)
}

func (s *Store) ListCustomerAddresses(ctx context.Context, userID uuid.UUID) ([]models.CustomerAddress, error) {
	return ListCustomerAddresses(ctx, s.db, userID)
}

// CreateCustomerAddress writes the address and its ownership link together.
func (s *Store) CreateCustomerAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.CustomerAddress, error) {
	var id int64
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		countryID, err := CountryIDByCode(ctx, tx, req.CountryCode)
		if err != nil {
			return err
		}
		a := models.Address{
			UnitNumber:   req.UnitNumber,
			StreetNumber: req.StreetNumber,
			AddressLine1: req.AddressLine1,
			AddressLine2: req.AddressLine2,
			City:         req.City,
			Region:       req.Region,
			PostalCode:   req.PostalCode,
			CountryID:    countryID,
		}
		if err := InsertAddress(ctx, tx, &a); err != nil {
			return err
		}
		ca := models.CustomerAddress{UserID: userID, AddressID: a.ID, IsDefault: req.IsDefault}
		if err := InsertCustomerAddress(ctx, tx, &ca); err != nil {
			return err
		}
		id = ca.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCustomerAddress(ctx, s.db, userID, id)
}

func (s *Store) DeleteCustomerAddress(ctx context.Context, userID uuid.UUID, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return DeleteCustomerAddress(ctx, tx, userID, id)
	})
}

// Reviews

// SaveReview upserts the review and refreshes the restaurant aggregate
// under the restaurant row lock.
func (s *Store) SaveReview(ctx context.Context, r *models.Review) (*models.Restaurant, error) {
	var rest *models.Restaurant
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		rest, err = GetRestaurantForUpdate(ctx, tx, r.RestaurantID)
		if err != nil {
			return err
		}
		r.IsVerified, err = HasDeliveredOrder(ctx, tx, r.UserID, r.RestaurantID)
		if err != nil {
			return err
		}
		if err := UpsertReview(ctx, tx, r); err != nil {
			return err
		}
		rest.Rating, rest.ReviewCount, err = RecomputeRating(ctx, tx, r.RestaurantID)
		return err
	})
	return rest, err
}

// RemoveReview deletes the user's review and refreshes the aggregate. It
// reports false when there was nothing to delete.
func (s *Store) RemoveReview(ctx context.Context, restaurantID int64, userID uuid.UUID) (bool, error) {
	var removed bool
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := GetRestaurantForUpdate(ctx, tx, restaurantID); err != nil {
			return err
		}
		var err error
		removed, err = DeleteReview(ctx, tx, restaurantID, userID)
		if err != nil || !removed {
			return err
		}
		_, _, err = RecomputeRating(ctx, tx, restaurantID)
		return err
	})
	return removed, err
}

func (s *Store) ListReviews(ctx context.Context, restaurantID int64, page, perPage int) (models.Page[models.Review], error) {
	return ListReviews(ctx, s.db, restaurantID, page, perPage)
}

// Users

// CreateUserWithRole inserts the user and grants role in one transaction.
func (s *Store) CreateUserWithRole(ctx context.Context, u *models.User, role string) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := CreateUser(ctx, tx, u); err != nil {
			return err
		}
		return AssignRole(ctx, tx, u.ID, role)
	})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return GetUserByEmail(ctx, s.db, strings.TrimSpace(email))
}

func (s *Store) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return GetUserRoles(ctx, s.db, userID)
}

func (s *Store) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	return AssignRole(ctx, s.db, userID, role)
}

// Drivers

func (s *Store) CreateDriver(ctx context.Context, d *models.Driver) error {
	return CreateDriver(ctx, s.db, d)
}

func (s *Store) GetDriver(ctx context.Context, id int64) (*models.Driver, error) {
	return GetDriver(ctx, s.db, id)
}

func (s *Store) GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*models.Driver, error) {
	return GetDriverByUserID(ctx, s.db, userID)
}

// ApproveDriver approves the profile and grants the driver role together.
func (s *Store) ApproveDriver(ctx context.Context, id int64) (*models.Driver, error) {
	var d *models.Driver
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		if d, err = ApproveDriver(ctx, tx, id); err != nil {
			return err
		}
		return AssignRole(ctx, tx, d.UserID, models.RoleDriver)
	})
	return d, err
}

func (s *Store) UpdateDriverStatus(ctx context.Context, userID uuid.UUID, available bool, lat, lng *float64) (*models.Driver, error) {
	return UpdateDriverStatus(ctx, s.db, userID, available, lat, lng)
}
