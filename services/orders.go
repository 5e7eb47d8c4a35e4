package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fooddelivery/apperr"
	"fooddelivery/events"
	"fooddelivery/geo"
	"fooddelivery/models"
	"fooddelivery/pricing"
	"fooddelivery/repository"
	"fooddelivery/validation"
)

// OrderStore is the persistence the order service needs. *repository.Store
// implements it.
type OrderStore interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	GetCustomerAddress(ctx context.Context, userID uuid.UUID, id int64) (*models.CustomerAddress, error)
	GetMenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error)
	CreateOrder(ctx context.Context, o *models.Order, changedBy uuid.UUID) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	LoadOrder(ctx context.Context, id int64, withHistory bool) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, page, perPage int) (models.Page[models.Order], error)
	TransitionOrder(ctx context.Context, orderID int64, from, to models.OrderStatus, by uuid.UUID) (bool, error)
	RateOrder(ctx context.Context, orderID int64, customerID uuid.UUID, r repository.Ratings) (bool, error)
	AssignDriver(ctx context.Context, orderID, driverID int64) (bool, error)
	GetDriver(ctx context.Context, id int64) (*models.Driver, error)
	GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*models.Driver, error)
}

// PublishTimeout bounds each order event write. The order is already
// committed by then, so a slow broker must not hold the response.
const PublishTimeout = 2 * time.Second

// Status targets each non-admin actor may request.
var (
	ownerTargets  = []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusCancelled}
	driverTargets = []models.OrderStatus{models.StatusOutForDelivery, models.StatusDelivered}
)

type OrderService struct {
	store  OrderStore
	events events.Publisher
	log    zerolog.Logger
}

func NewOrderService(store OrderStore, pub events.Publisher, log zerolog.Logger) *OrderService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &OrderService{store: store, events: pub, log: log}
}

// PlaceOrder validates the cart, prices it from current menu prices and
// writes the order atomically. The returned order is fully loaded.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uuid.UUID, req models.CreateOrderRequest) (*models.Order, error) {
	if err := validation.CreateOrder(&req); err != nil {
		return nil, err
	}

	restaurant, err := s.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Field("restaurant_id", "The selected restaurant is invalid.")
		}
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, apperr.Field("restaurant_id", "The selected restaurant is not accepting orders.")
	}

	address, err := s.store.GetCustomerAddress(ctx, customerID, req.CustomerAddressID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Field("customer_address_id", "The selected customer address is invalid.")
		}
		return nil, err
	}

	lineItems, lines, err := s.resolveItems(ctx, req)
	if err != nil {
		return nil, err
	}

	if subtotal := pricing.Subtotal(lines); subtotal.LessThan(restaurant.MinimumOrder) {
		return nil, apperr.Field("items", fmt.Sprintf("The order subtotal must be at least %s.", restaurant.MinimumOrder.StringFixed(2)))
	}

	addressID := address.ID
	order := &models.Order{
		CustomerID:        customerID,
		RestaurantID:      restaurant.ID,
		CustomerAddressID: &addressID,
		DeliveryAddressID: address.AddressID,
		DeliverySlot:      req.DeliveryTime,
		Notes:             req.Notes,
		DeliveryFee:       restaurant.DeliveryFee,
		TotalAmount:       pricing.CalculateTotal(lines, restaurant.DeliveryFee),
		Items:             lineItems,
	}
	if at, err := time.Parse(time.RFC3339, req.DeliveryTime); err == nil {
		at = at.UTC()
		order.RequestedDeliveryAt = &at
	}

	if err := s.store.CreateOrder(ctx, order, customerID); err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("order_id", order.ID).
		Str("customer_id", customerID.String()).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Msg("order placed")

	loaded, err := s.store.LoadOrder(ctx, order.ID, false)
	if err != nil {
		// The order is committed; answer with what was written.
		s.log.Warn().Err(err).Int64("order_id", order.ID).Msg("reload placed order")
		loaded = order
	}
	s.publish(ctx, func() (events.Event, error) { return events.OrderPlaced(loaded) })
	return loaded, nil
}

// resolveItems checks every requested item against the menu and snapshots
// its current price. Errors are keyed by the item's position.
func (s *OrderService) resolveItems(ctx context.Context, req models.CreateOrderRequest) ([]models.OrderLineItem, []pricing.Line, error) {
	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.MenuItemID)
	}
	menu, err := s.store.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	fields := apperr.FieldErrors{}
	lineItems := make([]models.OrderLineItem, 0, len(req.Items))
	lines := make([]pricing.Line, 0, len(req.Items))
	for i, it := range req.Items {
		key := fmt.Sprintf("items.%d.menu_item_id", i)
		m, ok := menu[it.MenuItemID]
		switch {
		case !ok:
			fields.Add(key, "The selected menu item is invalid.")
			continue
		case m.RestaurantID != req.RestaurantID:
			fields.Add(key, "The selected menu item does not belong to this restaurant.")
			continue
		case !m.IsAvailable:
			fields.Add(key, "The selected menu item is currently unavailable.")
			continue
		}
		lineItems = append(lineItems, models.OrderLineItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Quantity:   it.Quantity,
			UnitPrice:  m.Price,
		})
		lines = append(lines, pricing.Line{UnitPrice: m.Price, Quantity: it.Quantity})
	}
	if !fields.Empty() {
		return nil, nil, apperr.Validation(fields)
	}
	return lineItems, lines, nil
}

// role is how an actor relates to one order.
type role struct {
	admin    bool
	customer bool
	owner    bool
	driver   bool
}

func (r role) any() bool {
	return r.admin || r.customer || r.owner || r.driver
}

func (s *OrderService) relation(ctx context.Context, actor Actor, o *models.Order) (role, error) {
	r := role{
		admin:    actor.HasRole(models.RoleAdmin),
		customer: o.CustomerID == actor.UserID,
	}
	if o.Restaurant != nil && o.Restaurant.OwnerID != nil && *o.Restaurant.OwnerID == actor.UserID {
		r.owner = true
	}
	if o.DriverID != nil && actor.HasRole(models.RoleDriver) {
		d, err := s.store.GetDriverByUserID(ctx, actor.UserID)
		switch {
		case err == nil:
			r.driver = d.ID == *o.DriverID
		case apperr.KindOf(err) != apperr.KindNotFound:
			return role{}, err
		}
	}
	return r, nil
}

// Get returns an order with its history to anyone involved in it.
func (s *OrderService) Get(ctx context.Context, actor Actor, id int64) (*models.Order, error) {
	o, err := s.store.LoadOrder(ctx, id, true)
	if err != nil {
		return nil, err
	}
	r, err := s.relation(ctx, actor, o)
	if err != nil {
		return nil, err
	}
	if !r.any() {
		return nil, apperr.NotFound("Order not found.")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, customerID uuid.UUID, page int) (models.Page[models.Order], error) {
	return s.store.ListCustomerOrders(ctx, customerID, page, models.OrderPageSize)
}

// Cancel is the customer-facing cancellation.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id int64) (*models.Order, error) {
	return s.UpdateStatus(ctx, actor, id, models.StatusCancelled)
}

// UpdateStatus applies one transition from the status table on behalf of
// actor. Authorization resolves before legality: an actor who may never
// request the target gets 403, an illegal move for a permitted actor gets
// 409.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id int64, to models.OrderStatus) (*models.Order, error) {
	if err := validation.UpdateStatus(&models.UpdateStatusRequest{Status: to}); err != nil {
		return nil, err
	}
	o, err := s.store.LoadOrder(ctx, id, false)
	if err != nil {
		return nil, err
	}
	r, err := s.relation(ctx, actor, o)
	if err != nil {
		return nil, err
	}
	if !r.any() {
		return nil, apperr.Forbidden("This action is unauthorized.")
	}

	from := o.Status
	if !r.admin {
		allowed := (r.owner && containsStatus(ownerTargets, to)) ||
			(r.driver && containsStatus(driverTargets, to))
		if !allowed && r.customer && to == models.StatusCancelled {
			if from != models.StatusPending {
				return nil, apperr.Forbidden("This order can no longer be cancelled.")
			}
			allowed = true
		}
		if !allowed {
			return nil, apperr.Forbidden("You are not allowed to set this order to " + string(to) + ".")
		}
	}
	if !from.CanTransition(to) {
		return nil, apperr.Conflict(fmt.Sprintf("An order cannot move from %s to %s.", from, to), nil)
	}

	moved, err := s.store.TransitionOrder(ctx, id, from, to, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperr.Conflict("The order status changed while this request was processed. Please retry.", nil)
	}
	s.log.Info().Int64("order_id", id).Str("from", string(from)).Str("to", string(to)).
		Str("changed_by", actor.UserID.String()).Msg("order status changed")
	s.publish(ctx, func() (events.Event, error) { return events.OrderStatusChanged(id, from, to, actor.UserID) })

	return s.store.LoadOrder(ctx, id, true)
}

func containsStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Rate records the customer's ratings on a delivered order. Validation runs
// before anything is read.
func (s *OrderService) Rate(ctx context.Context, customerID uuid.UUID, id int64, req models.RateOrderRequest) (*models.Order, error) {
	if err := validation.RateOrder(&req); err != nil {
		return nil, err
	}
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, apperr.NotFound("Order not found.")
	}
	if o.Status != models.StatusDelivered {
		return nil, apperr.Forbidden("Only delivered orders can be rated.")
	}
	if (req.DriverRating != nil && o.DriverRating != nil) || (req.RestaurantRating != nil && o.RestaurantRating != nil) {
		return nil, apperr.Conflict("This order has already been rated.", nil)
	}

	ok, err := s.store.RateOrder(ctx, id, customerID, repository.Ratings{
		Driver:     req.DriverRating,
		Restaurant: req.RestaurantRating,
		Comment:    req.Comment,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("This order has already been rated.", nil)
	}
	return s.store.LoadOrder(ctx, id, false)
}

// AssignDriver attaches an approved, available driver to an order that has
// not left the restaurant yet.
func (s *OrderService) AssignDriver(ctx context.Context, orderID, driverID int64) (*models.Order, error) {
	if driverID <= 0 {
		return nil, apperr.Field("driver_id", "The driver id field is required.")
	}
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Field("driver_id", "The selected driver is invalid.")
		}
		return nil, err
	}
	if !d.IsApproved || !d.IsAvailable {
		return nil, apperr.Field("driver_id", "The selected driver is not available.")
	}
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	ok, err := s.store.AssignDriver(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("A driver can no longer be assigned to this order.", nil)
	}
	return s.store.LoadOrder(ctx, orderID, false)
}

// DriverDistance is the straight-line distance from the assigned driver's
// last known position to the restaurant.
type DriverDistance struct {
	OrderID    int64   `json:"order_id"`
	DriverID   int64   `json:"driver_id"`
	DistanceKm float64 `json:"distance_km"`
}

func (s *OrderService) DriverDistance(ctx context.Context, actor Actor, id int64) (*DriverDistance, error) {
	o, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if o.DriverID == nil {
		return nil, apperr.NotFound("No driver has been assigned to this order.")
	}
	d, err := s.store.GetDriver(ctx, *o.DriverID)
	if err != nil {
		return nil, err
	}
	if d.Latitude == nil || d.Longitude == nil || o.Restaurant == nil ||
		o.Restaurant.Latitude == nil || o.Restaurant.Longitude == nil {
		return nil, apperr.NotFound("The driver or restaurant location is unknown.")
	}

	km := geo.Km(
		geo.Point{Lat: *d.Latitude, Lng: *d.Longitude},
		geo.Point{Lat: *o.Restaurant.Latitude, Lng: *o.Restaurant.Longitude},
	)
	return &DriverDistance{OrderID: o.ID, DriverID: d.ID, DistanceKm: roundKm(km)}, nil
}

// publish sends an event after commit. It is detached from the request's
// cancellation and capped at PublishTimeout. Failures are logged only.
func (s *OrderService) publish(ctx context.Context, build func() (events.Event, error)) {
	e, err := build()
	if err == nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
		err = s.events.Publish(pubCtx, e)
		cancel()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("event_type", e.Type).Msg("publish order event")
	}
}
