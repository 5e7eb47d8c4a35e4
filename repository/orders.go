package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fooddelivery/apperr"
	"fooddelivery/models"
)

var orderColumns = []string{
	"o.id", "o.customer_id", "o.restaurant_id", "o.customer_address_id",
	"o.delivery_address_id", "o.order_status_id", "s.name AS status", "o.driver_id",
	"o.order_datetime", "o.delivery_slot", "o.requested_delivery_at", "o.notes",
	"o.delivery_fee", "o.total_amount", "o.driver_rating", "o.restaurant_rating",
	"o.rating_comment", "o.created_at", "o.updated_at",
}

func selectOrders() squirrel.SelectBuilder {
	return QB.Select(orderColumns...).
		From("food_orders o").
		Join("order_statuses s ON s.id = o.order_status_id")
}

// StatusID resolves a status name to its row id.
func StatusID(ctx context.Context, q sqlx.QueryerContext, status models.OrderStatus) (int, error) {
	var id int
	b := QB.Select("id").From("order_statuses").Where(squirrel.Eq{"name": string(status)})
	if err := get(ctx, q, &id, b, "order status not seeded"); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return 0, apperr.Internal("order status "+string(status)+" is not seeded", err)
		}
		return 0, err
	}
	return id, nil
}

// InsertOrder writes the order header and fills its id and timestamps.
func InsertOrder(ctx context.Context, q sqlx.QueryerContext, o *models.Order) error {
	b := QB.Insert("food_orders").
		Columns("customer_id", "restaurant_id", "customer_address_id", "delivery_address_id",
			"order_status_id", "delivery_slot", "requested_delivery_at", "notes",
			"delivery_fee", "total_amount").
		Values(o.CustomerID, o.RestaurantID, o.CustomerAddressID, o.DeliveryAddressID,
			o.StatusID, o.DeliverySlot, o.RequestedDeliveryAt, o.Notes,
			o.DeliveryFee, o.TotalAmount).
		Suffix("RETURNING id, order_datetime, created_at, updated_at")
	return insertReturning(ctx, q, b, &o.ID, &o.OrderDatetime, &o.CreatedAt, &o.UpdatedAt)
}

// InsertLineItem writes one order line with its captured unit price.
func InsertLineItem(ctx context.Context, q sqlx.QueryerContext, li *models.OrderLineItem) error {
	b := QB.Insert("order_menu_items").
		Columns("order_id", "menu_item_id", "quantity", "unit_price").
		Values(li.OrderID, li.MenuItemID, li.Quantity, li.UnitPrice).
		Suffix("RETURNING id")
	return insertReturning(ctx, q, b, &li.ID)
}

func InsertStatusHistory(ctx context.Context, q sqlx.ExecerContext, orderID int64, statusID int, changedBy uuid.UUID) error {
	_, err := exec(ctx, q, QB.Insert("order_status_history").
		Columns("order_id", "order_status_id", "changed_by").
		Values(orderID, statusID, changedBy))
	return err
}

// GetOrder loads the order header only.
func GetOrder(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Order, error) {
	var o models.Order
	if err := get(ctx, q, &o, selectOrders().Where(squirrel.Eq{"o.id": id}), "Order not found."); err != nil {
		return nil, err
	}
	return &o, nil
}

// LoadOrderDetails attaches line items, restaurant summary and delivery
// address to o.
func LoadOrderDetails(ctx context.Context, q sqlx.QueryerContext, o *models.Order) error {
	items := []models.OrderLineItem{}
	ib := QB.Select("li.id", "li.order_id", "li.menu_item_id", "m.name", "li.quantity", "li.unit_price").
		From("order_menu_items li").
		Join("menu_items m ON m.id = li.menu_item_id").
		Where(squirrel.Eq{"li.order_id": o.ID}).
		OrderBy("li.id ASC")
	if err := selectAll(ctx, q, &items, ib); err != nil {
		return err
	}
	o.Items = items

	var rs models.RestaurantSummary
	rb := QB.Select("id", "name", "phone", "owner_id", "latitude", "longitude").
		From("restaurants").
		Where(squirrel.Eq{"id": o.RestaurantID})
	if err := get(ctx, q, &rs, rb, "Restaurant not found."); err != nil {
		return err
	}
	o.Restaurant = &rs

	addr, err := GetAddress(ctx, q, o.DeliveryAddressID)
	if err != nil {
		return err
	}
	o.DeliveryAddress = addr
	return nil
}

// LoadOrderHistory attaches the status trail, oldest first.
func LoadOrderHistory(ctx context.Context, q sqlx.QueryerContext, o *models.Order) error {
	history := []models.OrderStatusHistory{}
	b := QB.Select("s.name AS status", "h.changed_by", "h.changed_at").
		From("order_status_history h").
		Join("order_statuses s ON s.id = h.order_status_id").
		Where(squirrel.Eq{"h.order_id": o.ID}).
		OrderBy("h.changed_at ASC", "h.id ASC")
	if err := selectAll(ctx, q, &history, b); err != nil {
		return err
	}
	o.History = history
	return nil
}

// ListCustomerOrders pages through a customer's orders, newest first.
func ListCustomerOrders(ctx context.Context, q sqlx.QueryerContext, customerID uuid.UUID, page, perPage int) (models.Page[models.Order], error) {
	page = models.NormalizePage(page)

	var total int64
	count := QB.Select("COUNT(*)").From("food_orders").Where(squirrel.Eq{"customer_id": customerID})
	if err := get(ctx, q, &total, count, "no orders"); err != nil {
		return models.Page[models.Order]{}, err
	}

	var rows []models.Order
	if total > 0 {
		b := selectOrders().
			Where(squirrel.Eq{"o.customer_id": customerID}).
			OrderBy("o.order_datetime DESC", "o.id DESC").
			Limit(uint64(perPage)).
			Offset(models.Offset(page, perPage))
		if err := selectAll(ctx, q, &rows, b); err != nil {
			return models.Page[models.Order]{}, err
		}
	}
	return models.NewPage(rows, page, perPage, total), nil
}

// CompareAndSetStatus moves the order from fromID to toID. It reports false
// when another writer changed the status first.
func CompareAndSetStatus(ctx context.Context, q sqlx.ExecerContext, orderID int64, fromID, toID int) (bool, error) {
	n, err := exec(ctx, q, QB.Update("food_orders").
		Set("order_status_id", toID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID, "order_status_id": fromID}))
	return n == 1, err
}

// Ratings is a partial rating write; nil fields are left alone.
type Ratings struct {
	Driver     *int
	Restaurant *int
	Comment    *string
}

// SetRatings records ratings on a delivered order owned by customerID. Each
// supplied rating must still be empty, so a second submission affects no
// rows and reports false. The first comment written is kept.
func SetRatings(ctx context.Context, q sqlx.ExecerContext, orderID int64, customerID uuid.UUID, deliveredID int, r Ratings) (bool, error) {
	b := QB.Update("food_orders").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID, "customer_id": customerID, "order_status_id": deliveredID})
	if r.Driver != nil {
		b = b.Set("driver_rating", *r.Driver).Where("driver_rating IS NULL")
	}
	if r.Restaurant != nil {
		b = b.Set("restaurant_rating", *r.Restaurant).Where("restaurant_rating IS NULL")
	}
	if r.Comment != nil {
		b = b.Set("rating_comment", squirrel.Expr("COALESCE(rating_comment, ?)", *r.Comment))
	}

	n, err := exec(ctx, q, b)
	return n == 1, err
}

// AssignDriver sets the order's driver while the order is in one of
// statusIDs.
func AssignDriver(ctx context.Context, q sqlx.ExecerContext, orderID, driverID int64, statusIDs []int) (bool, error) {
	n, err := exec(ctx, q, QB.Update("food_orders").
		Set("driver_id", driverID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID, "order_status_id": statusIDs}))
	return n == 1, err
}

// HasDeliveredOrder reports whether userID has received an order from the
// restaurant.
func HasDeliveredOrder(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID, restaurantID int64) (bool, error) {
	var ok bool
	b := QB.Select().Column("EXISTS (SELECT 1 FROM food_orders o JOIN order_statuses s ON s.id = o.order_status_id WHERE o.customer_id = ? AND o.restaurant_id = ? AND s.name = ?)",
		userID, restaurantID, string(models.StatusDelivered))
	if err := get(ctx, q, &ok, b, "no rows"); err != nil {
		return false, err
	}
	return ok, nil
}
