// Package events publishes order lifecycle events for downstream consumers
// such as notifications and dispatch.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fooddelivery/models"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	OrderID    int64           `json:"order_id"`
	Payload    json.RawMessage `json:"payload"`
}

// Key partitions events by order so a consumer sees one order's events in
// order.
func (e Event) Key() []byte {
	return []byte(strconv.FormatInt(e.OrderID, 10))
}

// Publisher delivers events. Publish failures never undo the write that
// produced the event.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type orderPlaced struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	RestaurantID int64           `json:"restaurant_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ItemCount    int             `json:"item_count"`
	DeliveryTime string          `json:"delivery_time"`
}

type statusChanged struct {
	From      models.OrderStatus `json:"from"`
	To        models.OrderStatus `json:"to"`
	ChangedBy uuid.UUID          `json:"changed_by"`
}

func newEvent(typ string, orderID int64, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		OrderID:    orderID,
		Payload:    raw,
	}, nil
}

// OrderPlaced describes a freshly committed order.
func OrderPlaced(o *models.Order) (Event, error) {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return newEvent(TypeOrderPlaced, o.ID, orderPlaced{
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		TotalAmount:  o.TotalAmount,
		ItemCount:    count,
		DeliveryTime: o.DeliverySlot,
	})
}

func OrderStatusChanged(orderID int64, from, to models.OrderStatus, by uuid.UUID) (Event, error) {
	return newEvent(TypeOrderStatusChanged, orderID, statusChanged{From: from, To: to, ChangedBy: by})
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
