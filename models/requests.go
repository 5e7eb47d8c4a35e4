package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fooddelivery/geo"
)

type OrderItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type CreateOrderRequest struct {
	RestaurantID      int64              `json:"restaurant_id"`
	CustomerAddressID int64              `json:"customer_address_id"`
	DeliveryTime      string             `json:"delivery_time"`
	Notes             *string            `json:"notes,omitempty"`
	Items             []OrderItemRequest `json:"items"`
}

type RateOrderRequest struct {
	DriverRating     *int    `json:"driver_rating,omitempty"`
	RestaurantRating *int    `json:"restaurant_rating,omitempty"`
	Comment          *string `json:"comment,omitempty"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

type AssignDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

type ReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

type AddressRequest struct {
	UnitNumber   *string `json:"unit_number,omitempty"`
	StreetNumber string  `json:"street_number"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	PostalCode   string  `json:"postal_code"`
	CountryCode  string  `json:"country_code"`
	IsDefault    bool    `json:"is_default"`
}

// RestaurantRequest is used for both create and update; nil fields are left
// unchanged on update.
type RestaurantRequest struct {
	OwnerID      *uuid.UUID       `json:"owner_id,omitempty"`
	Name         *string          `json:"name,omitempty"`
	Email        *string          `json:"email,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	CuisineType  *string          `json:"cuisine_type,omitempty"`
	OpeningTime  *string          `json:"opening_time,omitempty"`
	ClosingTime  *string          `json:"closing_time,omitempty"`
	DeliveryTime *int             `json:"delivery_time,omitempty"`
	MinimumOrder *decimal.Decimal `json:"minimum_order,omitempty"`
	DeliveryFee  *decimal.Decimal `json:"delivery_fee,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	IsOpen       *bool            `json:"is_open,omitempty"`
	IsFeatured   *bool            `json:"is_featured,omitempty"`
	Latitude     *float64         `json:"latitude,omitempty"`
	Longitude    *float64         `json:"longitude,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	PriceRange   *string          `json:"price_range,omitempty"`
}

type MenuItemRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

type DriverRegisterRequest struct {
	VehicleType  string `json:"vehicle_type"`
	VehiclePlate string `json:"vehicle_plate"`
}

type DriverStatusRequest struct {
	IsAvailable bool     `json:"is_available"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Discovery sort keys. Anything else falls back to the default ordering.
const (
	SortRating       = "rating"
	SortDeliveryTime = "delivery_time"
	SortDistance     = "distance_km"
	SortPriceRange   = "price_range"
	SortReviewCount  = "review_count"
)

// DiscoveryFilter carries the restaurant listing parameters. Requester is
// nil for anonymous callers.
type DiscoveryFilter struct {
	Requester     *uuid.UUID
	Category      string
	PriceRange    string
	OpenNow       bool
	Tags          []string
	FavoritesOnly bool
	Search        string
	Sort          string
	Trending      bool
	Featured      bool
	Origin        *geo.Point
	Page          int
	PerPage       int
}
