package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Role struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

const (
	RoleAdmin      = "admin"
	RoleRestaurant = "restaurant"
	RoleCustomer   = "customer"
	RoleDriver     = "driver"
)

type Country struct {
	ID   int    `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

type Address struct {
	ID           int64   `json:"id" db:"id"`
	UnitNumber   *string `json:"unit_number,omitempty" db:"unit_number"`
	StreetNumber string  `json:"street_number" db:"street_number"`
	AddressLine1 string  `json:"address_line1" db:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty" db:"address_line2"`
	City         string  `json:"city" db:"city"`
	Region       string  `json:"region" db:"region"`
	PostalCode   string  `json:"postal_code" db:"postal_code"`
	CountryID    int     `json:"country_id" db:"country_id"`
	CountryCode  string  `json:"country_code,omitempty" db:"country_code"`
}

// CustomerAddress links a user to an address they own.
type CustomerAddress struct {
	ID        int64     `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	AddressID int64     `json:"address_id" db:"address_id"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Address   Address   `json:"address" db:"address"`
}

type Restaurant struct {
	ID           int64           `json:"id" db:"id"`
	OwnerID      *uuid.UUID      `json:"owner_id,omitempty" db:"owner_id"`
	AddressID    *int64          `json:"address_id,omitempty" db:"address_id"`
	Name         string          `json:"name" db:"name"`
	Email        string          `json:"email" db:"email"`
	Phone        string          `json:"phone" db:"phone"`
	CuisineType  string          `json:"cuisine_type" db:"cuisine_type"`
	OpeningTime  string          `json:"opening_time" db:"opening_time"`
	ClosingTime  string          `json:"closing_time" db:"closing_time"`
	DeliveryTime int             `json:"delivery_time" db:"delivery_time"`
	MinimumOrder decimal.Decimal `json:"minimum_order" db:"minimum_order"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee" db:"delivery_fee"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	IsOpen       bool            `json:"is_open" db:"is_open"`
	IsFeatured   bool            `json:"is_featured" db:"is_featured"`
	Latitude     *float64        `json:"latitude" db:"latitude"`
	Longitude    *float64        `json:"longitude" db:"longitude"`
	Rating       float64         `json:"rating" db:"rating"`
	ReviewCount  int             `json:"review_count" db:"review_count"`
	Tags         pq.StringArray  `json:"tags" db:"tags"`
	PriceRange   string          `json:"price_range" db:"price_range"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time      `json:"-" db:"deleted_at"`
}

// RestaurantListing is one discovery row: the restaurant plus the
// per-requester annotations that are never persisted.
type RestaurantListing struct {
	Restaurant
	IsFavorite bool     `json:"is_favorite" db:"is_favorite"`
	DistanceKm *float64 `json:"distance_km,omitempty" db:"distance_km"`
}

type MenuItem struct {
	ID           int64           `json:"id" db:"id"`
	RestaurantID int64           `json:"restaurant_id" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	IsAvailable  bool            `json:"is_available" db:"is_available"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time      `json:"-" db:"deleted_at"`
}

type Order struct {
	ID                  int64           `json:"id" db:"id"`
	CustomerID          uuid.UUID       `json:"customer_id" db:"customer_id"`
	RestaurantID        int64           `json:"restaurant_id" db:"restaurant_id"`
	CustomerAddressID   *int64          `json:"customer_address_id,omitempty" db:"customer_address_id"`
	DeliveryAddressID   int64           `json:"delivery_address_id" db:"delivery_address_id"`
	StatusID            int             `json:"-" db:"order_status_id"`
	Status              OrderStatus     `json:"status" db:"status"`
	DriverID            *int64          `json:"driver_id,omitempty" db:"driver_id"`
	OrderDatetime       time.Time       `json:"order_datetime" db:"order_datetime"`
	DeliverySlot        string          `json:"delivery_time" db:"delivery_slot"`
	RequestedDeliveryAt *time.Time      `json:"requested_delivery_at,omitempty" db:"requested_delivery_at"`
	Notes               *string         `json:"notes,omitempty" db:"notes"`
	DeliveryFee         decimal.Decimal `json:"delivery_fee" db:"delivery_fee"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	DriverRating        *int            `json:"driver_rating" db:"driver_rating"`
	RestaurantRating    *int            `json:"restaurant_rating" db:"restaurant_rating"`
	RatingComment       *string         `json:"rating_comment,omitempty" db:"rating_comment"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`

	Items           []OrderLineItem      `json:"items,omitempty" db:"-"`
	Restaurant      *RestaurantSummary   `json:"restaurant,omitempty" db:"-"`
	DeliveryAddress *Address             `json:"delivery_address,omitempty" db:"-"`
	History         []OrderStatusHistory `json:"history,omitempty" db:"-"`
}

// OrderLineItem is one (menu item, quantity) pair with the unit price
// captured when the order was placed.
type OrderLineItem struct {
	ID         int64           `json:"id" db:"id"`
	OrderID    int64           `json:"order_id" db:"order_id"`
	MenuItemID int64           `json:"menu_item_id" db:"menu_item_id"`
	Name       string          `json:"name" db:"name"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// RestaurantSummary is the restaurant shape embedded in order responses.
type RestaurantSummary struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Phone     string     `json:"phone" db:"phone"`
	OwnerID   *uuid.UUID `json:"-" db:"owner_id"`
	Latitude  *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64   `json:"longitude,omitempty" db:"longitude"`
}

type OrderStatusHistory struct {
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy uuid.UUID   `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time   `json:"changed_at" db:"changed_at"`
}

type Review struct {
	ID           int64     `json:"id" db:"id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	UserName     string    `json:"user_name,omitempty" db:"user_name"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      *string   `json:"comment,omitempty" db:"comment"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Driver struct {
	ID           int64     `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	VehicleType  string    `json:"vehicle_type" db:"vehicle_type"`
	VehiclePlate string    `json:"vehicle_plate" db:"vehicle_plate"`
	IsApproved   bool      `json:"is_approved" db:"is_approved"`
	IsAvailable  bool      `json:"is_available" db:"is_available"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
