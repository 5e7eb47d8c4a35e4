// Package validation checks request payloads before any database work. All
// validators return nil or an *apperr.Error of kind validation whose fields
// are keyed by the request's JSON path.
package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"fooddelivery/apperr"
	"fooddelivery/models"
)

const (
	MaxItemsPerOrder    = 50
	MinQuantity         = 1
	MaxQuantity         = 10
	MaxNotesLength      = 500
	MaxDeliveryTimeLen  = 64
	MinRating           = 1
	MaxRating           = 5
	MaxCommentLength    = 1000
	MinPasswordLength   = 8
	MaxNameLength       = 255
	MaxMenuItemPrice    = "9999.99"
	MaxDeliveryFee      = "999.99"
	MaxDeliveryTimeMins = 240
)

var priceRanges = map[string]bool{"$": true, "$$": true, "$$$": true, "$$$$": true}

func result(f apperr.FieldErrors) error {
	if f.Empty() {
		return nil
	}
	return apperr.Validation(f)
}

// CreateOrder checks the shape of a checkout payload. Referential checks
// (restaurant, address and menu item ownership) need the database and run in
// the order service.
func CreateOrder(req *models.CreateOrderRequest) error {
	f := apperr.FieldErrors{}

	if req.RestaurantID <= 0 {
		f.Add("restaurant_id", "The restaurant id field is required.")
	}
	if req.CustomerAddressID <= 0 {
		f.Add("customer_address_id", "The customer address id field is required.")
	}
	if strings.TrimSpace(req.DeliveryTime) == "" {
		f.Add("delivery_time", "The delivery time field is required.")
	} else if len(req.DeliveryTime) > MaxDeliveryTimeLen {
		f.Add("delivery_time", fmt.Sprintf("The delivery time may not be greater than %d characters.", MaxDeliveryTimeLen))
	}
	if req.Notes != nil && len(*req.Notes) > MaxNotesLength {
		f.Add("notes", fmt.Sprintf("The notes may not be greater than %d characters.", MaxNotesLength))
	}

	switch {
	case len(req.Items) == 0:
		f.Add("items", "The items field must have at least 1 item.")
	case len(req.Items) > MaxItemsPerOrder:
		f.Add("items", fmt.Sprintf("The items field may not have more than %d items.", MaxItemsPerOrder))
	}
	for i, item := range req.Items {
		if item.MenuItemID <= 0 {
			f.Add(fmt.Sprintf("items.%d.menu_item_id", i), "The menu item id field is required.")
		}
		if item.Quantity < MinQuantity || item.Quantity > MaxQuantity {
			f.Add(fmt.Sprintf("items.%d.quantity", i),
				fmt.Sprintf("The quantity must be between %d and %d.", MinQuantity, MaxQuantity))
		}
	}

	return result(f)
}

// RateOrder requires each rating when the other is absent and bounds both.
func RateOrder(req *models.RateOrderRequest) error {
	f := apperr.FieldErrors{}

	if req.DriverRating == nil && req.RestaurantRating == nil {
		f.Add("driver_rating", "The driver rating field is required when restaurant rating is not present.")
		f.Add("restaurant_rating", "The restaurant rating field is required when driver rating is not present.")
	}
	checkRating(f, "driver_rating", req.DriverRating)
	checkRating(f, "restaurant_rating", req.RestaurantRating)
	if req.Comment != nil && len(*req.Comment) > MaxCommentLength {
		f.Add("comment", fmt.Sprintf("The comment may not be greater than %d characters.", MaxCommentLength))
	}

	return result(f)
}

func checkRating(f apperr.FieldErrors, field string, v *int) {
	if v != nil && (*v < MinRating || *v > MaxRating) {
		f.Add(field, fmt.Sprintf("The %s must be between %d and %d.", strings.ReplaceAll(field, "_", " "), MinRating, MaxRating))
	}
}

func Review(req *models.ReviewRequest) error {
	f := apperr.FieldErrors{}
	rating := req.Rating
	checkRating(f, "rating", &rating)
	if req.Comment != nil && len(*req.Comment) > MaxCommentLength {
		f.Add("comment", fmt.Sprintf("The comment may not be greater than %d characters.", MaxCommentLength))
	}
	return result(f)
}

func UpdateStatus(req *models.UpdateStatusRequest) error {
	if !req.Status.Valid() {
		return apperr.Field("status", "The selected status is invalid.")
	}
	return nil
}

func Address(req *models.AddressRequest) error {
	f := apperr.FieldErrors{}
	required(f, "street_number", req.StreetNumber)
	required(f, "address_line1", req.AddressLine1)
	required(f, "city", req.City)
	required(f, "region", req.Region)
	required(f, "postal_code", req.PostalCode)
	if len(strings.TrimSpace(req.CountryCode)) != 2 {
		f.Add("country_code", "The country code must be 2 characters.")
	}
	return result(f)
}

func required(f apperr.FieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		f.Add(field, fmt.Sprintf("The %s field is required.", strings.ReplaceAll(field, "_", " ")))
	}
}

// Restaurant validates a create (creating=true, name required) or a partial
// update.
func Restaurant(req *models.RestaurantRequest, creating bool) error {
	f := apperr.FieldErrors{}

	if creating && (req.Name == nil || strings.TrimSpace(*req.Name) == "") {
		f.Add("name", "The name field is required.")
	}
	if req.Name != nil && len(*req.Name) > MaxNameLength {
		f.Add("name", fmt.Sprintf("The name may not be greater than %d characters.", MaxNameLength))
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			f.Add("email", "The email must be a valid email address.")
		}
	}
	if req.DeliveryTime != nil && (*req.DeliveryTime < 1 || *req.DeliveryTime > MaxDeliveryTimeMins) {
		f.Add("delivery_time", fmt.Sprintf("The delivery time must be between 1 and %d.", MaxDeliveryTimeMins))
	}
	money(f, "minimum_order", req.MinimumOrder, MaxMenuItemPrice)
	money(f, "delivery_fee", req.DeliveryFee, MaxDeliveryFee)
	if req.PriceRange != nil && !priceRanges[*req.PriceRange] {
		f.Add("price_range", "The selected price range is invalid.")
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		f.Add("latitude", "The latitude and longitude fields must be given together.")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		f.Add("latitude", "The latitude must be between -90 and 90.")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		f.Add("longitude", "The longitude must be between -180 and 180.")
	}
	for i, tag := range req.Tags {
		if strings.TrimSpace(tag) == "" {
			f.Add(fmt.Sprintf("tags.%d", i), "The tag may not be empty.")
		}
	}

	return result(f)
}

func money(f apperr.FieldErrors, field string, v *decimal.Decimal, max string) {
	if v == nil {
		return
	}
	if v.IsNegative() || v.GreaterThan(decimal.RequireFromString(max)) {
		f.Add(field, fmt.Sprintf("The %s must be between 0 and %s.", strings.ReplaceAll(field, "_", " "), max))
	}
	if v.Exponent() < -2 && !v.Equal(v.Round(2)) {
		f.Add(field, fmt.Sprintf("The %s may not have more than 2 decimal places.", strings.ReplaceAll(field, "_", " ")))
	}
}

func MenuItem(req *models.MenuItemRequest, creating bool) error {
	f := apperr.FieldErrors{}
	if creating {
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			f.Add("name", "The name field is required.")
		}
		if req.Price == nil {
			f.Add("price", "The price field is required.")
		}
	}
	if req.Name != nil && len(*req.Name) > MaxNameLength {
		f.Add("name", fmt.Sprintf("The name may not be greater than %d characters.", MaxNameLength))
	}
	if req.Price != nil && !req.Price.IsPositive() {
		f.Add("price", "The price must be greater than 0.")
	}
	money(f, "price", req.Price, MaxMenuItemPrice)
	return result(f)
}

func Signup(req *models.SignupRequest) error {
	f := apperr.FieldErrors{}
	required(f, "name", req.Name)
	required(f, "phone", req.Phone)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		f.Add("email", "The email must be a valid email address.")
	}
	if len(req.Password) < MinPasswordLength {
		f.Add("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}
	return result(f)
}

func Login(req *models.LoginRequest) error {
	f := apperr.FieldErrors{}
	required(f, "email", req.Email)
	required(f, "password", req.Password)
	return result(f)
}

func DriverRegister(req *models.DriverRegisterRequest) error {
	f := apperr.FieldErrors{}
	required(f, "vehicle_type", req.VehicleType)
	required(f, "vehicle_plate", req.VehiclePlate)
	return result(f)
}

func DriverStatus(req *models.DriverStatusRequest) error {
	f := apperr.FieldErrors{}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		f.Add("latitude", "The latitude and longitude fields must be given together.")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		f.Add("latitude", "The latitude must be between -90 and 90.")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		f.Add("longitude", "The longitude must be between -180 and 180.")
	}
	return result(f)
}
