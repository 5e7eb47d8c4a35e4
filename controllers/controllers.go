// Package controllers holds the HTTP handlers. Handlers decode the request,
// call one service operation and render the result; business rules live in
// package services.
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fooddelivery/apperr"
	"fooddelivery/middleware"
	"fooddelivery/models"
	"fooddelivery/services"
	"fooddelivery/utils"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, customerID uuid.UUID, req models.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, actor services.Actor, id int64) (*models.Order, error)
	List(ctx context.Context, customerID uuid.UUID, page int) (models.Page[models.Order], error)
	Cancel(ctx context.Context, actor services.Actor, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor services.Actor, id int64, to models.OrderStatus) (*models.Order, error)
	Rate(ctx context.Context, customerID uuid.UUID, id int64, req models.RateOrderRequest) (*models.Order, error)
	AssignDriver(ctx context.Context, orderID, driverID int64) (*models.Order, error)
	DriverDistance(ctx context.Context, actor services.Actor, id int64) (*services.DriverDistance, error)
}

type RestaurantService interface {
	Discover(ctx context.Context, f models.DiscoveryFilter) (models.Page[models.RestaurantListing], error)
	Get(ctx context.Context, id int64) (*services.RestaurantDetail, error)
	AdminList(ctx context.Context, page int) (models.Page[models.Restaurant], error)
	Create(ctx context.Context, req models.RestaurantRequest) (*models.Restaurant, error)
	Update(ctx context.Context, id int64, req models.RestaurantRequest) (*models.Restaurant, error)
	Delete(ctx context.Context, id int64) error
	CreateMenuItem(ctx context.Context, restaurantID int64, req models.MenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, req models.MenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
	AddFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error
	RemoveFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error
}

type ReviewService interface {
	Save(ctx context.Context, userID uuid.UUID, restaurantID int64, req models.ReviewRequest) (*services.ReviewResult, error)
	Delete(ctx context.Context, userID uuid.UUID, restaurantID int64) error
	List(ctx context.Context, restaurantID int64, page int) (models.Page[models.Review], error)
}

type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CustomerAddress, error)
	Create(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.CustomerAddress, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

type UserService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*services.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*services.AuthResult, error)
}

type DriverService interface {
	Register(ctx context.Context, userID uuid.UUID, req models.DriverRegisterRequest) (*models.Driver, error)
	Approve(ctx context.Context, id int64) (*models.Driver, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, req models.DriverStatusRequest) (*models.Driver, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services is everything the handlers call into.
type Services struct {
	Orders      OrderService
	Restaurants RestaurantService
	Reviews     ReviewService
	Addresses   AddressService
	Users       UserService
	Drivers     DriverService
	Health      Pinger
}

var svc Services

// SetServices wires the handlers to their services. Call it once before
// serving.
func SetServices(s Services) {
	svc = s
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.HandleAppError(w, zerolog.Ctx(r.Context()), err)
}

func message(w http.ResponseWriter, msg string) {
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": msg,
	})
}

// pathID reads a numeric path parameter. Anything that is not a positive
// integer cannot name a row.
func pathID(r *http.Request, name, notFound string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(notFound)
	}
	return id, nil
}

// actor returns the authenticated caller. Routes behind Authenticate always
// have one.
func actor(r *http.Request) (services.Actor, error) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return services.Actor{}, apperr.Unauthenticated("Unauthenticated.")
	}
	return services.Actor{UserID: id.UserID, Roles: id.Roles}, nil
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return models.NormalizePage(page)
}

// queryBool accepts the usual HTML form spellings of true.
func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
