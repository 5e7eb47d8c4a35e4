package controllers

import (
	"net/http"
	"time"

	"github.com/go-michi/michi"
	"github.com/rs/zerolog"

	"fooddelivery/middleware"
	"fooddelivery/models"
)

// NewRouter builds the full route table. SetServices must have been called.
func NewRouter(auth *middleware.Auth, logger zerolog.Logger, timeout time.Duration) http.Handler {
	r := michi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger(logger), middleware.Timeout(timeout))

	r.HandleFunc("GET /health", Health)

	r.Route("/customer", func(sub *michi.Router) {
		sub.HandleFunc("POST /signup", Signup)
		sub.HandleFunc("POST /login", Login)
	})

	// Discovery and restaurant pages are public; a token only adds
	// per-user annotations.
	r.Group(func(sub *michi.Router) {
		sub.Use(auth.OptionalAuth)
		sub.HandleFunc("GET /api/restaurants", ListRestaurantsAPI)
		sub.HandleFunc("GET /restaurants", ListRestaurantsPage)
		sub.HandleFunc("GET /restaurants/{id}", GetRestaurant)
		sub.HandleFunc("GET /restaurants/{id}/reviews", ListReviews)
	})

	r.Group(func(sub *michi.Router) {
		sub.Use(auth.Authenticate)

		sub.HandleFunc("POST /restaurants/{id}/reviews", SaveReview)
		sub.HandleFunc("DELETE /restaurants/{id}/reviews", DeleteReview)
		sub.HandleFunc("POST /restaurants/{id}/favorite", AddFavorite)
		sub.HandleFunc("DELETE /restaurants/{id}/favorite", RemoveFavorite)

		sub.HandleFunc("POST /orders", CreateOrder)
		sub.HandleFunc("GET /orders", ListOrders)
		sub.HandleFunc("GET /orders/{id}", GetOrder)
		sub.HandleFunc("POST /orders/{id}/cancel", CancelOrder)
		sub.HandleFunc("PATCH /orders/{id}/status", UpdateOrderStatus)
		sub.HandleFunc("POST /orders/{id}/rate", RateOrder)
		sub.HandleFunc("GET /orders/{id}/driver-distance", DriverDistance)

		sub.HandleFunc("GET /addresses", ListAddresses)
		sub.HandleFunc("POST /addresses", CreateAddress)
		sub.HandleFunc("DELETE /addresses/{id}", DeleteAddress)
	})

	r.Route("/driver", func(sub *michi.Router) {
		sub.Use(auth.Authenticate)
		sub.HandleFunc("POST /register", RegisterDriver)
		sub.With(middleware.RequireRole(models.RoleDriver)).HandleFunc("PUT /status", UpdateDriverStatus)
	})

	r.Route("/admin", func(sub *michi.Router) {
		sub.Use(auth.Authenticate, middleware.RequireRole(models.RoleAdmin))
		sub.HandleFunc("GET /restaurants", AdminListRestaurants)
		sub.HandleFunc("POST /restaurants", AddRestaurant)
		sub.HandleFunc("PUT /restaurants/{id}", UpdateRestaurant)
		sub.HandleFunc("DELETE /restaurants/{id}", DeleteRestaurant)
		sub.HandleFunc("POST /restaurants/{id}/menu-items", AddMenuItem)
		sub.HandleFunc("PUT /menu-items/{id}", UpdateMenuItem)
		sub.HandleFunc("DELETE /menu-items/{id}", DeleteMenuItem)
		sub.HandleFunc("PUT /drivers/{id}/approve", ApproveDriver)
		sub.HandleFunc("POST /orders/{id}/driver", AssignDriver)
	})

	return r
}
