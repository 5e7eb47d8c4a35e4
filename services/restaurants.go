package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fooddelivery/apperr"
	"fooddelivery/models"
	"fooddelivery/validation"
)

type RestaurantStore interface {
	DiscoverRestaurants(ctx context.Context, f models.DiscoveryFilter) (models.Page[models.RestaurantListing], error)
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context, page, perPage int) (models.Page[models.Restaurant], error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	UpdateRestaurant(ctx context.Context, id int64, req models.RestaurantRequest) (*models.Restaurant, error)
	SoftDeleteRestaurant(ctx context.Context, id int64) (bool, error)
	ListMenu(ctx context.Context, restaurantID int64, availableOnly bool) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, it *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, id int64, req models.MenuItemRequest) (*models.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, id int64) (bool, error)
	AddFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error
	RemoveFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error
}

type RestaurantService struct {
	store RestaurantStore
	log   zerolog.Logger
}

func NewRestaurantService(store RestaurantStore, log zerolog.Logger) *RestaurantService {
	return &RestaurantService{store: store, log: log}
}

// Discover lists visible restaurants for f. A favorites-only listing needs a
// requester.
func (s *RestaurantService) Discover(ctx context.Context, f models.DiscoveryFilter) (models.Page[models.RestaurantListing], error) {
	if f.FavoritesOnly && f.Requester == nil {
		return models.Page[models.RestaurantListing]{}, apperr.Unauthenticated("Sign in to list your favorite restaurants.")
	}
	if f.PerPage <= 0 {
		f.PerPage = models.RestaurantAPIPageSize
	}
	f.Page = models.NormalizePage(f.Page)
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	if len(f.Tags) > 0 {
		f.Tags = normalizeTags(f.Tags)
	}
	return s.store.DiscoverRestaurants(ctx, f)
}

// RestaurantDetail is a restaurant with its orderable menu.
type RestaurantDetail struct {
	*models.Restaurant
	Menu []models.MenuItem `json:"menu"`
}

func (s *RestaurantService) Get(ctx context.Context, id int64) (*RestaurantDetail, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsActive {
		return nil, apperr.NotFound("Restaurant not found.")
	}
	menu, err := s.store.ListMenu(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return &RestaurantDetail{Restaurant: r, Menu: menu}, nil
}

// AdminList includes inactive restaurants.
func (s *RestaurantService) AdminList(ctx context.Context, page int) (models.Page[models.Restaurant], error) {
	return s.store.ListRestaurants(ctx, page, models.RestaurantViewPageSize)
}

func (s *RestaurantService) Create(ctx context.Context, req models.RestaurantRequest) (*models.Restaurant, error) {
	if err := validation.Restaurant(&req, true); err != nil {
		return nil, err
	}
	r := &models.Restaurant{
		OwnerID:      req.OwnerID,
		Name:         strings.TrimSpace(*req.Name),
		Email:        deref(req.Email, ""),
		Phone:        deref(req.Phone, ""),
		CuisineType:  deref(req.CuisineType, ""),
		OpeningTime:  deref(req.OpeningTime, "09:00"),
		ClosingTime:  deref(req.ClosingTime, "22:00"),
		DeliveryTime: deref(req.DeliveryTime, 30),
		MinimumOrder: deref(req.MinimumOrder, decimal.Zero),
		DeliveryFee:  deref(req.DeliveryFee, decimal.Zero),
		IsActive:     deref(req.IsActive, true),
		IsOpen:       deref(req.IsOpen, true),
		IsFeatured:   deref(req.IsFeatured, false),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Tags:         pq.StringArray(normalizeTags(req.Tags)),
		PriceRange:   deref(req.PriceRange, "$$"),
	}
	if err := s.store.CreateRestaurant(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Int64("restaurant_id", r.ID).Str("name", r.Name).Msg("restaurant created")
	return r, nil
}

func (s *RestaurantService) Update(ctx context.Context, id int64, req models.RestaurantRequest) (*models.Restaurant, error) {
	if err := validation.Restaurant(&req, false); err != nil {
		return nil, err
	}
	if req.Tags != nil {
		req.Tags = normalizeTags(req.Tags)
	}
	return s.store.UpdateRestaurant(ctx, id, req)
}

func (s *RestaurantService) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.SoftDeleteRestaurant(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Restaurant not found.")
	}
	s.log.Info().Int64("restaurant_id", id).Msg("restaurant deleted")
	return nil
}

func (s *RestaurantService) CreateMenuItem(ctx context.Context, restaurantID int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	if err := validation.MenuItem(&req, true); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	it := &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(*req.Name),
		Description:  deref(req.Description, ""),
		Price:        *req.Price,
		IsAvailable:  deref(req.IsAvailable, true),
	}
	if err := s.store.CreateMenuItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *RestaurantService) UpdateMenuItem(ctx context.Context, id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	if err := validation.MenuItem(&req, false); err != nil {
		return nil, err
	}
	return s.store.UpdateMenuItem(ctx, id, req)
}

func (s *RestaurantService) DeleteMenuItem(ctx context.Context, id int64) error {
	ok, err := s.store.SoftDeleteMenuItem(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Menu item not found.")
	}
	return nil
}

// AddFavorite is idempotent. Only visible restaurants can be favorited.
func (s *RestaurantService) AddFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	if !r.IsActive {
		return apperr.NotFound("Restaurant not found.")
	}
	return s.store.AddFavorite(ctx, userID, restaurantID)
}

func (s *RestaurantService) RemoveFavorite(ctx context.Context, userID uuid.UUID, restaurantID int64) error {
	return s.store.RemoveFavorite(ctx, userID, restaurantID)
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
