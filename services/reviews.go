package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fooddelivery/apperr"
	"fooddelivery/models"
	"fooddelivery/validation"
)

const ReviewPageSize = 10

type ReviewStore interface {
	SaveReview(ctx context.Context, r *models.Review) (*models.Restaurant, error)
	RemoveReview(ctx context.Context, restaurantID int64, userID uuid.UUID) (bool, error)
	ListReviews(ctx context.Context, restaurantID int64, page, perPage int) (models.Page[models.Review], error)
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
}

type ReviewService struct {
	store ReviewStore
	log   zerolog.Logger
}

func NewReviewService(store ReviewStore, log zerolog.Logger) *ReviewService {
	return &ReviewService{store: store, log: log}
}

// ReviewResult is the saved review plus the refreshed restaurant aggregate.
type ReviewResult struct {
	Review      *models.Review `json:"review"`
	Rating      float64        `json:"restaurant_rating"`
	ReviewCount int            `json:"review_count"`
}

// Save creates or replaces the user's review of a restaurant.
func (s *ReviewService) Save(ctx context.Context, userID uuid.UUID, restaurantID int64, req models.ReviewRequest) (*ReviewResult, error) {
	if err := validation.Review(&req); err != nil {
		return nil, err
	}
	r := &models.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	rest, err := s.store.SaveReview(ctx, r)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("restaurant_id", restaurantID).Int("rating", r.Rating).
		Bool("verified", r.IsVerified).Msg("review saved")
	return &ReviewResult{Review: r, Rating: rest.Rating, ReviewCount: rest.ReviewCount}, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID uuid.UUID, restaurantID int64) error {
	ok, err := s.store.RemoveReview(ctx, restaurantID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Review not found.")
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context, restaurantID int64, page int) (models.Page[models.Review], error) {
	if _, err := s.store.GetRestaurant(ctx, restaurantID); err != nil {
		return models.Page[models.Review]{}, err
	}
	return s.store.ListReviews(ctx, restaurantID, page, ReviewPageSize)
}
