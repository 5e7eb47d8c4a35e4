package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fooddelivery/models"
)

// UpsertReview writes the user's single review of a restaurant, replacing
// the previous one if present.
func UpsertReview(ctx context.Context, q sqlx.QueryerContext, r *models.Review) error {
	b := QB.Insert("reviews").
		Columns("restaurant_id", "user_id", "rating", "comment", "is_verified").
		Values(r.RestaurantID, r.UserID, r.Rating, r.Comment, r.IsVerified).
		Suffix(`ON CONFLICT (restaurant_id, user_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			is_verified = EXCLUDED.is_verified,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`)
	return insertReturning(ctx, q, b, &r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func DeleteReview(ctx context.Context, q sqlx.ExecerContext, restaurantID int64, userID uuid.UUID) (bool, error) {
	n, err := exec(ctx, q, QB.Delete("reviews").
		Where(squirrel.Eq{"restaurant_id": restaurantID, "user_id": userID}))
	return n > 0, err
}

// ListReviews pages a restaurant's reviews, newest first.
func ListReviews(ctx context.Context, q sqlx.QueryerContext, restaurantID int64, page, perPage int) (models.Page[models.Review], error) {
	page = models.NormalizePage(page)

	var total int64
	count := QB.Select("COUNT(*)").From("reviews").Where(squirrel.Eq{"restaurant_id": restaurantID})
	if err := get(ctx, q, &total, count, "no reviews"); err != nil {
		return models.Page[models.Review]{}, err
	}

	var rows []models.Review
	if total > 0 {
		b := QB.Select("rv.id", "rv.restaurant_id", "rv.user_id", "u.name AS user_name",
			"rv.rating", "rv.comment", "rv.is_verified", "rv.created_at", "rv.updated_at").
			From("reviews rv").
			Join("users u ON u.id = rv.user_id").
			Where(squirrel.Eq{"rv.restaurant_id": restaurantID}).
			OrderBy("rv.created_at DESC", "rv.id DESC").
			Limit(uint64(perPage)).
			Offset(models.Offset(page, perPage))
		if err := selectAll(ctx, q, &rows, b); err != nil {
			return models.Page[models.Review]{}, err
		}
	}
	return models.NewPage(rows, page, perPage, total), nil
}

// AddFavorite is idempotent.
func AddFavorite(ctx context.Context, q sqlx.ExecerContext, userID uuid.UUID, restaurantID int64) error {
	_, err := exec(ctx, q, QB.Insert("favorite_restaurants").
		Columns("user_id", "restaurant_id").
		Values(userID, restaurantID).
		Suffix("ON CONFLICT (user_id, restaurant_id) DO NOTHING"))
	return err
}

func RemoveFavorite(ctx context.Context, q sqlx.ExecerContext, userID uuid.UUID, restaurantID int64) error {
	_, err := exec(ctx, q, QB.Delete("favorite_restaurants").
		Where(squirrel.Eq{"user_id": userID, "restaurant_id": restaurantID}))
	return err
}
