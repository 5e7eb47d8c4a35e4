package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fooddelivery/geo"
	"fooddelivery/models"
)

// TrendingMinOrders is how many non-cancelled orders in the trending window
// make a restaurant trending.
const TrendingMinOrders = 5

var restaurantColumns = []string{
	"id", "owner_id", "address_id", "name", "email", "phone", "cuisine_type",
	"opening_time", "closing_time", "delivery_time", "minimum_order",
	"delivery_fee", "is_active", "is_open", "is_featured", "latitude",
	"longitude", "rating", "review_count", "tags", "price_range",
	"created_at", "updated_at", "deleted_at",
}

// discoveryBase is the visible set: active and not soft-deleted.
func discoveryBase(b squirrel.SelectBuilder, f models.DiscoveryFilter) squirrel.SelectBuilder {
	b = b.From("restaurants r").
		Where("r.is_active = TRUE").
		Where("r.deleted_at IS NULL")

	if f.FavoritesOnly {
		if f.Requester == nil {
			b = b.Where("FALSE")
		} else {
			b = b.Where(squirrel.Expr(
				"r.id IN (SELECT fr.restaurant_id FROM favorite_restaurants fr WHERE fr.user_id = ?)",
				*f.Requester))
		}
	}
	if f.Category != "" {
		b = b.Where(squirrel.Expr("LOWER(r.cuisine_type) = LOWER(?)", f.Category))
	}
	if f.PriceRange != "" {
		b = b.Where(squirrel.Eq{"r.price_range": f.PriceRange})
	}
	if f.OpenNow {
		b = b.Where("r.is_open = TRUE")
	}
	if len(f.Tags) > 0 {
		b = b.Where(squirrel.Expr("r.tags @> ?", pq.Array(f.Tags)))
	}
	if f.Search != "" {
		b = b.Where(squirrel.Expr("r.name ILIKE ?", containsPattern(f.Search)))
	}
	if f.Trending {
		b = b.Where(squirrel.Expr(`(SELECT COUNT(*) FROM food_orders fo
			JOIN order_statuses fs ON fs.id = fo.order_status_id
			WHERE fo.restaurant_id = r.id
			AND fo.order_datetime >= NOW() - INTERVAL '7 days'
			AND fs.name <> ?) >= ?`, string(models.StatusCancelled), TrendingMinOrders))
	}
	if f.Featured {
		b = b.Where("r.is_featured = TRUE")
	}
	return b
}

// discoveryOrder maps a sort key onto a whitelisted ORDER BY. Unknown keys and
// a distance sort without an origin fall back to rating.
func discoveryOrder(f models.DiscoveryFilter) string {
	switch f.Sort {
	case models.SortDeliveryTime:
		return "r.delivery_time ASC"
	case models.SortDistance:
		if f.Origin != nil {
			return "distance_km ASC NULLS LAST"
		}
	case models.SortPriceRange:
		return "r.price_range ASC"
	case models.SortReviewCount:
		return "r.review_count DESC"
	}
	return "r.rating DESC"
}

// BuildDiscoveryQuery returns the page query and the matching count query.
func BuildDiscoveryQuery(f models.DiscoveryFilter) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = models.RestaurantAPIPageSize
	}

	b := QB.Select(prefixed("r", restaurantColumns)...)
	if f.Requester != nil {
		b = b.Column("EXISTS (SELECT 1 FROM favorite_restaurants fav WHERE fav.restaurant_id = r.id AND fav.user_id = ?) AS is_favorite", *f.Requester)
	} else {
		b = b.Column("FALSE AS is_favorite")
	}
	if f.Origin != nil {
		b = b.Column("CASE WHEN r.latitude IS NULL OR r.longitude IS NULL THEN NULL ELSE "+
			geo.KmSQL("r.latitude", "r.longitude")+" END AS distance_km", geo.KmSQLArgs(*f.Origin)...)
	} else {
		b = b.Column("NULL::double precision AS distance_km")
	}

	b = discoveryBase(b, f).
		OrderBy(discoveryOrder(f), "r.id ASC").
		Limit(uint64(perPage)).
		Offset(models.Offset(f.Page, perPage))

	count := discoveryBase(QB.Select("COUNT(*)"), f)
	return b, count
}

// DiscoverRestaurants runs the discovery query and wraps the page.
func DiscoverRestaurants(ctx context.Context, q sqlx.QueryerContext, f models.DiscoveryFilter) (models.Page[models.RestaurantListing], error) {
	page := models.NormalizePage(f.Page)
	f.Page = page
	if f.PerPage <= 0 {
		f.PerPage = models.RestaurantAPIPageSize
	}
	list, count := BuildDiscoveryQuery(f)

	var total int64
	if err := get(ctx, q, &total, count, "no restaurants"); err != nil {
		return models.Page[models.RestaurantListing]{}, err
	}

	var rows []models.RestaurantListing
	if total > 0 {
		if err := selectAll(ctx, q, &rows, list); err != nil {
			return models.Page[models.RestaurantListing]{}, err
		}
	}
	return models.NewPage(rows, page, f.PerPage, total), nil
}

// GetRestaurant loads a visible restaurant.
func GetRestaurant(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Restaurant, error) {
	var r models.Restaurant
	b := QB.Select(restaurantColumns...).
		From("restaurants").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL")
	if err := get(ctx, q, &r, b, "Restaurant not found."); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRestaurantForUpdate locks the restaurant row for the rest of the
// transaction.
func GetRestaurantForUpdate(ctx context.Context, tx sqlx.QueryerContext, id int64) (*models.Restaurant, error) {
	var r models.Restaurant
	b := QB.Select(restaurantColumns...).
		From("restaurants").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		Suffix("FOR UPDATE")
	if err := get(ctx, tx, &r, b, "Restaurant not found."); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRestaurants is the admin listing: every non-deleted restaurant,
// active or not.
func ListRestaurants(ctx context.Context, q sqlx.QueryerContext, page, perPage int) (models.Page[models.Restaurant], error) {
	page = models.NormalizePage(page)

	var total int64
	count := QB.Select("COUNT(*)").From("restaurants").Where("deleted_at IS NULL")
	if err := get(ctx, q, &total, count, "no restaurants"); err != nil {
		return models.Page[models.Restaurant]{}, err
	}

	var rows []models.Restaurant
	b := QB.Select(restaurantColumns...).
		From("restaurants").
		Where("deleted_at IS NULL").
		OrderBy("id ASC").
		Limit(uint64(perPage)).
		Offset(models.Offset(page, perPage))
	if err := selectAll(ctx, q, &rows, b); err != nil {
		return models.Page[models.Restaurant]{}, err
	}
	return models.NewPage(rows, page, perPage, total), nil
}

// CreateRestaurant inserts r and fills its generated columns.
func CreateRestaurant(ctx context.Context, q sqlx.QueryerContext, r *models.Restaurant) error {
	if r.Tags == nil {
		r.Tags = pq.StringArray{}
	}
	b := QB.Insert("restaurants").
		Columns("owner_id", "name", "email", "phone", "cuisine_type", "opening_time",
			"closing_time", "delivery_time", "minimum_order", "delivery_fee", "is_active",
			"is_open", "is_featured", "latitude", "longitude", "tags", "price_range").
		Values(r.OwnerID, r.Name, r.Email, r.Phone, r.CuisineType, r.OpeningTime,
			r.ClosingTime, r.DeliveryTime, r.MinimumOrder, r.DeliveryFee, r.IsActive,
			r.IsOpen, r.IsFeatured, r.Latitude, r.Longitude, r.Tags, r.PriceRange).
		Suffix("RETURNING id, rating, review_count, created_at, updated_at")
	return insertReturning(ctx, q, b, &r.ID, &r.Rating, &r.ReviewCount, &r.CreatedAt, &r.UpdatedAt)
}

// UpdateRestaurant applies the non-nil fields of req.
func UpdateRestaurant(ctx context.Context, q sqlx.ExtContext, id int64, req models.RestaurantRequest) (*models.Restaurant, error) {
	set := map[string]interface{}{}
	if req.OwnerID != nil {
		set["owner_id"] = *req.OwnerID
	}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.CuisineType != nil {
		set["cuisine_type"] = *req.CuisineType
	}
	if req.OpeningTime != nil {
		set["opening_time"] = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		set["closing_time"] = *req.ClosingTime
	}
	if req.DeliveryTime != nil {
		set["delivery_time"] = *req.DeliveryTime
	}
	if req.MinimumOrder != nil {
		set["minimum_order"] = *req.MinimumOrder
	}
	if req.DeliveryFee != nil {
		set["delivery_fee"] = *req.DeliveryFee
	}
	if req.IsActive != nil {
		set["is_active"] = *req.IsActive
	}
	if req.IsOpen != nil {
		set["is_open"] = *req.IsOpen
	}
	if req.IsFeatured != nil {
		set["is_featured"] = *req.IsFeatured
	}
	if req.Latitude != nil {
		set["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		set["longitude"] = *req.Longitude
	}
	if req.Tags != nil {
		set["tags"] = pq.Array(req.Tags)
	}
	if req.PriceRange != nil {
		set["price_range"] = *req.PriceRange
	}

	if len(set) > 0 {
		set["updated_at"] = squirrel.Expr("NOW()")
		if _, err := exec(ctx, q, QB.Update("restaurants").
			SetMap(set).
			Where(squirrel.Eq{"id": id}).
			Where("deleted_at IS NULL")); err != nil {
			return nil, err
		}
	}
	return GetRestaurant(ctx, q, id)
}

// SoftDeleteRestaurant hides the restaurant from every listing. Orders and
// reviews keep pointing at the row.
func SoftDeleteRestaurant(ctx context.Context, q sqlx.ExecerContext, id int64) (bool, error) {
	n, err := exec(ctx, q, QB.Update("restaurants").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	return n > 0, err
}

// RecomputeRating refreshes the cached rating and review_count from the
// reviews table. Call it with the restaurant row locked.
func RecomputeRating(ctx context.Context, q sqlx.QueryerContext, restaurantID int64) (float64, int, error) {
	b := QB.Update("restaurants").
		Set("rating", squirrel.Expr("COALESCE((SELECT ROUND(AVG(rv.rating)::numeric, 1) FROM reviews rv WHERE rv.restaurant_id = ?), 0)", restaurantID)).
		Set("review_count", squirrel.Expr("(SELECT COUNT(*) FROM reviews rv WHERE rv.restaurant_id = ?)", restaurantID)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": restaurantID}).
		Suffix("RETURNING rating, review_count")

	var (
		rating float64
		count  int
	)
	if err := insertReturning(ctx, q, b, &rating, &count); err != nil {
		return 0, 0, err
	}
	return rating, count, nil
}
