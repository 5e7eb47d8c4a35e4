package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"fooddelivery/models"
)

var menuItemColumns = []string{
	"id", "restaurant_id", "name", "description", "price", "is_available",
	"created_at", "updated_at", "deleted_at",
}

// ListMenu returns a restaurant's live menu. availableOnly hides items that
// are temporarily off.
func ListMenu(ctx context.Context, q sqlx.QueryerContext, restaurantID int64, availableOnly bool) ([]models.MenuItem, error) {
	b := QB.Select(menuItemColumns...).
		From("menu_items").
		Where(squirrel.Eq{"restaurant_id": restaurantID}).
		Where("deleted_at IS NULL").
		OrderBy("id ASC")
	if availableOnly {
		b = b.Where("is_available = TRUE")
	}

	items := []models.MenuItem{}
	if err := selectAll(ctx, q, &items, b); err != nil {
		return nil, err
	}
	return items, nil
}

// GetMenuItemsByIDs loads the non-deleted items among ids, keyed by id. Ids
// that do not exist are simply absent from the map.
func GetMenuItemsByIDs(ctx context.Context, q sqlx.QueryerContext, ids []int64) (map[int64]models.MenuItem, error) {
	out := make(map[int64]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []models.MenuItem
	b := QB.Select(menuItemColumns...).
		From("menu_items").
		Where(squirrel.Eq{"id": ids}).
		Where("deleted_at IS NULL")
	if err := selectAll(ctx, q, &items, b); err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func GetMenuItem(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.MenuItem, error) {
	var it models.MenuItem
	b := QB.Select(menuItemColumns...).
		From("menu_items").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL")
	if err := get(ctx, q, &it, b, "Menu item not found."); err != nil {
		return nil, err
	}
	return &it, nil
}

func CreateMenuItem(ctx context.Context, q sqlx.QueryerContext, it *models.MenuItem) error {
	b := QB.Insert("menu_items").
		Columns("restaurant_id", "name", "description", "price", "is_available").
		Values(it.RestaurantID, it.Name, it.Description, it.Price, it.IsAvailable).
		Suffix("RETURNING id, created_at, updated_at")
	return insertReturning(ctx, q, b, &it.ID, &it.CreatedAt, &it.UpdatedAt)
}

// UpdateMenuItem applies the non-nil fields of req. Price changes never touch
// placed orders, which keep their own unit_price.
func UpdateMenuItem(ctx context.Context, q sqlx.ExtContext, id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	set := map[string]interface{}{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.IsAvailable != nil {
		set["is_available"] = *req.IsAvailable
	}
	if len(set) > 0 {
		set["updated_at"] = squirrel.Expr("NOW()")
		if _, err := exec(ctx, q, QB.Update("menu_items").
			SetMap(set).
			Where(squirrel.Eq{"id": id}).
			Where("deleted_at IS NULL")); err != nil {
			return nil, err
		}
	}
	return GetMenuItem(ctx, q, id)
}

func SoftDeleteMenuItem(ctx context.Context, q sqlx.ExecerContext, id int64) (bool, error) {
	n, err := exec(ctx, q, QB.Update("menu_items").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("is_available", false).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	return n > 0, err
}
