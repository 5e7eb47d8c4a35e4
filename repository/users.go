package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fooddelivery/apperr"
	"fooddelivery/models"
)

var userColumns = []string{"id", "name", "email", "password", "phone", "created_at", "updated_at"}

// CreateUser inserts u. A taken email is reported as a validation error on
// the email field.
func CreateUser(ctx context.Context, q sqlx.QueryerContext, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	b := QB.Insert("users").
		Columns("id", "name", "email", "phone", "password").
		Values(u.ID, u.Name, strings.ToLower(u.Email), u.Phone, u.Password).
		Suffix("RETURNING created_at, updated_at")
	if err := insertReturning(ctx, q, b, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.Field("email", "The email has already been taken.")
		}
		return err
	}
	return nil
}

func GetUserByEmail(ctx context.Context, q sqlx.QueryerContext, email string) (*models.User, error) {
	var u models.User
	b := QB.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": strings.ToLower(email)})
	if err := get(ctx, q, &u, b, "User not found."); err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*models.User, error) {
	var u models.User
	b := QB.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id})
	if err := get(ctx, q, &u, b, "User not found."); err != nil {
		return nil, err
	}
	return &u, nil
}

// AssignRole grants a seeded role by name. Granting twice is a no-op.
func AssignRole(ctx context.Context, q sqlx.ExecerContext, userID uuid.UUID, role string) error {
	_, err := exec(ctx, q, QB.Insert("user_roles").
		Columns("user_id", "role_id").
		Values(userID, squirrel.Expr("(SELECT id FROM roles WHERE name = ?)", role)).
		Suffix("ON CONFLICT DO NOTHING"))
	return err
}

func GetUserRoles(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID) ([]string, error) {
	roles := []string{}
	b := QB.Select("r.name").
		From("user_roles ur").
		Join("roles r ON r.id = ur.role_id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("r.name ASC")
	if err := selectAll(ctx, q, &roles, b); err != nil {
		return nil, err
	}
	return roles, nil
}
