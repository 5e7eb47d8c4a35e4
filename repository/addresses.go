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

var addressColumns = []string{
	"a.id", "a.unit_number", "a.street_number", "a.address_line1", "a.address_line2",
	"a.city", "a.region", "a.postal_code", "a.country_id", "c.code AS country_code",
}

// customerAddressColumns aliases the address columns so sqlx fills the
// nested Address struct.
var customerAddressColumns = []string{
	"ca.id", "ca.user_id", "ca.address_id", "ca.is_default", "ca.created_at",
	`a.id AS "address.id"`, `a.unit_number AS "address.unit_number"`,
	`a.street_number AS "address.street_number"`, `a.address_line1 AS "address.address_line1"`,
	`a.address_line2 AS "address.address_line2"`, `a.city AS "address.city"`,
	`a.region AS "address.region"`, `a.postal_code AS "address.postal_code"`,
	`a.country_id AS "address.country_id"`, `c.code AS "address.country_code"`,
}

func selectCustomerAddresses() squirrel.SelectBuilder {
	return QB.Select(customerAddressColumns...).
		From("customer_addresses ca").
		Join("addresses a ON a.id = ca.address_id").
		Join("countries c ON c.id = a.country_id")
}

// CountryIDByCode resolves an ISO alpha-2 code.
func CountryIDByCode(ctx context.Context, q sqlx.QueryerContext, code string) (int, error) {
	var id int
	b := QB.Select("id").From("countries").Where(squirrel.Eq{"code": strings.ToUpper(code)})
	if err := get(ctx, q, &id, b, "country"); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return 0, apperr.Field("country_code", "The selected country code is invalid.")
		}
		return 0, err
	}
	return id, nil
}

func GetAddress(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Address, error) {
	var a models.Address
	b := QB.Select(addressColumns...).
		From("addresses a").
		Join("countries c ON c.id = a.country_id").
		Where(squirrel.Eq{"a.id": id})
	if err := get(ctx, q, &a, b, "Address not found."); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetCustomerAddress loads the link only when userID owns it; anything else
// reads as not found.
func GetCustomerAddress(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID, id int64) (*models.CustomerAddress, error) {
	var ca models.CustomerAddress
	b := selectCustomerAddresses().Where(squirrel.Eq{"ca.id": id, "ca.user_id": userID})
	if err := get(ctx, q, &ca, b, "Address not found."); err != nil {
		return nil, err
	}
	return &ca, nil
}

func ListCustomerAddresses(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID) ([]models.CustomerAddress, error) {
	out := []models.CustomerAddress{}
	b := selectCustomerAddresses().
		Where(squirrel.Eq{"ca.user_id": userID}).
		OrderBy("ca.is_default DESC", "ca.id ASC")
	if err := selectAll(ctx, q, &out, b); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertAddress writes the physical address row.
func InsertAddress(ctx context.Context, q sqlx.QueryerContext, a *models.Address) error {
	b := QB.Insert("addresses").
		Columns("unit_number", "street_number", "address_line1", "address_line2",
			"city", "region", "postal_code", "country_id").
		Values(a.UnitNumber, a.StreetNumber, a.AddressLine1, a.AddressLine2,
			a.City, a.Region, a.PostalCode, a.CountryID).
		Suffix("RETURNING id")
	return insertReturning(ctx, q, b, &a.ID)
}

// InsertCustomerAddress links an address to its owner. A new default clears
// the previous one.
func InsertCustomerAddress(ctx context.Context, q sqlx.ExtContext, ca *models.CustomerAddress) error {
	if ca.IsDefault {
		if _, err := exec(ctx, q, QB.Update("customer_addresses").
			Set("is_default", false).
			Where(squirrel.Eq{"user_id": ca.UserID, "is_default": true})); err != nil {
			return err
		}
	}
	b := QB.Insert("customer_addresses").
		Columns("user_id", "address_id", "is_default").
		Values(ca.UserID, ca.AddressID, ca.IsDefault).
		Suffix("RETURNING id, created_at")
	return insertReturning(ctx, q, b, &ca.ID, &ca.CreatedAt)
}

// DeleteCustomerAddress removes the link and then the address row. Both
// statements must share a transaction; an order still delivering to the
// address fails the second delete with a foreign key violation.
func DeleteCustomerAddress(ctx context.Context, tx sqlx.ExtContext, userID uuid.UUID, id int64) error {
	var addressID int64
	b := QB.Select("address_id").
		From("customer_addresses").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("FOR UPDATE")
	if err := get(ctx, tx, &addressID, b, "Address not found."); err != nil {
		return err
	}

	if _, err := exec(ctx, tx, QB.Delete("customer_addresses").Where(squirrel.Eq{"id": id})); err != nil {
		return err
	}
	if _, err := exec(ctx, tx, QB.Delete("addresses").Where(squirrel.Eq{"id": addressID})); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return apperr.Conflict("The address is used by an existing order and cannot be deleted.", err)
		}
		return err
	}
	return nil
}
