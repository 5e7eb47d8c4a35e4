package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddelivery/apperr"
	"fooddelivery/models"
)

type stubIssuer struct {
	err   error
	roles []string
}

func (s *stubIssuer) IssueToken(userID uuid.UUID, roles []string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	s.roles = roles
	return "token-" + userID.String(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func TestSignupThenLogin(t *testing.T) {
	store := newFakeStore()
	issuer := &stubIssuer{}
	svc := NewUserService(store, issuer, zerolog.Nop())

	res, err := svc.Signup(context.Background(), models.SignupRequest{
		Name: "Ada", Email: "Ada@Example.com", Phone: "+4712345678", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.NotEqual(t, "correct horse", res.User.Password)
	assert.Equal(t, []string{models.RoleCustomer}, res.Roles)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Signup(context.Background(), models.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Phone: "+4712345678", Password: "correct horse",
	})
	appErr := requireKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Fields, "email")

	res, err = svc.Login(context.Background(), models.LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+res.User.ID.String(), res.Token)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "wrong password"})
	requireKind(t, err, apperr.KindUnauthenticated)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	requireKind(t, err, apperr.KindUnauthenticated)
}

func TestSignup_TokenFailureIsInternal(t *testing.T) {
	svc := NewUserService(newFakeStore(), &stubIssuer{err: errors.New("no key")}, zerolog.Nop())

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name: "Bo", Email: "bo@example.com", Phone: "555-0100", Password: "password123",
	})

	requireKind(t, err, apperr.KindInternal)
}

func TestBootstrapAdmin(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store, &stubIssuer{}, zerolog.Nop())

	require.NoError(t, svc.BootstrapAdmin(context.Background(), ""))
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "missing@example.com"))

	u := &models.User{Email: "root@example.com"}
	require.NoError(t, store.CreateUserWithRole(context.Background(), u, models.RoleCustomer))
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "root@example.com"))
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "root@example.com"))

	assert.Equal(t, []string{models.RoleCustomer, models.RoleAdmin}, store.roles[u.ID])
}

func TestReviews(t *testing.T) {
	store := newFakeStore()
	store.restaurants[1] = &models.Restaurant{ID: 1, IsActive: true}
	svc := NewReviewService(store, zerolog.Nop())
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.Save(context.Background(), alice, 1, models.ReviewRequest{Rating: 0})
	requireKind(t, err, apperr.KindValidation)

	_, err = svc.Save(context.Background(), alice, 1, models.ReviewRequest{Rating: 4})
	require.NoError(t, err)
	res, err := svc.Save(context.Background(), bob, 1, models.ReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ReviewCount)
	assert.InDelta(t, 4.5, res.Rating, 1e-9)

	res, err = svc.Save(context.Background(), alice, 1, models.ReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ReviewCount)

	_, err = svc.Save(context.Background(), alice, 9, models.ReviewRequest{Rating: 5})
	requireKind(t, err, apperr.KindNotFound)

	page, err := svc.List(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	require.NoError(t, svc.Delete(context.Background(), alice, 1))
	requireKind(t, svc.Delete(context.Background(), alice, 1), apperr.KindNotFound)
}

func TestAddresses(t *testing.T) {
	store := newFakeStore()
	svc := NewAddressService(store)
	user := uuid.New()

	_, err := svc.Create(context.Background(), user, models.AddressRequest{City: "Oslo"})
	appErr := requireKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Fields, "street_number")
	assert.Contains(t, appErr.Fields, "country_code")

	ca, err := svc.Create(context.Background(), user, models.AddressRequest{
		StreetNumber: "1", AddressLine1: "Karl Johans gate", City: "Oslo",
		Region: "Oslo", PostalCode: "0154", CountryCode: "no", IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "NO", ca.Address.CountryCode)

	list, err := svc.List(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	requireKind(t, svc.Delete(context.Background(), uuid.New(), ca.ID), apperr.KindNotFound)

	store.orders[1] = &models.Order{ID: 1, CustomerID: user, DeliveryAddressID: ca.AddressID}
	requireKind(t, svc.Delete(context.Background(), user, ca.ID), apperr.KindConflict)

	delete(store.orders, 1)
	require.NoError(t, svc.Delete(context.Background(), user, ca.ID))
}

func TestDrivers(t *testing.T) {
	store := newFakeStore()
	svc := NewDriverService(store, zerolog.Nop())
	user := uuid.New()

	_, err := svc.Register(context.Background(), user, models.DriverRegisterRequest{})
	requireKind(t, err, apperr.KindValidation)

	d, err := svc.Register(context.Background(), user, models.DriverRegisterRequest{VehicleType: "bike", VehiclePlate: "ab 123"})
	require.NoError(t, err)
	assert.Equal(t, "AB 123", d.VehiclePlate)
	assert.False(t, d.IsApproved)

	_, err = svc.Register(context.Background(), user, models.DriverRegisterRequest{VehicleType: "car", VehiclePlate: "XY 9"})
	requireKind(t, err, apperr.KindConflict)

	d, err = svc.Approve(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, d.IsApproved)
	assert.Contains(t, store.roles[user], models.RoleDriver)

	d, err = svc.UpdateStatus(context.Background(), user, models.DriverStatusRequest{
		IsAvailable: true, Latitude: ptr(59.91), Longitude: ptr(10.75),
	})
	require.NoError(t, err)
	assert.True(t, d.IsAvailable)
	assert.InDelta(t, 59.91, *d.Latitude, 1e-9)
}
