package repository

import (
	"context"
	"math"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddelivery/geo"
	"fooddelivery/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestBuildDiscoveryQuery_AnonymousDefaults(t *testing.T) {
	list, count := BuildDiscoveryQuery(models.DiscoveryFilter{Page: 1})

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FALSE AS is_favorite")
	assert.Contains(t, sql, "NULL::double precision AS distance_km")
	assert.Contains(t, sql, "r.is_active = TRUE")
	assert.Contains(t, sql, "r.deleted_at IS NULL")
	assert.Contains(t, sql, "ORDER BY r.rating DESC, r.id ASC")
	assert.Contains(t, sql, "LIMIT 8")
	assert.Contains(t, sql, "OFFSET 0")
	assert.Empty(t, args)

	csql, _, err := count.ToSql()
	require.NoError(t, err)
	assert.Contains(t, csql, "SELECT COUNT(*) FROM restaurants r")
	assert.NotContains(t, csql, "ORDER BY")
	assert.NotContains(t, csql, "LIMIT")
}

func TestBuildDiscoveryQuery_HugePageStaysInBigintRange(t *testing.T) {
	list, _ := BuildDiscoveryQuery(models.DiscoveryFilter{Page: math.MaxInt64 / 4, PerPage: models.RestaurantAPIPageSize})

	sql, _, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 8 OFFSET 7999992")
}

func TestBuildDiscoveryQuery_Filters(t *testing.T) {
	user := uuid.New()
	f := models.DiscoveryFilter{
		Requester:     &user,
		Category:      "Italian",
		PriceRange:    "$$",
		OpenNow:       true,
		Tags:          []string{"vegan", "halal"},
		FavoritesOnly: true,
		Search:        "50%_off",
		Trending:      true,
		Featured:      true,
		Sort:          models.SortReviewCount,
		Page:          3,
		PerPage:       models.RestaurantViewPageSize,
	}
	list, count := BuildDiscoveryQuery(f)

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "fav.user_id = $1) AS is_favorite")
	assert.Contains(t, sql, "fr.user_id = $2")
	assert.Contains(t, sql, "LOWER(r.cuisine_type) = LOWER($3)")
	assert.Contains(t, sql, "r.price_range = $4")
	assert.Contains(t, sql, "r.is_open = TRUE")
	assert.Contains(t, sql, "r.tags @> $5")
	assert.Contains(t, sql, "r.name ILIKE $6")
	assert.Contains(t, sql, "INTERVAL '7 days'")
	assert.Contains(t, sql, "r.is_featured = TRUE")
	assert.Contains(t, sql, "ORDER BY r.review_count DESC, r.id ASC")
	assert.Contains(t, sql, "LIMIT 12")
	assert.Contains(t, sql, "OFFSET 24")

	require.Len(t, args, 8)
	assert.Equal(t, user, args[0])
	assert.Equal(t, user, args[1])
	assert.Equal(t, "Italian", args[2])
	assert.Equal(t, `%50\%\_off%`, args[5])
	assert.Equal(t, "cancelled", args[6])
	assert.Equal(t, TrendingMinOrders, args[7])

	// The count query shares the filters but not the select-list argument.
	_, cargs, err := count.ToSql()
	require.NoError(t, err)
	assert.Len(t, cargs, 7)
}

func TestBuildDiscoveryQuery_FavoritesOnlyWithoutRequesterMatchesNothing(t *testing.T) {
	list, _ := BuildDiscoveryQuery(models.DiscoveryFilter{FavoritesOnly: true})
	sql, _, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "AND FALSE")
}

func TestBuildDiscoveryQuery_Sorting(t *testing.T) {
	origin := &geo.Point{Lat: 48.85, Lng: 2.35}
	tests := []struct {
		name   string
		sort   string
		origin *geo.Point
		want   string
	}{
		{"rating", models.SortRating, nil, "ORDER BY r.rating DESC, r.id ASC"},
		{"delivery time", models.SortDeliveryTime, nil, "ORDER BY r.delivery_time ASC, r.id ASC"},
		{"price range", models.SortPriceRange, nil, "ORDER BY r.price_range ASC, r.id ASC"},
		{"distance with origin", models.SortDistance, origin, "ORDER BY distance_km ASC NULLS LAST, r.id ASC"},
		{"distance without origin", models.SortDistance, nil, "ORDER BY r.rating DESC, r.id ASC"},
		{"unknown key", "name; DROP TABLE restaurants", nil, "ORDER BY r.rating DESC, r.id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, _ := BuildDiscoveryQuery(models.DiscoveryFilter{Sort: tt.sort, Origin: tt.origin})
			sql, _, err := list.ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, tt.want)
			assert.NotContains(t, sql, "DROP")
		})
	}
}

func TestBuildDiscoveryQuery_DistanceColumnBindsOrigin(t *testing.T) {
	origin := geo.Point{Lat: 40.7, Lng: -74.0}
	list, _ := BuildDiscoveryQuery(models.DiscoveryFilter{Origin: &origin})

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "AS distance_km")
	assert.Equal(t, geo.KmSQLArgs(origin), args)
}

func TestDiscoverRestaurants_EmptySkipsListQuery(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM restaurants r")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := DiscoverRestaurants(context.Background(), db, models.DiscoveryFilter{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.LastPage)
	assert.Equal(t, models.RestaurantAPIPageSize, page.PerPage)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscoverRestaurants_SecondPageOfTwenty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM restaurants r")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))
	rows := sqlmock.NewRows([]string{"id", "name", "is_favorite", "distance_km"})
	for i := 13; i <= 20; i++ {
		rows.AddRow(i, "Restaurant", false, nil)
	}
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 12 OFFSET 12")).WillReturnRows(rows)

	page, err := DiscoverRestaurants(context.Background(), db, models.DiscoveryFilter{
		Page:    2,
		PerPage: models.RestaurantViewPageSize,
	})

	require.NoError(t, err)
	assert.Len(t, page.Data, 8)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, int64(20), page.Total)
	assert.Equal(t, int64(13), page.Data[0].ID)
	assert.Nil(t, page.Data[0].DistanceKm)
	assert.NoError(t, mock.ExpectationsWereMet())
}
