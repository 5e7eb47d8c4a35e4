package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("Order not found."))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestFromDB_ClassifiesSQLState(t *testing.T) {
	fk := &pq.Error{Code: "23503", Message: "violates foreign key constraint"}
	assert.ErrorIs(t, FromDB("insert line item", fk), ErrConflict)

	unique := &pq.Error{Code: "23505"}
	assert.ErrorIs(t, FromDB("insert", unique), ErrConflict)
	assert.True(t, IsUniqueViolation(fmt.Errorf("x: %w", unique)))

	syntax := &pq.Error{Code: "42601"}
	assert.Equal(t, KindInternal, KindOf(FromDB("select", syntax)))

	assert.NoError(t, FromDB("noop", nil))

	already := Forbidden("nope")
	assert.Same(t, already, FromDB("passthrough", already))
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, KindValidation.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}
