// Package services holds the business rules. Handlers pass the caller's
// identity in explicitly; nothing here reads request state.
package services

import (
	"math"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Roles  []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
