package repository

import (
	"context"
	"errors"

	"github.com/mapahead-service/internal/domain"
)

var ErrRouteNotFound = errors.New("route not found")

// RouteRepository is the process-scoped route registry.
// Stored routes are immutable, so only map access needs locking.
type RouteRepository interface {
	// Store builds a Route from points and registers it under a new id.
	Store(ctx context.Context, points []domain.Coordinate, source []byte, filename string) (*domain.Route, error)

	// Get returns ErrRouteNotFound for unknown ids.
	Get(ctx context.Context, id string) (*domain.Route, error)

	Count(ctx context.Context) int
}
