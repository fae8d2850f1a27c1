package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"go.uber.org/zap"
)

// routeRepository keeps routes for the lifetime of the process.
type routeRepository struct {
	mu     sync.RWMutex
	routes map[string]*domain.Route
	logger *zap.Logger
}

func NewRouteRepository(logger *zap.Logger) repository.RouteRepository {
	return &routeRepository{
		routes: make(map[string]*domain.Route),
		logger: logger,
	}
}

// Store builds the route (and its spatial index) outside the lock; only the
// map insert is serialized.
func (r *routeRepository) Store(ctx context.Context, points []domain.Coordinate, source []byte, filename string) (*domain.Route, error) {
	id := uuid.NewString()

	route, err := domain.NewRoute(id, points, source, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build route: %w", err)
	}

	r.mu.Lock()
	r.routes[id] = route
	total := len(r.routes)
	r.mu.Unlock()

	r.logger.Info("Route stored",
		zap.String("route_id", id),
		zap.Int("points", route.Len()),
		zap.Float64("total_km", route.TotalLength()),
		zap.Int("routes", total))

	return route, nil
}

func (r *routeRepository) Get(ctx context.Context, id string) (*domain.Route, error) {
	r.mu.RLock()
	route, ok := r.routes[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrRouteNotFound, id)
	}
	return route, nil
}

func (r *routeRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}
