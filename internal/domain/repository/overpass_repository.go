package repository

import (
	"context"

	"github.com/mapahead-service/internal/domain"
)

// OverpassRepository runs an Overpass QL query against the remote API.
type OverpassRepository interface {
	Query(ctx context.Context, query string) (*domain.OverpassResponse, error)
}
