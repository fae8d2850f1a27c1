package worker

import (
	"context"
)

// Worker - background Redis Stream consumer
type Worker interface {
	// Start blocks until the worker is stopped or ctx is cancelled.
	Start(ctx context.Context) error

	// Stop signals the worker to finish; safe to call more than once.
	Stop() error

	Name() string
}
