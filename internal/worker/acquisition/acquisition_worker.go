package acquisition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"github.com/mapahead-service/internal/usecase"
	"github.com/mapahead-service/internal/worker"
	"go.uber.org/zap"
)

const (
	maxBatchSize   = 5               // acquisitions are slow, keep the batch small
	readBlock      = 5 * time.Second // XREADGROUP BLOCK
	errorPause     = time.Second
	publishBackoff = 500 * time.Millisecond
	workerName     = "route-acquisition"
)

// POIAcquirer runs one acquisition; satisfied by *usecase.AcquisitionUseCase.
type POIAcquirer interface {
	Acquire(ctx context.Context, route *domain.Route, req domain.AcquisitionRequest, sink usecase.EventSink) ([]domain.POI, error)
}

// RouteAcquisitionWorker - processes jobs from stream:route:acquire
type RouteAcquisitionWorker struct {
	*worker.BaseWorker
	streamRepo     repository.StreamRepository
	acquirer       POIAcquirer
	maxRetries     int
	publishBackoff time.Duration
}

func NewRouteAcquisitionWorker(
	streamRepo repository.StreamRepository,
	acquirer POIAcquirer,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *RouteAcquisitionWorker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RouteAcquisitionWorker{
		BaseWorker:     worker.NewBaseWorker(workerName, consumerGroup, logger),
		streamRepo:     streamRepo,
		acquirer:       acquirer,
		maxRetries:     maxRetries,
		publishBackoff: publishBackoff,
	}
}

// Start consumes jobs until Stop is called or ctx is cancelled. A job that is
// already running is finished before the worker returns.
func (w *RouteAcquisitionWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting route acquisition worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.String("stream", domain.StreamRouteAcquire))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamRouteAcquire, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		if _, err := w.processBatch(ctx); err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
			select {
			case <-time.After(errorPause):
			case <-w.StopChan():
			case <-ctx.Done():
			}
		}
	}
}

// processBatch reads up to maxBatchSize jobs and handles them one by one.
// It returns the number of messages read.
func (w *RouteAcquisitionWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamRouteAcquire,
		w.ConsumerGroup(),
		w.ConsumerName(),
		maxBatchSize,
		readBlock,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	for _, msg := range messages {
		if w.IsStopped() || ctx.Err() != nil {
			// unacked messages stay pending for the group
			break
		}
		w.handleMessage(ctx, msg)
	}

	return len(messages), nil
}

func (w *RouteAcquisitionWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	event, err := parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		// a malformed job would otherwise be redelivered forever
		w.ack(ctx, msg.ID)
		return
	}
	logger = logger.With(zap.String("request_id", event.RequestID.String()))

	result, err := w.acquire(ctx, event)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Acquisition interrupted, leaving job pending", zap.Error(err))
			return
		}
		logger.Warn("Acquisition failed", zap.Error(err))
		result = &domain.RoutePOIsEvent{
			RequestID: event.RequestID,
			POIs:      []domain.POI{},
			Error:     err.Error(),
		}
	}

	if err := w.publish(ctx, result); err != nil {
		logger.Error("Failed to publish result, leaving job pending", zap.Error(err))
		return
	}

	w.ack(ctx, msg.ID)

	logger.Info("Acquisition job processed",
		zap.Int("pois", len(result.POIs)),
		zap.Float64("total_km", result.TotalKm),
		zap.Bool("failed", result.Error != ""))
}

func (w *RouteAcquisitionWorker) acquire(ctx context.Context, event *domain.RouteAcquireEvent) (*domain.RoutePOIsEvent, error) {
	if !event.HasPoints() {
		return nil, domain.ErrEmptyRoute
	}

	route, err := domain.NewRoute(event.RequestID.String(), event.Points, nil, "")
	if err != nil {
		return nil, err
	}

	pois, err := w.acquirer.Acquire(ctx, route, event.ToRequest(), nil)
	if err != nil {
		return nil, err
	}

	return &domain.RoutePOIsEvent{
		RequestID: event.RequestID,
		TotalKm:   route.TotalLength(),
		POIs:      pois,
	}, nil
}

// publish retries with a linear backoff up to maxRetries attempts.
func (w *RouteAcquisitionWorker) publish(ctx context.Context, result *domain.RoutePOIsEvent) error {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * w.publishBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = w.streamRepo.PublishToStream(ctx, domain.StreamRoutePOIs, result)
		if lastErr == nil {
			return nil
		}
		w.Logger().Warn("Publish attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(lastErr))
	}
	return lastErr
}

func (w *RouteAcquisitionWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamRouteAcquire, w.ConsumerGroup(), id); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", id),
			zap.Error(err))
	}
}

var errEmptyPayload = errors.New("empty message payload")

func parseMessage(msg domain.StreamMessage) (*domain.RouteAcquireEvent, error) {
	if msg.Data == "" {
		return nil, errEmptyPayload
	}

	var event domain.RouteAcquireEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}
