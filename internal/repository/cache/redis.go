package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mapahead-service/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dialTimeout = 5 * time.Second
	pingTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
)

// Redis wraps the client used for the Overpass response cache.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client, err := connect("redis", cfg.Host, cfg.Port, cfg.Password, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	return &Redis{
		client: client,
		logger: logger,
	}, nil
}

// NewRedisStreams connects to the instance carrying the acquisition job streams.
// Blocking XREADGROUP calls extend the read timeout on their own.
func NewRedisStreams(cfg *config.RedisStreamsConfig, logger *zap.Logger) (*redis.Client, error) {
	return connect("redis streams", cfg.Host, cfg.Port, cfg.Password, cfg.DB, logger)
}

func connect(name, host string, port int, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to %s at %s:%d: %w", name, host, port, err)
	}

	logger.Info("Redis connected",
		zap.String("name", name),
		zap.String("host", host),
		zap.Int("port", port),
		zap.Int("db", db),
	)

	return client, nil
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}

// Health pings the cache instance; used by the /health endpoint.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Client() *redis.Client {
	return r.client
}
