package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Streams     RedisStreamsConfig
	Cache       CacheConfig
	Log         LogConfig
	Overpass    OverpassConfig
	Acquisition AcquisitionConfig
	Upload      UploadConfig
	Worker      WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CorsOrigins string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStreamsConfig points at the Redis instance carrying acquisition jobs.
// Unset fields inherit from RedisConfig.
type RedisStreamsConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	OverpassCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

// OverpassConfig holds the remote endpoint list and the retry policy.
type OverpassConfig struct {
	URLs              []string
	MaxRetries        int
	BaseTimeout       time.Duration
	TimeoutStep       time.Duration
	BackoffBase       time.Duration
	RateLimitCooldown time.Duration
}

type AcquisitionConfig struct {
	CategoryDelay time.Duration
	MaxDistanceKm float64
	DedupRadiusKm float64
}

type UploadConfig struct {
	MaxFileSizeBytes int64
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	MaxRetries    int
}

var defaultOverpassURLs = []string{
	"https://overpass-api.de/api/interpreter",
	"http://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional, the process environment is enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("API_HOST"),
			Port:        viper.GetInt("API_PORT"),
			Env:         viper.GetString("API_ENV"),
			CorsOrigins: viper.GetString("CORS_ALLOWED_ORIGINS"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Streams: RedisStreamsConfig{
			Host:     viper.GetString("REDIS_STREAMS_HOST"),
			Port:     viper.GetInt("REDIS_STREAMS_PORT"),
			Password: viper.GetString("REDIS_STREAMS_PASSWORD"),
			DB:       viper.GetInt("REDIS_STREAMS_DB"),
		},
		Cache: CacheConfig{
			OverpassCacheTTL: time.Duration(viper.GetInt("OVERPASS_CACHE_TTL_SEC")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Overpass: OverpassConfig{
			URLs:              parseList(viper.GetString("OVERPASS_URLS")),
			MaxRetries:        viper.GetInt("OVERPASS_MAX_RETRIES"),
			BaseTimeout:       time.Duration(viper.GetInt("OVERPASS_BASE_TIMEOUT_SEC")) * time.Second,
			TimeoutStep:       time.Duration(viper.GetInt("OVERPASS_TIMEOUT_STEP_SEC")) * time.Second,
			BackoffBase:       time.Duration(viper.GetInt("OVERPASS_BACKOFF_BASE_MS")) * time.Millisecond,
			RateLimitCooldown: time.Duration(viper.GetInt("OVERPASS_RATE_LIMIT_COOLDOWN_SEC")) * time.Second,
		},
		Acquisition: AcquisitionConfig{
			CategoryDelay: time.Duration(viper.GetInt("ACQUISITION_CATEGORY_DELAY_MS")) * time.Millisecond,
			MaxDistanceKm: viper.GetFloat64("ACQUISITION_MAX_DISTANCE_KM"),
			DedupRadiusKm: viper.GetFloat64("ACQUISITION_DEDUP_RADIUS_KM"),
		},
		Upload: UploadConfig{
			MaxFileSizeBytes: int64(viper.GetFloat64("UPLOAD_MAX_FILE_SIZE_MB") * 1024 * 1024),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills every zero value that has a sensible production default.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.CorsOrigins == "" {
		c.Server.CorsOrigins = "*"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Streams.Host == "" {
		c.Streams.Host = c.Redis.Host
	}
	if c.Streams.Port == 0 {
		c.Streams.Port = c.Redis.Port
	}
	if c.Streams.Password == "" {
		c.Streams.Password = c.Redis.Password
	}
	if c.Cache.OverpassCacheTTL == 0 {
		c.Cache.OverpassCacheTTL = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.Overpass.URLs) == 0 {
		c.Overpass.URLs = append([]string(nil), defaultOverpassURLs...)
	}
	if c.Overpass.MaxRetries == 0 {
		c.Overpass.MaxRetries = 3
	}
	if c.Overpass.BaseTimeout == 0 {
		c.Overpass.BaseTimeout = 45 * time.Second
	}
	if c.Overpass.TimeoutStep == 0 {
		c.Overpass.TimeoutStep = 15 * time.Second
	}
	if c.Overpass.BackoffBase == 0 {
		c.Overpass.BackoffBase = time.Second
	}
	if c.Overpass.RateLimitCooldown == 0 {
		c.Overpass.RateLimitCooldown = 5 * time.Second
	}
	if c.Acquisition.CategoryDelay == 0 {
		c.Acquisition.CategoryDelay = 750 * time.Millisecond
	}
	if c.Acquisition.MaxDistanceKm == 0 {
		c.Acquisition.MaxDistanceKm = 1.0
	}
	if c.Acquisition.DedupRadiusKm == 0 {
		c.Acquisition.DedupRadiusKm = 1.0
	}
	if c.Upload.MaxFileSizeBytes == 0 {
		c.Upload.MaxFileSizeBytes = 2 * 1024 * 1024
	}
	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "route-acquisition-workers"
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
