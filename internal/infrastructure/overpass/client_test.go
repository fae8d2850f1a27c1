package overpass

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mapahead-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleReply = `{"version":0.6,"elements":[
	{"type":"node","id":1,"lat":0.001,"lon":0.001,"tags":{"amenity":"fuel","name":"Aral"}},
	{"type":"way","id":2,"center":{"lat":5,"lon":5},"tags":{"amenity":"fuel"}}
]}`

func testConfig(urls ...string) *config.OverpassConfig {
	return &config.OverpassConfig{
		URLs:              urls,
		MaxRetries:        3,
		BaseTimeout:       2 * time.Second,
		TimeoutStep:       0,
		BackoffBase:       time.Millisecond,
		RateLimitCooldown: time.Millisecond,
	}
}

// countingServer replies with handler and counts the requests it receives.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClient_Query(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful request", func(t *testing.T) {
		var gotQuery, gotContentType string
		server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			gotQuery = r.PostForm.Get("data")
			gotContentType = r.Header.Get("Content-Type")
			assert.Equal(t, http.MethodPost, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleReply))
		})

		client := NewClient(testConfig(server.URL), logger)
		resp, err := client.Query(context.Background(), "[out:json];node(1,2,3,4);out center;")

		require.NoError(t, err)
		require.Len(t, resp.Elements, 2)
		assert.Equal(t, "Aral", resp.Elements[0].Tags["name"])
		assert.Equal(t, "[out:json];node(1,2,3,4);out center;", gotQuery)
		assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("rate limited everywhere", func(t *testing.T) {
		limited := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}
		first, firstCalls := countingServer(t, limited)
		second, secondCalls := countingServer(t, limited)

		client := NewClient(testConfig(first.URL, second.URL), logger)
		resp, err := client.Query(context.Background(), "q")

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, ErrConnection))
		assert.True(t, errors.Is(err, ErrRateLimited))
		assert.Equal(t, int32(3), atomic.LoadInt32(firstCalls))
		assert.Equal(t, int32(3), atomic.LoadInt32(secondCalls))
	})

	t.Run("bad request moves to next endpoint without retry", func(t *testing.T) {
		bad, badCalls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "parse error", http.StatusBadRequest)
		})
		good, goodCalls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleReply))
		})

		client := NewClient(testConfig(bad.URL, good.URL), logger)
		resp, err := client.Query(context.Background(), "q")

		require.NoError(t, err)
		assert.Len(t, resp.Elements, 2)
		assert.Equal(t, int32(1), atomic.LoadInt32(badCalls))
		assert.Equal(t, int32(1), atomic.LoadInt32(goodCalls))
	})

	t.Run("server error is retried on same endpoint", func(t *testing.T) {
		var n int32
		server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&n, 1) == 1 {
				w.WriteHeader(http.StatusGatewayTimeout)
				return
			}
			_, _ = w.Write([]byte(sampleReply))
		})

		client := NewClient(testConfig(server.URL), logger)
		resp, err := client.Query(context.Background(), "q")

		require.NoError(t, err)
		assert.Len(t, resp.Elements, 2)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	})

	t.Run("server error exhausts retries", func(t *testing.T) {
		server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		client := NewClient(testConfig(server.URL), logger)
		_, err := client.Query(context.Background(), "q")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrServer))
		assert.True(t, errors.Is(err, ErrConnection))
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("invalid JSON is not retried", func(t *testing.T) {
		server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>busy</html>"))
		})

		client := NewClient(testConfig(server.URL), logger)
		_, err := client.Query(context.Background(), "q")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidResponse))
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("timeout retries then fails over", func(t *testing.T) {
		slow, slowCalls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		})
		good, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleReply))
		})

		cfg := testConfig(slow.URL, good.URL)
		cfg.MaxRetries = 2
		cfg.BaseTimeout = 50 * time.Millisecond
		cfg.TimeoutStep = 10 * time.Millisecond

		client := NewClient(cfg, logger)
		resp, err := client.Query(context.Background(), "q")

		require.NoError(t, err)
		assert.Len(t, resp.Elements, 2)
		assert.Equal(t, int32(2), atomic.LoadInt32(slowCalls))
	})

	t.Run("timeout everywhere", func(t *testing.T) {
		slow, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		})

		cfg := testConfig(slow.URL)
		cfg.MaxRetries = 1
		cfg.BaseTimeout = 30 * time.Millisecond

		_, err := NewClient(cfg, logger).Query(context.Background(), "q")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout))
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		_, err := NewClient(testConfig(addr), logger).Query(context.Background(), "q")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConnection))
	})

	t.Run("oversized body moves to next endpoint", func(t *testing.T) {
		huge, hugeCalls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat(" ", 4096) + sampleReply))
		})
		good, goodCalls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleReply))
		})

		c := NewClient(testConfig(huge.URL, good.URL), logger).(*client)
		c.maxResponseBytes = 1024
		resp, err := c.Query(context.Background(), "q")

		require.NoError(t, err)
		assert.Len(t, resp.Elements, 2)
		assert.Equal(t, int32(1), atomic.LoadInt32(hugeCalls))
		assert.Equal(t, int32(1), atomic.LoadInt32(goodCalls))
	})

	t.Run("oversized body everywhere", func(t *testing.T) {
		huge, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat(" ", 4096) + sampleReply))
		})

		c := NewClient(testConfig(huge.URL), logger).(*client)
		c.maxResponseBytes = 1024
		_, err := c.Query(context.Background(), "q")

		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("no endpoints", func(t *testing.T) {
		_, err := NewClient(testConfig(), logger).Query(context.Background(), "q")
		assert.ErrorIs(t, err, ErrNoEndpoints)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		cfg := testConfig(server.URL)
		cfg.RateLimitCooldown = time.Minute
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := NewClient(cfg, logger).Query(ctx, "q")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})
}

func TestClient_AttemptTimeoutAndBackoff(t *testing.T) {
	c := NewClient(&config.OverpassConfig{
		URLs:              []string{"http://x"},
		MaxRetries:        3,
		BaseTimeout:       45 * time.Second,
		TimeoutStep:       15 * time.Second,
		BackoffBase:       time.Second,
		RateLimitCooldown: 5 * time.Second,
	}, zap.NewNop()).(*client)

	assert.Equal(t, 45*time.Second, c.attemptTimeout(0))
	assert.Equal(t, 60*time.Second, c.attemptTimeout(1))
	assert.Equal(t, 75*time.Second, c.attemptTimeout(2))

	tests := []struct {
		name    string
		err     error
		attempt int
		wait    time.Duration
		retry   bool
	}{
		{"timeout first attempt", ErrTimeout, 0, time.Second, true},
		{"timeout second attempt", ErrTimeout, 1, 2 * time.Second, true},
		{"timeout last attempt", ErrTimeout, 2, 0, false},
		{"rate limited", ErrRateLimited, 0, 5 * time.Second, true},
		{"server error", ErrServer, 1, 2 * time.Second, true},
		{"connection error", ErrConnection, 0, time.Second, true},
		{"bad request", ErrBadRequest, 0, 0, false},
		{"invalid response", ErrInvalidResponse, 0, 0, false},
		{"unexpected status", ErrUnexpectedReply, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wait, retry := c.nextAttempt(tt.err, tt.attempt)
			assert.Equal(t, tt.retry, retry)
			assert.Equal(t, tt.wait, wait)
		})
	}
}
