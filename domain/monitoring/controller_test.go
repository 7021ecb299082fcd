package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	values  map[string]string
	pingErr error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryCache) Ping(context.Context) error {
	return m.pingErr
}

type fixedCounter int

func (f fixedCounter) Count() int {
	return int(f)
}

func newHealthRouter(t *testing.T, cache Cache, sessions SessionCounter) *router.RouterService {
	t.Helper()
	t.Setenv("METRICS_ENABLED", "false")

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	t.Cleanup(rs.Cleanup)

	rs.MountController(NewMonitoringControllerFactory(logger, cache, sessions).CreateController())
	return rs
}

func getHealth(rs *router.RouterService) *httptest.ResponseRecorder {
	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func healthOf(t *testing.T, cache Cache, sessions SessionCounter) HealthStatus {
	t.Helper()

	w := getHealth(newHealthRouter(t, cache, sessions))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestHealth_WithoutCache(t *testing.T) {
	status := healthOf(t, nil, fixedCounter(3))

	assert.Equal(t, 0, status.Cache)
	assert.Equal(t, 3, status.Sessions)
	assert.GreaterOrEqual(t, status.Uptime, 0)
}

func TestHealth_CacheProbeRoundTrip(t *testing.T) {
	cache := newMemoryCache()

	status := healthOf(t, cache, nil)

	assert.Equal(t, 1, status.Cache)
	assert.Equal(t, 0, status.Sessions)
	require.Len(t, cache.deleted, 1)
	assert.Contains(t, cache.deleted[0], "health:probe:")
	assert.Empty(t, cache.values)
}

func TestHealth_CachePingFails(t *testing.T) {
	cache := newMemoryCache()
	cache.pingErr = errors.New("connection refused")

	status := healthOf(t, cache, fixedCounter(0))

	assert.Equal(t, 0, status.Cache)
	assert.Empty(t, cache.deleted)
}

func TestHealth_ControllerRateLimit(t *testing.T) {
	rs := newHealthRouter(t, nil, nil)

	for i := 0; i < healthRequestsPerMinute; i++ {
		w := getHealth(rs)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	}

	w := getHealth(rs)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
