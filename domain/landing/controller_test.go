package landing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/domain/waitlist"
	"github.com/akeren/logfox/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionIDPattern = regexp.MustCompile(`data-session-id="([0-9a-f-]{36})"`)

type landingHarness struct {
	engine     http.Handler
	repository waitlist.SessionRepository
}

func newLandingHarness(t *testing.T, maxSessions int) *landingHarness {
	t.Helper()
	t.Setenv("METRICS_ENABLED", "false")

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	t.Cleanup(rs.Cleanup)

	factory := waitlist.NewWaitlistServiceFactory(waitlist.Settings{MaxSessions: maxSessions}, logger, waitlist.NopSink{}, nil)
	repository := factory.CreateRepository()
	t.Cleanup(func() { _ = repository.Close() })

	rs.MountController(NewLandingController(Settings{SiteName: "LogFox"}, factory.CreateService()))
	rs.MountController(factory.CreateController())

	return &landingHarness{engine: rs.GetEngine(), repository: repository}
}

func (h *landingHarness) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func TestLandingPage_EachViewGetsAFreshSession(t *testing.T) {
	h := newLandingHarness(t, 0)

	first := h.get(t, "/")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "text/html; charset=utf-8", first.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", first.Header().Get("Cache-Control"))

	body := first.Body.String()
	assert.Equal(t, 3, strings.Count(body, "data-waitlist-trigger="))
	assert.Equal(t, 1, strings.Count(body, `role="dialog"`))

	firstID := sessionIDPattern.FindStringSubmatch(body)
	require.Len(t, firstID, 2)

	reload := h.get(t, "/")
	secondID := sessionIDPattern.FindStringSubmatch(reload.Body.String())
	require.Len(t, secondID, 2)

	assert.NotEqual(t, firstID[1], secondID[1])
	assert.Equal(t, 2, h.repository.Count())

	api := h.get(t, "/v1/waitlist/sessions/"+firstID[1])
	assert.Equal(t, http.StatusOK, api.Code)
}

func TestLandingPage_SessionCapStillRendersPage(t *testing.T) {
	h := newLandingHarness(t, 1)

	require.Equal(t, http.StatusOK, h.get(t, "/").Code)

	w := h.get(t, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Track Your Day.")
	assert.Contains(t, w.Body.String(), `data-session-id=""`)
}

func TestStaticAssets(t *testing.T) {
	h := newLandingHarness(t, 0)

	css := h.get(t, "/static/styles.css")
	assert.Equal(t, http.StatusOK, css.Code)
	assert.Contains(t, css.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=3600", css.Header().Get("Cache-Control"))

	js := h.get(t, "/static/js/waitlist.js")
	assert.Equal(t, http.StatusOK, js.Code)
	assert.Contains(t, js.Body.String(), "data-waitlist-trigger")

	assert.Equal(t, http.StatusNotFound, h.get(t, "/static/js/").Code)
	assert.Equal(t, http.StatusNotFound, h.get(t, "/static/missing.css").Code)
}
