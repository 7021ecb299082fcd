package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/akeren/logfox/internal/log"
	apperrors "github.com/akeren/logfox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func mountTestController(rs *RouterService) {
	ctrl := NewRESTController("TestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "ok")
		})

		rs.AddPostHandler(c, nil, "echo", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})
	})

	rs.MountController(ctrl)
}

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	return CreateRouterService(logger, nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
}

func TestTrustedProxies_DisabledByDefault(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code    int    `json:"code"`
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Data != "10.0.0.2" {
		t.Fatalf("expected ClientIP to use RemoteAddr when trusted proxies disabled; got %q", resp.Data)
	}
}

func TestTrustedProxies_StarTrustsForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "*")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code    int    `json:"code"`
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Data != "1.1.1.1" {
		t.Fatalf("expected ClientIP to use X-Forwarded-For when trusted proxies enabled; got %q", resp.Data)
	}
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountTestController(rs)

	body := bytes.Repeat([]byte{'a'}, 50)
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
}

func serve(rs *RouterService, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.9:4321"
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func TestPageHandler_RendersHTML(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)

	rs.MountController(NewRESTController("PageController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddPageHandler(c, nil, "", func(ctx *RequestContext) *PageResult {
			return &PageResult{StatusCode: http.StatusAccepted, Node: h.P(g.Text("hello <world>"))}
		})
		rs.AddPageHandler(c, nil, "broken", func(ctx *RequestContext) *PageResult {
			return nil
		})
	}))

	w := serve(rs, http.MethodGet, "/")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "<p>hello &lt;world&gt;</p>", w.Body.String())

	assert.Equal(t, http.StatusInternalServerError, serve(rs, http.MethodGet, "/broken").Code)
}

func TestAssetHandler_ServesFilesOnly(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)

	assets := fstest.MapFS{
		"app.css":     {Data: []byte("body{}")},
		"js/index.js": {Data: []byte("console.log(1)")},
	}
	rs.MountController(NewRESTController("AssetController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddAssetHandler(c, nil, "assets", http.FS(assets))
	}))

	css := serve(rs, http.MethodGet, "/assets/app.css")
	require.Equal(t, http.StatusOK, css.Code)
	assert.Equal(t, "body{}", css.Body.String())
	assert.Equal(t, "public, max-age=3600", css.Header().Get("Cache-Control"))

	head := serve(rs, http.MethodHead, "/assets/js/index.js")
	assert.Equal(t, http.StatusOK, head.Code)

	assert.Equal(t, http.StatusNotFound, serve(rs, http.MethodGet, "/assets/js/").Code)
	assert.Equal(t, http.StatusNotFound, serve(rs, http.MethodGet, "/assets/nope.css").Code)
}

func TestRateLimit_HandlerOverridesAreScoped(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)
	t.Cleanup(rs.Cleanup)

	rs.MountController(NewRESTController("LimitedController", "/", func(rs *RouterService, c *RESTController) {
		ok := func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "ok") }
		rs.AddGetHandler(c, rs.NewRateLimiter(1, time.Minute), "first", ok)
		rs.AddGetHandler(c, rs.NewRateLimiter(1, time.Minute), "second", ok)
	}))

	assert.Equal(t, http.StatusOK, serve(rs, http.MethodGet, "/first").Code)
	assert.Equal(t, http.StatusOK, serve(rs, http.MethodGet, "/second").Code)

	limited := serve(rs, http.MethodGet, "/first")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
}

func TestRateLimit_ControllerOverrideIsSharedByItsHandlers(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)
	t.Cleanup(rs.Cleanup)

	rs.MountController(NewRESTController("SharedController", "/shared", func(rs *RouterService, c *RESTController) {
		c.RateLimitWith(rs, rs.NewRateLimiter(2, time.Minute))

		ok := func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "ok") }
		rs.AddGetHandler(c, nil, "a", ok)
		rs.AddGetHandler(c, nil, "b", ok)
		rs.AddGetHandler(c, rs.NewRateLimiter(5, time.Minute), "own", ok)
	}))

	assert.Equal(t, http.StatusOK, serve(rs, http.MethodGet, "/shared/a").Code)
	assert.Equal(t, http.StatusOK, serve(rs, http.MethodGet, "/shared/b").Code)

	limited := serve(rs, http.MethodGet, "/shared/a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))

	own := serve(rs, http.MethodGet, "/shared/own")
	assert.Equal(t, http.StatusOK, own.Code)
	assert.Equal(t, "5", own.Header().Get("X-RateLimit-Limit"))
}

func TestMetricsRegisterer(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	assert.Nil(t, newTestRouterService(t).MetricsRegisterer())

	t.Setenv("METRICS_ENABLED", "true")
	rs := newTestRouterService(t)
	require.NotNil(t, rs.MetricsRegisterer())

	assert.Equal(t, http.StatusOK, serve(rs, http.MethodGet, "/metrics").Code)
}

func TestParseUUIDParamAndAppErrorResult(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)

	rs.MountController(NewRESTController("ThingController", "/things", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, ":id", func(ctx *RequestContext) *ServiceResult {
			id, failure := ParseUUIDParam(ctx, "id")
			if failure != nil {
				return failure
			}
			return AppErrorResult(apperrors.NewNotFoundError("Thing "+id+" not found", nil))
		})
	}))

	assert.Equal(t, http.StatusBadRequest, serve(rs, http.MethodGet, "/things/42").Code)

	w := serve(rs, http.MethodGet, "/things/6F9619FF-8B86-D011-B42D-00C04FC964FF")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Thing 6f9619ff-8b86-d011-b42d-00c04fc964ff not found", resp.Message)
}
