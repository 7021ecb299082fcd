package waitlist

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/logfox/config/router"
	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type controllerHarness struct {
	t      *testing.T
	engine http.Handler
	sink   *recordingSink
}

func newControllerHarness(t *testing.T) *controllerHarness {
	t.Helper()
	t.Setenv("METRICS_ENABLED", "false")

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	t.Cleanup(rs.Cleanup)

	sink := &recordingSink{}
	factory := NewWaitlistServiceFactory(Settings{ResetDelay: time.Hour}, logger, sink, rs.MetricsRegisterer())
	t.Cleanup(func() { _ = factory.CreateRepository().Close() })

	rs.MountController(factory.CreateController())

	return &controllerHarness{t: t, engine: rs.GetEngine(), sink: sink}
}

func (h *controllerHarness) do(method, path string, body any) (int, apiResponse) {
	h.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequestWithContext(context.Background(), method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (h *controllerHarness) view(resp apiResponse) DialogView {
	h.t.Helper()

	var view DialogView
	require.NoError(h.t, json.Unmarshal(resp.Data, &view))
	return view
}

func (h *controllerHarness) createSession() string {
	h.t.Helper()

	code, resp := h.do(http.MethodPost, "/v1/waitlist/sessions", nil)
	require.Equal(h.t, http.StatusCreated, code)
	return h.view(resp).SessionID
}

func TestWaitlistController_DraftKeepsNewestSequencedValue(t *testing.T) {
	h := newControllerHarness(t)
	id := h.createSession()
	base := "/v1/waitlist/sessions/" + id

	code, _ := h.do(http.MethodPost, base+"/open", OpenDialogRequest{Trigger: "header"})
	require.Equal(t, http.StatusOK, code)

	code, resp := h.do(http.MethodPatch, base+"/draft", `{"name":"Ada","email":"","seq":2}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", h.view(resp).Name)

	code, resp = h.do(http.MethodPatch, base+"/draft", `{"name":"Ad","email":"","seq":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", h.view(resp).Name)

	code, _ = h.do(http.MethodPost, base+"/dismiss", nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = h.do(http.MethodPost, base+"/open", OpenDialogRequest{Trigger: "cta"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", h.view(resp).Name)
}

func TestWaitlistController_FullFlow(t *testing.T) {
	h := newControllerHarness(t)
	id := h.createSession()
	base := "/v1/waitlist/sessions/" + id

	code, resp := h.do(http.MethodPost, base+"/open", OpenDialogRequest{Trigger: "hero"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "open_empty", h.view(resp).State)

	code, resp = h.do(http.MethodPatch, base+"/draft", map[string]string{"name": "Ada"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", h.view(resp).Name)

	code, resp = h.do(http.MethodPatch, base+"/draft", map[string]string{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "open_filled", h.view(resp).State)

	code, resp = h.do(http.MethodPost, base+"/submit", SubmitDraftRequest{Name: "Ada", Email: "ada@x.com"})
	require.Equal(t, http.StatusOK, code)
	view := h.view(resp)
	assert.Equal(t, "open_submitted", view.State)
	assert.True(t, view.IsSubmitted)
	assert.NotEmpty(t, view.ResetAt)

	signups := h.sink.all()
	require.Len(t, signups, 1)
	assert.Equal(t, models.Signup{SessionID: id, Name: "Ada", Email: "ada@x.com", SubmittedAt: signups[0].SubmittedAt}, signups[0])

	code, resp = h.do(http.MethodPost, base+"/dismiss", nil)
	require.Equal(t, http.StatusOK, code)
	view = h.view(resp)
	assert.Equal(t, "closed", view.State)
	assert.Empty(t, view.Name)
	assert.Empty(t, view.Email)

	code, resp = h.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "closed", h.view(resp).State)
}

func TestWaitlistController_SubmitValidation(t *testing.T) {
	h := newControllerHarness(t)
	id := h.createSession()
	base := "/v1/waitlist/sessions/" + id

	code, _ := h.do(http.MethodPost, base+"/open", OpenDialogRequest{Trigger: "cta"})
	require.Equal(t, http.StatusOK, code)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing name", map[string]string{"email": "ada@x.com"}, "name"},
		{"empty email", map[string]string{"name": "Ada", "email": ""}, "email"},
		{"malformed email", map[string]string{"name": "Ada", "email": "not-an-email"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := h.do(http.MethodPost, base+"/submit", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)

			var fieldErrors []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(resp.Data, &fieldErrors))
			require.NotEmpty(t, fieldErrors)
			assert.Equal(t, tt.field, fieldErrors[0].Field)
		})
	}

	code, resp := h.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "open_empty", h.view(resp).State)
	assert.Empty(t, h.sink.all())
}

func TestWaitlistController_RejectsBadInput(t *testing.T) {
	h := newControllerHarness(t)
	id := h.createSession()
	base := "/v1/waitlist/sessions/" + id

	t.Run("unknown trigger", func(t *testing.T) {
		code, resp := h.do(http.MethodPost, base+"/open", OpenDialogRequest{Trigger: "footer"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid request payload", resp.Message)
	})

	t.Run("malformed session id", func(t *testing.T) {
		code, _ := h.do(http.MethodGet, "/v1/waitlist/sessions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown session", func(t *testing.T) {
		code, _ := h.do(http.MethodPost, "/v1/waitlist/sessions/"+uuid.NewString()+"/open", OpenDialogRequest{Trigger: "hero"})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("draft while closed", func(t *testing.T) {
		code, _ := h.do(http.MethodPatch, base+"/draft", map[string]string{"name": "Ada"})
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("empty draft", func(t *testing.T) {
		code, _ := h.do(http.MethodPatch, base+"/draft", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("malformed json", func(t *testing.T) {
		code, resp := h.do(http.MethodPost, base+"/submit", "{not json")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid request body", resp.Message)
	})
}
