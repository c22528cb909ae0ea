package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-rpc-demo/internal/config"
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/deppfellow/go-rpc-demo/internal/handler"
	"github.com/deppfellow/go-rpc-demo/internal/middleware"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	s := server.New(config.Default(), &logger, nil)

	table := dispatch.NewTable()
	e, err := NewRouter(s, handler.NewHandlers(s, table), table)
	require.NoError(t, err)

	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRoutes(t *testing.T) {
	e := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "hello",
			method: http.MethodGet,
			target: "/hello",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Hello from Hono RPC!", body["message"])
				assert.Regexp(t, `^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3}Z$`, body["timestamp"])
			},
		},
		{
			name:   "greet",
			method: http.MethodGet,
			target: "/greet?name=World",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Hello, World!", body["greeting"])
			},
		},
		{
			name:   "echo",
			method: http.MethodPost,
			target: "/echo",
			body:   `{"message":"ping ✓","extra":1}`,
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "ping ✓", body["received"])
				assert.Equal(t, true, body["echoed"])
			},
		},
		{
			name:   "calculate add",
			method: http.MethodPost,
			target: "/calculate",
			body:   `{"a":5,"b":3,"operation":"add"}`,
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, 8.0, body["result"])
			},
		},
		{
			name:   "calculate divide by zero",
			method: http.MethodPost,
			target: "/calculate",
			body:   `{"a":5,"b":0,"operation":"divide"}`,
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body, "result")
				assert.Nil(t, body["result"])
			},
		},
		{
			name:   "status",
			method: http.MethodGet,
			target: "/status",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "healthy", body["status"])
				assert.Len(t, body["routes"], 5)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.target, tt.body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
			tt.check(t, decode[map[string]any](t, rec))
		})
	}
}

func TestRouteErrors(t *testing.T) {
	e := newTestRouter(t)

	t.Run("greet without name", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/greet", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, errs.CodeValidationFailed, body.Code)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "query", body.Errors[0].Channel)
		assert.Equal(t, "name", body.Errors[0].Field)
		assert.Equal(t, errs.ReasonRequired, body.Errors[0].Reason)
	})

	t.Run("calculate accumulates every field error", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/calculate", `{"a":"5","operation":"power"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		assert.ElementsMatch(t, []string{"a", "b", "operation"}, body.FieldNames())
	})

	t.Run("calculate bad operation", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/calculate", `{"a":5,"b":3,"operation":"power"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, errs.ReasonInvalidEnum, body.Errors[0].Reason)
		assert.Equal(t, "add | subtract | multiply | divide", body.Errors[0].Expected)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/echo", `{"message":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, errs.CodeMalformedJSON, body.Code)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "request body is not valid JSON", body.Errors[0].Message)
	})

	t.Run("number out of float range is a type error", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/calculate", `{"a":1e400,"b":1,"operation":"add"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "strconv")
		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, errs.CodeValidationFailed, body.Code)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "json", body.Errors[0].Channel)
		assert.Equal(t, "a", body.Errors[0].Field)
		assert.Equal(t, errs.ReasonInvalidType, body.Errors[0].Reason)
	})

	t.Run("echo rejects strings that cannot round trip", func(t *testing.T) {
		for name, payload := range map[string]string{
			"invalid utf-8":  "{\"message\":\"a\xffb\"}",
			"lone surrogate": `{"message":"\ud800"}`,
		} {
			rec := do(e, http.MethodPost, "/echo", payload)

			require.Equal(t, http.StatusBadRequest, rec.Code, name)
			body := decode[errs.HTTPError](t, rec)
			assert.Equal(t, errs.CodeMalformedJSON, body.Code, name)
			require.Len(t, body.Errors, 1, name)
			assert.Equal(t, errs.ReasonMalformedJSON, body.Errors[0].Reason, name)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/nonexistent", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decode[errs.HTTPError](t, rec).Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/echo", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Route not found", decode[errs.HTTPError](t, rec).Message)
	})

	t.Run("body over limit", func(t *testing.T) {
		big := `{"message":"` + strings.Repeat("x", 2<<20) + `"}`
		rec := do(e, http.MethodPost, "/echo", big)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/calculate", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestNewRouterRejectsDuplicateRoutes(t *testing.T) {
	logger := zerolog.Nop()
	s := server.New(config.Default(), &logger, nil)

	table := dispatch.NewTable()
	h := handler.NewHandlers(s, table)
	table.MustRegister(h.Status.Routes()...)

	_, err := NewRouter(s, h, table)
	assert.ErrorIs(t, err, dispatch.ErrDuplicateRoute)
}

func TestMiddlewareChainSkipsNewRelicWhenDisabled(t *testing.T) {
	logger := zerolog.Nop()
	s := server.New(config.Default(), &logger, nil)

	disabled := middleware.NewMiddlewares(s)
	require.False(t, disabled.Tracing.Enabled())
	assert.Len(t, middlewareChain(disabled), 7)

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("rpc-demo-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	enabled := &middleware.Middlewares{
		Global:          disabled.Global,
		ContextEnhancer: disabled.ContextEnhancer,
		Tracing:         middleware.NewTracingMiddleware(s, app),
	}
	require.True(t, enabled.Tracing.Enabled())
	assert.Len(t, middlewareChain(enabled), 9)
}
