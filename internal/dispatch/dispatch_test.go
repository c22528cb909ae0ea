package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/deppfellow/go-rpc-demo/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls int
	last  *Input
}

func (rec *recorder) handler(result any) HandlerFunc {
	return func(ctx context.Context, in *Input) (any, error) {
		rec.calls++
		rec.last = in
		return result, nil
	}
}

type failingJSON struct{}

func (failingJSON) MarshalJSON() ([]byte, error) {
	return nil, assert.AnError
}

func decodeError(t *testing.T, body []byte) errs.HTTPError {
	t.Helper()

	var httpErr errs.HTTPError
	require.NoError(t, json.Unmarshal(body, &httpErr))
	return httpErr
}

func TestRegister(t *testing.T) {
	rec := &recorder{}

	t.Run("rejects duplicates", func(t *testing.T) {
		table := NewTable()

		require.NoError(t, table.Register(Route{Method: "get", Path: "/hello", Handler: rec.handler("first")}))
		err := table.Register(Route{Method: http.MethodGet, Path: "/hello", Handler: rec.handler("second")})

		require.ErrorIs(t, err, ErrDuplicateRoute)
		require.Len(t, table.Routes(), 1)

		resp := table.Dispatch(context.Background(), http.MethodGet, "/hello", nil, nil)
		assert.Equal(t, `"first"`, string(resp.Body))
	})

	t.Run("same path different method is allowed", func(t *testing.T) {
		table := NewTable()

		require.NoError(t, table.Register(Route{Method: http.MethodGet, Path: "/x", Handler: rec.handler(1)}))
		require.NoError(t, table.Register(Route{Method: http.MethodPost, Path: "/x", Handler: rec.handler(2)}))
	})

	t.Run("rejects incomplete routes", func(t *testing.T) {
		table := NewTable()

		invalid := []Route{
			{Path: "/x", Handler: rec.handler(nil)},
			{Method: http.MethodGet, Path: "x", Handler: rec.handler(nil)},
			{Method: http.MethodGet, Path: "/x"},
			{Method: http.MethodGet, Path: "/x", Handler: rec.handler(nil), Schemas: map[validation.Channel]*validation.Schema{
				"form": validation.Object(validation.String("a")),
			}},
			{Method: http.MethodGet, Path: "/x", Handler: rec.handler(nil), Schemas: map[validation.Channel]*validation.Schema{
				validation.ChannelQuery: nil,
			}},
		}

		for _, r := range invalid {
			assert.ErrorIs(t, table.Register(r), ErrInvalidRoute, r.String())
		}
		assert.Empty(t, table.Routes())
	})

	t.Run("must register panics", func(t *testing.T) {
		table := NewTable()
		route := Route{Method: http.MethodGet, Path: "/x", Handler: rec.handler(nil)}

		assert.Panics(t, func() { table.MustRegister(route, route) })
	})

	t.Run("routes keep registration order and default names", func(t *testing.T) {
		table := NewTable()
		table.MustRegister(
			Route{Method: http.MethodPost, Path: "/b", Handler: rec.handler(nil)},
			Route{Name: "a", Method: http.MethodGet, Path: "/a", Handler: rec.handler(nil)},
		)

		routes := table.Routes()
		require.Len(t, routes, 2)
		assert.Equal(t, "POST /b", routes[0].Name)
		assert.Equal(t, "a", routes[1].Name)

		got, ok := table.Lookup("get", "/a")
		require.True(t, ok)
		assert.Equal(t, "GET /a", got.String())
	})
}

func TestDispatchNotFound(t *testing.T) {
	table := NewTable()
	table.MustRegister(Route{Method: http.MethodPost, Path: "/echo", Handler: (&recorder{}).handler(nil)})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nonexistent"},
		{http.MethodGet, "/echo"},
	} {
		resp := table.Dispatch(context.Background(), tc.method, tc.path, nil, nil)

		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Code)
	}
}

func TestDispatchValidation(t *testing.T) {
	rec := &recorder{}
	table := NewTable()
	table.MustRegister(Route{
		Method: http.MethodPost,
		Path:   "/search",
		Schemas: map[validation.Channel]*validation.Schema{
			validation.ChannelQuery: validation.Object(validation.Number("page")),
			validation.ChannelJSON:  validation.Object(validation.String("term"), validation.Enum("mode", "fast", "full")),
		},
		Handler: rec.handler(map[string]bool{"ok": true}),
	})

	t.Run("errors accumulate across channels", func(t *testing.T) {
		resp := table.Dispatch(context.Background(), http.MethodPost, "/search",
			url.Values{"page": {"two"}}, []byte(`{"mode":"slow"}`))

		require.Equal(t, http.StatusBadRequest, resp.Status)
		httpErr := decodeError(t, resp.Body)

		assert.Equal(t, errs.CodeValidationFailed, httpErr.Code)
		require.Len(t, httpErr.Errors, 3)
		assert.Equal(t, "query", httpErr.Errors[0].Channel)
		assert.Equal(t, "page", httpErr.Errors[0].Field)
		assert.Equal(t, errs.ReasonInvalidType, httpErr.Errors[0].Reason)
		assert.Equal(t, "term", httpErr.Errors[1].Field)
		assert.Equal(t, errs.ReasonRequired, httpErr.Errors[1].Reason)
		assert.Equal(t, "mode", httpErr.Errors[2].Field)
		assert.Equal(t, errs.ReasonInvalidEnum, httpErr.Errors[2].Reason)
		assert.Zero(t, rec.calls)
	})

	t.Run("malformed json is its own failure", func(t *testing.T) {
		resp := table.Dispatch(context.Background(), http.MethodPost, "/search",
			url.Values{"page": {"1"}}, []byte(`{"term":`))

		require.Equal(t, http.StatusBadRequest, resp.Status)
		httpErr := decodeError(t, resp.Body)

		assert.Equal(t, errs.CodeMalformedJSON, httpErr.Code)
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, errs.ReasonMalformedJSON, httpErr.Errors[0].Reason)
		assert.Equal(t, "request body is not valid JSON", httpErr.Errors[0].Message)
		assert.Zero(t, rec.calls)
	})

	t.Run("valid input reaches the handler coerced", func(t *testing.T) {
		resp := table.Dispatch(context.Background(), http.MethodPost, "/search",
			url.Values{"page": {"3"}, "debug": {"1"}}, []byte(`{"term":"go","mode":"fast"}`))

		require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
		assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
		require.Equal(t, 1, rec.calls)

		assert.Equal(t, map[string]any{"page": 3.0}, rec.last.Valid(validation.ChannelQuery))
		assert.Equal(t, map[string]any{"term": "go", "mode": "fast"}, rec.last.Valid(validation.ChannelJSON))
		assert.Equal(t, "1", rec.last.Query.Get("debug"))
	})
}

func TestDispatchPassesUndeclaredChannelsRaw(t *testing.T) {
	rec := &recorder{}
	table := NewTable()
	table.MustRegister(Route{Method: http.MethodPost, Path: "/raw", Handler: rec.handler("ok")})

	resp := table.Dispatch(context.Background(), http.MethodPost, "/raw", url.Values{"a": {"b"}}, []byte("not json"))

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []byte("not json"), rec.last.Body)
	assert.Equal(t, "b", rec.last.Query.Get("a"))
	assert.Nil(t, rec.last.Valid(validation.ChannelJSON))
}

func TestDispatchHandlerFailures(t *testing.T) {
	table := NewTable()
	table.MustRegister(
		Route{Method: http.MethodGet, Path: "/fails", Handler: func(ctx context.Context, in *Input) (any, error) {
			return nil, assert.AnError
		}},
		Route{Method: http.MethodGet, Path: "/panics", Handler: func(ctx context.Context, in *Input) (any, error) {
			panic("boom")
		}},
		Route{Method: http.MethodGet, Path: "/gone", Handler: func(ctx context.Context, in *Input) (any, error) {
			return nil, errs.NewNotFoundError("Item not found", false, nil)
		}},
		Route{Method: http.MethodGet, Path: "/unencodable", Handler: func(ctx context.Context, in *Input) (any, error) {
			return failingJSON{}, nil
		}},
	)

	for _, path := range []string{"/fails", "/panics", "/unencodable"} {
		t.Run(path, func(t *testing.T) {
			resp := table.Dispatch(context.Background(), http.MethodGet, path, nil, nil)

			require.Equal(t, http.StatusInternalServerError, resp.Status)
			httpErr := decodeError(t, resp.Body)
			assert.Equal(t, "INTERNAL_SERVER_ERROR", httpErr.Code)
			assert.Equal(t, "Internal Server Error", httpErr.Message)
			assert.NotContains(t, string(resp.Body), "boom")
		})
	}

	t.Run("http errors pass through", func(t *testing.T) {
		resp := table.Dispatch(context.Background(), http.MethodGet, "/gone", nil, nil)

		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Item not found", decodeError(t, resp.Body).Message)
	})
}

func TestMount(t *testing.T) {
	rec := &recorder{}
	table := NewTable()
	table.MustRegister(Route{
		Method:  http.MethodPost,
		Path:    "/echo",
		Schemas: map[validation.Channel]*validation.Schema{validation.ChannelJSON: validation.Object(validation.String("message"))},
		Handler: rec.handler(map[string]string{"status": "ok"}),
	})

	e := echo.New()
	table.Mount(e)

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()

		e.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
		assert.Equal(t, map[string]any{"message": "hi"}, rec.last.Valid(validation.ChannelJSON))
	})

	t.Run("invalid reaches the error handler", func(t *testing.T) {
		var handled error
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			handled = err
			_ = c.JSON(errs.Resolve(err).Status, errs.Resolve(err))
		}

		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		e.ServeHTTP(w, req)

		require.Error(t, handled)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"message"}, errs.Resolve(handled).FieldNames())
	})
}
