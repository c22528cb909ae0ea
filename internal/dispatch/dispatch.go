// Package dispatch owns the route table.
//
// A Route couples a (method, path) pair with the schemas guarding each of
// its input channels and the handler to run once every schema passed. The
// Table resolves routes, runs the validation phase, invokes the handler and
// serializes the result; the same pipeline backs both Table.Dispatch and the
// routes mounted on Echo by Table.Mount.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/deppfellow/go-rpc-demo/internal/validation"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrDuplicateRoute is returned by Register when (method, path) is taken.
	ErrDuplicateRoute = errors.New("route already registered")

	// ErrInvalidRoute is returned by Register for incomplete route definitions.
	ErrInvalidRoute = errors.New("invalid route")
)

// Input is what a handler receives: the raw request data and, per declared
// channel, the value that passed validation.
type Input struct {
	Query url.Values
	Body  []byte

	valid map[validation.Channel]map[string]any
}

// Valid returns the validated value of channel, or nil when the route
// declares no schema for it.
func (in *Input) Valid(channel validation.Channel) map[string]any {
	return in.valid[channel]
}

// HandlerFunc runs after validation succeeded. Returned values are
// serialized as JSON with status 200. Returning an *errs.HTTPError selects
// the response; any other error becomes a generic 500.
type HandlerFunc func(ctx context.Context, in *Input) (any, error)

// Route is registered once at startup and never mutated afterwards.
type Route struct {
	// Name identifies the route in logs and traces.
	Name    string
	Method  string
	Path    string
	Schemas map[validation.Channel]*validation.Schema
	Handler HandlerFunc
}

// String renders the route as "METHOD /path".
func (r Route) String() string {
	return r.Method + " " + r.Path
}

type routeKey struct {
	method string
	path   string
}

// Table maps (method, path) to routes.
//
// Registration happens during startup wiring; after that the table is only
// read, so Dispatch is safe for concurrent use.
type Table struct {
	routes map[routeKey]*Route
	order  []*Route
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{routes: make(map[routeKey]*Route)}
}

// Register adds r to the table. Registering the same (method, path) twice
// is rejected with ErrDuplicateRoute; the first registration stays in place.
func (t *Table) Register(r Route) error {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))

	switch {
	case r.Method == "":
		return fmt.Errorf("%w: empty method", ErrInvalidRoute)
	case !strings.HasPrefix(r.Path, "/"):
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, r.Path)
	case r.Handler == nil:
		return fmt.Errorf("%w: %s has no handler", ErrInvalidRoute, r)
	}

	schemas := make(map[validation.Channel]*validation.Schema, len(r.Schemas))
	for channel, schema := range r.Schemas {
		if !channel.Known() {
			return fmt.Errorf("%w: %s declares unknown channel %q", ErrInvalidRoute, r, channel)
		}
		if schema == nil {
			return fmt.Errorf("%w: %s has a nil %s schema", ErrInvalidRoute, r, channel)
		}
		schemas[channel] = schema
	}
	r.Schemas = schemas

	if r.Name == "" {
		r.Name = r.String()
	}

	key := routeKey{method: r.Method, path: r.Path}
	if _, exists := t.routes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, r)
	}

	t.routes[key] = &r
	t.order = append(t.order, &r)

	return nil
}

// MustRegister registers every route and panics on the first failure.
func (t *Table) MustRegister(routes ...Route) {
	for _, r := range routes {
		if err := t.Register(r); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the route registered for (method, path).
func (t *Table) Lookup(method, path string) (Route, bool) {
	r, ok := t.routes[routeKey{method: strings.ToUpper(method), path: path}]
	if !ok {
		return Route{}, false
	}
	return *r, true
}

// Routes lists the registered routes in registration order.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.order))
	for _, r := range t.order {
		out = append(out, *r)
	}
	return out
}

// Response is a serialized dispatch outcome.
type Response struct {
	Status int
	Body   []byte
}

// Dispatch runs the full request pipeline for one request without any HTTP
// server in between: lookup, validation of every declared channel, handler
// invocation and JSON serialization. It never returns an error; every
// failure is encoded as a response.
func (t *Table) Dispatch(ctx context.Context, method, path string, rawQuery url.Values, rawBody []byte) Response {
	r, ok := t.routes[routeKey{method: strings.ToUpper(method), path: path}]
	if !ok {
		return errorResponse(ctx, errs.NewRouteNotFoundError())
	}

	result, err := r.run(ctx, rawQuery, rawBody)
	if err != nil {
		return errorResponse(ctx, err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		return errorResponse(ctx, errors.Wrapf(err, "failed to encode %s response", r.Name))
	}

	return Response{Status: http.StatusOK, Body: body}
}

func errorResponse(ctx context.Context, err error) Response {
	httpErr := errs.Resolve(err)

	if httpErr.Status >= http.StatusInternalServerError {
		zerolog.Ctx(ctx).Error().Stack().Err(err).Int("status", httpErr.Status).Msg(httpErr.Message)
	}

	body, marshalErr := json.Marshal(httpErr)
	if marshalErr != nil {
		// HTTPError only holds strings, ints and bools; keep a fixed body anyway.
		body = []byte(`{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error","status":500}`)
		return Response{Status: http.StatusInternalServerError, Body: body}
	}

	return Response{Status: httpErr.Status, Body: body}
}
