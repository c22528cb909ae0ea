// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares, fills the dispatch table with the
// handlers' routes and mounts that table on Echo.
package router

import (
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/handler"
	"github.com/deppfellow/go-rpc-demo/internal/middleware"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance serving every route in table.
//
// The RPC and system routes of h are registered into table first, then the
// whole table is mounted on Echo. A registration failure (duplicate or
// incomplete route) aborts startup.
func NewRouter(s *server.Server, h *handler.Handlers, table *dispatch.Table) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = JSONSerializer{}

	// Every error from handlers and middleware ends up in one place.
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(middlewareChain(middlewares)...)

	if err := registerRPCRoutes(table, h); err != nil {
		return nil, err
	}

	if err := registerSystemRoutes(table, h); err != nil {
		return nil, err
	}

	table.Mount(router)

	return router, nil
}

// middlewareChain returns the global middlewares in the order they run.
// The New Relic layers are left out when no application is attached.
//
// Order matters:
//   - RequestID first so every later layer can log it
//   - New Relic before the context enhancer so trace ids reach the logger
//   - RequestLogger before Recover so recovered panics are still logged
func middlewareChain(m *middleware.Middlewares) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{middleware.RequestID()}

	if m.Tracing.Enabled() {
		chain = append(chain, m.Tracing.NewRelicMiddleware())
	}

	chain = append(chain, m.ContextEnhancer.EnhanceContext())

	if m.Tracing.Enabled() {
		chain = append(chain, m.Tracing.EnhanceTracing())
	}

	return append(chain,
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.Global.Secure(),
		m.Global.CORS(),
		m.Global.BodyLimit(),
	)
}

// registerRPCRoutes registers the demo procedures.
func registerRPCRoutes(table *dispatch.Table, h *handler.Handlers) error {
	for _, r := range h.RPC.Routes() {
		if err := table.Register(r); err != nil {
			return err
		}
	}
	return nil
}
