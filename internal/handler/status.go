package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/go-rpc-demo/internal/api"
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	"github.com/rs/zerolog"
)

// StatusHandler exposes a "system" endpoint that uptime monitors and load
// balancers can use to verify the service is alive.
//
// The service has no dependencies to check, so it is healthy whenever it
// answers. It also lists the registered routes, which is handy when
// poking at a deployment.
type StatusHandler struct {
	Handler

	table *dispatch.Table
}

// NewStatusHandler constructs a StatusHandler reporting the routes of table.
func NewStatusHandler(s *server.Server, table *dispatch.Table) *StatusHandler {
	return &StatusHandler{
		Handler: NewHandler(s),
		table:   table,
	}
}

// Routes returns the route definition served by this handler.
func (h *StatusHandler) Routes() []dispatch.Route {
	return []dispatch.Route{{
		Name:    "status",
		Method:  http.MethodGet,
		Path:    api.PathStatus,
		Handler: HandleNoInput(h.CheckStatus),
	}}
}

// CheckStatus returns service status, the environment and every route.
func (h *StatusHandler) CheckStatus(ctx context.Context) (api.StatusResponse, error) {
	routes := h.table.Routes()

	names := make([]string, 0, len(routes))
	for _, r := range routes {
		names = append(names, r.String())
	}

	response := api.StatusResponse{
		Status:      "healthy",
		Timestamp:   api.FormatTimestamp(h.now()),
		Environment: h.server.Config.Primary.Env,
		Routes:      names,
	}

	zerolog.Ctx(ctx).Debug().
		Str("operation", "status_check").
		Int("routes", len(names)).
		Msg("status check passed")

	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("StatusCheck", map[string]interface{}{
			"operation":   "status_check",
			"environment": response.Environment,
			"routes":      len(names),
		})
	}

	return response, nil
}
