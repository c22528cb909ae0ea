package router

import (
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/handler"
)

// registerSystemRoutes registers "system" endpoints that are not part of
// the demo procedures.
//
// Kept separate from the RPC routes. Today this is only the status
// endpoint, used by monitors and load balancers.
func registerSystemRoutes(table *dispatch.Table, h *handler.Handlers) error {
	for _, r := range h.Status.Routes() {
		if err := table.Register(r); err != nil {
			return err
		}
	}
	return nil
}
