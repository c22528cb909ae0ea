package handler

import (
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/server"
)

// Handlers is a container that groups all handlers.
//
// Similar to Middlewares, a single Handlers struct keeps router setup clean:
// one object is passed around instead of many.
type Handlers struct {
	RPC    *RPCHandler    // RPC serves hello, greet, echo and calculate.
	Status *StatusHandler // Status serves the service status endpoint.
}

// NewHandlers constructs the handler container. The status handler reports
// the routes found in table at request time.
func NewHandlers(s *server.Server, table *dispatch.Table) *Handlers {
	return &Handlers{
		RPC:    NewRPCHandler(s),
		Status: NewStatusHandler(s, table),
	}
}
