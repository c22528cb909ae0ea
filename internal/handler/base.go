package handler

import (
	"context"
	"time"

	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	"github.com/deppfellow/go-rpc-demo/internal/validation"
	"github.com/pkg/errors"
)

// Handler is the base handler type that holds shared application dependencies.
//
// It is embedded by concrete handlers (RPCHandler, StatusHandler) so they can
// access shared resources via *server.Server and a common clock.
type Handler struct {
	server *server.Server

	// now stamps responses. Tests replace it to get fixed timestamps.
	now func() time.Time
}

// NewHandler constructs a base Handler.
//
// Note: it returns the struct by value. This is fine because the struct only
// contains a pointer and a func; copies still share the same Server.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s, now: time.Now}
}

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc represents a typed endpoint function that:
//
// - receives the validated input decoded into Req
// - returns a response (Res) or an error
//
// It never sees raw input: by the time it runs, the dispatcher has already
// checked every declared channel against its schema.
type HandlerFunc[Req any, Res any] func(ctx context.Context, req Req) (Res, error)

// HandlerFuncNoInput is a typed endpoint function for routes without a
// validated channel.
type HandlerFuncNoInput[Res any] func(ctx context.Context) (Res, error)

// handleChannel is the shared adapter between the untyped dispatcher and a
// typed endpoint. The schema for channel already succeeded, so a decode
// failure means schema and Req disagree; that is a programming error and is
// surfaced as a 500.
func handleChannel[Req any, Res any](channel validation.Channel, handler HandlerFunc[Req, Res]) dispatch.HandlerFunc {
	return func(ctx context.Context, in *dispatch.Input) (any, error) {
		req, err := validation.Decode[Req](in.Valid(channel))
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s input", channel)
		}

		return handler(ctx, req)
	}
}

// HandleQuery adapts a typed handler whose input comes from the query string.
//
// Usage pattern:
//
//	dispatch.Route{..., Handler: handler.HandleQuery(h.Greet)}
func HandleQuery[Req any, Res any](handler HandlerFunc[Req, Res]) dispatch.HandlerFunc {
	return handleChannel(validation.ChannelQuery, handler)
}

// HandleJSON adapts a typed handler whose input comes from the JSON body.
func HandleJSON[Req any, Res any](handler HandlerFunc[Req, Res]) dispatch.HandlerFunc {
	return handleChannel(validation.ChannelJSON, handler)
}

// HandleNoInput adapts a typed handler that takes no input at all.
func HandleNoInput[Res any](handler HandlerFuncNoInput[Res]) dispatch.HandlerFunc {
	return func(ctx context.Context, _ *dispatch.Input) (any, error) {
		return handler(ctx)
	}
}
