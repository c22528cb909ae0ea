package handler

import (
	"context"
	"math"
	"net/http"

	"github.com/deppfellow/go-rpc-demo/internal/api"
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	"github.com/deppfellow/go-rpc-demo/internal/validation"
	"github.com/pkg/errors"
)

// RPCHandler serves the demo procedures: hello, greet, echo and calculate.
//
// Every method is pure apart from reading the clock, so they can be called
// directly in tests without any HTTP plumbing.
type RPCHandler struct {
	Handler
}

// NewRPCHandler constructs an RPCHandler with access to shared app dependencies.
func NewRPCHandler(s *server.Server) *RPCHandler {
	return &RPCHandler{
		Handler: NewHandler(s),
	}
}

// Routes returns the route definitions served by this handler.
func (h *RPCHandler) Routes() []dispatch.Route {
	return []dispatch.Route{
		{
			Name:    "hello",
			Method:  http.MethodGet,
			Path:    api.PathHello,
			Handler: HandleNoInput(h.Hello),
		},
		{
			Name:    "greet",
			Method:  http.MethodGet,
			Path:    api.PathGreet,
			Schemas: map[validation.Channel]*validation.Schema{validation.ChannelQuery: api.GreetQuerySchema},
			Handler: HandleQuery(h.Greet),
		},
		{
			Name:    "echo",
			Method:  http.MethodPost,
			Path:    api.PathEcho,
			Schemas: map[validation.Channel]*validation.Schema{validation.ChannelJSON: api.EchoSchema},
			Handler: HandleJSON(h.Echo),
		},
		{
			Name:    "calculate",
			Method:  http.MethodPost,
			Path:    api.PathCalculate,
			Schemas: map[validation.Channel]*validation.Schema{validation.ChannelJSON: api.CalculateSchema},
			Handler: HandleJSON(h.Calculate),
		},
	}
}

// Hello returns the fixed greeting.
func (h *RPCHandler) Hello(_ context.Context) (api.HelloResponse, error) {
	return api.HelloResponse{
		Message:   api.HelloMessage,
		Timestamp: api.FormatTimestamp(h.now()),
	}, nil
}

// Greet greets the caller by name.
func (h *RPCHandler) Greet(_ context.Context, req api.GreetQuery) (api.GreetResponse, error) {
	return api.GreetResponse{Greeting: "Hello, " + req.Name + "!"}, nil
}

// Echo returns the message unchanged.
func (h *RPCHandler) Echo(_ context.Context, req api.EchoRequest) (api.EchoResponse, error) {
	return api.EchoResponse{
		Received:  req.Message,
		Echoed:    true,
		Timestamp: api.FormatTimestamp(h.now()),
	}, nil
}

// Calculate applies operation to a and b.
//
// Division by zero yields NaN, which reaches the client as a null result
// with status 200.
func (h *RPCHandler) Calculate(_ context.Context, req api.CalculationRequest) (api.CalculationResponse, error) {
	result, err := Compute(req.A, req.B, req.Operation)
	if err != nil {
		return api.CalculationResponse{}, err
	}

	return api.CalculationResponse{
		A:         req.A,
		B:         req.B,
		Operation: req.Operation,
		Result:    api.Number(result),
	}, nil
}

// Compute evaluates a <op> b.
func Compute(a, b float64, op api.Operation) (float64, error) {
	switch op {
	case api.OperationAdd:
		return a + b, nil
	case api.OperationSubtract:
		return a - b, nil
	case api.OperationMultiply:
		return a * b, nil
	case api.OperationDivide:
		if b == 0 {
			return math.NaN(), nil
		}
		return a / b, nil
	}

	// The enum schema rejects anything else before the handler runs.
	return 0, errors.Errorf("unsupported operation %q", op)
}
