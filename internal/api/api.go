// Package api is the contract shared by the server and the Go client:
// the path of every route, the schemas guarding their input, and the
// request/response types both sides exchange.
package api

import (
	"math"
	"strconv"
	"time"

	"github.com/deppfellow/go-rpc-demo/internal/validation"
)

// Route paths.
const (
	PathHello     = "/hello"
	PathGreet     = "/greet"
	PathEcho      = "/echo"
	PathCalculate = "/calculate"
	PathStatus    = "/status"
)

// HelloMessage is the fixed greeting returned by GET /hello.
const HelloMessage = "Hello from Hono RPC!"

// TimestampLayout renders UTC instants with millisecond precision,
// e.g. 2024-05-01T12:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Operation is one of the four arithmetic operations /calculate accepts.
type Operation string

const (
	OperationAdd      Operation = "add"
	OperationSubtract Operation = "subtract"
	OperationMultiply Operation = "multiply"
	OperationDivide   Operation = "divide"
)

// Operations lists every Operation in display order.
var Operations = []Operation{OperationAdd, OperationSubtract, OperationMultiply, OperationDivide}

func operationNames() []string {
	names := make([]string, 0, len(Operations))
	for _, op := range Operations {
		names = append(names, string(op))
	}
	return names
}

// Input schemas, one per validated route.
var (
	GreetQuerySchema = validation.Object(
		validation.String("name"),
	)

	EchoSchema = validation.Object(
		validation.String("message"),
	)

	CalculateSchema = validation.Object(
		validation.Number("a"),
		validation.Number("b"),
		validation.Enum("operation", operationNames()...),
	)
)

type HelloResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type GreetQuery struct {
	Name string `json:"name"`
}

type GreetResponse struct {
	Greeting string `json:"greeting"`
}

type EchoRequest struct {
	Message string `json:"message"`
}

type EchoResponse struct {
	Received  string `json:"received"`
	Echoed    bool   `json:"echoed"`
	Timestamp string `json:"timestamp"`
}

type CalculationRequest struct {
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Operation Operation `json:"operation"`
}

type CalculationResponse struct {
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Operation Operation `json:"operation"`
	Result    Number    `json:"result"`
}

// StatusResponse is returned by the system status endpoint.
type StatusResponse struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Environment string   `json:"environment"`
	Routes      []string `json:"routes"`
}

// Number is a float64 that may be NaN or infinite. JSON has no literal for
// those, so they are written as null and read back as NaN.
type Number float64

// IsNaN reports whether n is the not-a-number sentinel.
func (n Number) IsNaN() bool {
	return math.IsNaN(float64(n))
}

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}
