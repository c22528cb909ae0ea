package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/go-rpc-demo/internal/config"
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/handler"
	"github.com/deppfellow/go-rpc-demo/internal/router"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()

	logger := zerolog.Nop()
	s := server.New(config.Default(), &logger, nil)

	table := dispatch.NewTable()
	e, err := router.NewRouter(s, handler.NewHandlers(s, table), table)
	require.NoError(t, err)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts.URL
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCallCommands(t *testing.T) {
	url := startServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"hello", []string{"call", "hello", "--url", url}, `"message": "Hello from Hono RPC!"`},
		{"greet", []string{"call", "greet", "--url", url, "--name", "World"}, `"greeting": "Hello, World!"`},
		{"echo", []string{"call", "echo", "--url", url, "--message", "ping"}, `"received": "ping"`},
		{"calculate", []string{"call", "calculate", "--url", url, "--a", "5", "--b", "3"}, `"result": 8`},
		{"divide by zero", []string{"call", "calculate", "--url", url, "--a", "5", "--b", "0", "--operation", "divide"}, `"result": null`},
		{"status", []string{"call", "status", "--url", url}, `"status": "healthy"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, tt.args...)

			require.NoError(t, err)
			assert.Contains(t, stdout, tt.want)
		})
	}
}

func TestCallRejected(t *testing.T) {
	url := startServer(t)

	stdout, stderr, err := runCLI(t, "call", "calculate", "--url", url, "--operation", "power")

	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `"reason": "invalid_enum"`)
}
