package utils

import (
	"bytes"
	"math"
	"testing"

	"github.com/deppfellow/go-rpc-demo/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, map[string]any{"result": api.Number(math.NaN())}))

	assert.Equal(t, "{\n  \"result\": null\n}\n", buf.String())
}

func TestWriteJSONUnsupported(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, WriteJSON(&buf, func() {}))
	assert.Empty(t, buf.String())
}
