package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintJSON(&buf, "client", map[string]any{"id": 1}))
	assert.Equal(t, "client: {\n\t\"id\": 1\n}\n", buf.String())
}

func TestPrintJSON_Unsupported(t *testing.T) {
	var buf bytes.Buffer

	err := PrintJSON(&buf, "bad", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshalling bad")
	assert.Zero(t, buf.Len())
}
