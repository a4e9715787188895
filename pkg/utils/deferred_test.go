package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	writes []string
}

func (r *recordingWriter) Write(p []byte) (int, error) {
	r.writes = append(r.writes, string(p))
	return len(p), nil
}

func TestDeferredWriter_FlushesPerLine(t *testing.T) {
	var d DeferredWriter

	_, err := d.Write([]byte(`{"level":"info","message":"one"}` + "\n"))
	require.NoError(t, err)
	_, err = d.Write([]byte(`{"level":"warn","message":"two"}` + "\n"))
	require.NoError(t, err)

	var rec recordingWriter
	require.NoError(t, d.Flush(&rec))

	assert.Equal(t, []string{
		`{"level":"info","message":"one"}` + "\n",
		`{"level":"warn","message":"two"}` + "\n",
	}, rec.writes)
}

func TestDeferredWriter_FlushEmptiesBuffer(t *testing.T) {
	var d DeferredWriter
	_, _ = d.Write([]byte("partial"))

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "partial", out.String())

	out.Reset()
	require.NoError(t, d.Flush(&out))
	assert.Empty(t, out.String())
}
