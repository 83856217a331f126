package writer

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "hello", Format("hello"))
	assert.Equal(t, "bytes", Format([]byte("bytes")))
	assert.Equal(t, "42", Format(42))
	assert.Equal(t, "3.14", Format(3.14))
	assert.Equal(t, "true", Format(true))

	// callables are invoked
	assert.Equal(t, "lazy", Format(func() any { return "lazy" }))

	// stringers use their canonical form, durations included
	assert.Equal(t, "24h0m0s", Format(24*time.Hour))
	assert.Equal(t, "1.5s", Format(1500*time.Millisecond))
	assert.Equal(t, "key", Format(internal.Reference{Key: "key"}))
	assert.Equal(t, "display", Format(internal.Reference{Key: 1, Display: "display"}))
}

func TestIncremental(t *testing.T) {
	var buf bytes.Buffer
	w := NewIncremental(&buf)
	require.NoError(t, w.WriteValues([]string{"a", "b"}))
	require.NoError(t, w.WriteRow([]string{"a", "b"}, internal.Row{"a": 1, "b": "two"}))
	// missing fields serialize as empty cells
	require.NoError(t, w.WriteRow([]string{"a", "b"}, internal.Row{"a": 3}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "a,b\n1,two\n3,\n", buf.String())
}

func TestIncrementalQuoting(t *testing.T) {
	var buf bytes.Buffer
	w := NewIncremental(&buf)
	require.NoError(t, w.WriteRow([]string{"v"}, internal.Row{"v": `say "hi", ok`}))
	require.NoError(t, w.WriteRow([]string{"v"}, internal.Row{"v": "line\nbreak"}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "\"say \"\"hi\"\", ok\"\n\"line\nbreak\"\n", buf.String())
}
