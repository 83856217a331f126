package writer

import (
	"bytes"
	"testing"

	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []internal.Row {
	return []internal.Row{
		{"id": 1, "name": "plain"},
		{"id": 2, "name": "with, comma"},
		{"id": 3, "name": `with "quotes"`},
	}
}

func TestFrame(t *testing.T) {
	frame := NewFrame([]string{"id", "name"})
	for _, row := range sampleRows() {
		frame.Append(row)
	}
	assert.Equal(t, 3, frame.Len())

	var buf bytes.Buffer
	require.NoError(t, frame.Write(&buf, true))
	assert.Equal(t, "id,name\n1,plain\n2,\"with, comma\"\n3,\"with \"\"quotes\"\"\"\n", buf.String())
}

func TestFrameMatchesIncremental(t *testing.T) {
	fields := []string{"id", "name"}

	frame := NewFrame(fields)
	for _, row := range sampleRows() {
		frame.Append(row)
	}
	var columnar bytes.Buffer
	require.NoError(t, frame.Write(&columnar, false))

	var incremental bytes.Buffer
	w := NewIncremental(&incremental)
	for _, row := range sampleRows() {
		require.NoError(t, w.WriteRow(fields, row))
	}
	require.NoError(t, w.Flush())

	assert.Equal(t, incremental.String(), columnar.String())
}

func TestFrameEmpty(t *testing.T) {
	frame := NewFrame([]string{"id", "name"})
	assert.Equal(t, 0, frame.Len())

	// no rows and no header writes nothing
	var buf bytes.Buffer
	require.NoError(t, frame.Write(&buf, false))
	assert.Equal(t, "", buf.String())

	// no rows with a header still emits the header row
	require.NoError(t, frame.Write(&buf, true))
	assert.Equal(t, "id,name\n", buf.String())
}

func TestFrameNoFields(t *testing.T) {
	frame := NewFrame(nil)
	var buf bytes.Buffer
	require.NoError(t, frame.Write(&buf, true))
	assert.Equal(t, "", buf.String())
}
