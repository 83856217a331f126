package exporter

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/shopmonkeyus/csvexport/internal/providers/static"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferSink(t *testing.T) {
	sink := NewBufferSink()
	sink.SetHeader("Content-Type", "text/csv")
	_, err := sink.Write([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", sink.Header("Content-Type"))
	assert.Equal(t, "", sink.Header("Missing"))
	assert.Equal(t, "a,b\n", sink.String())
}

func TestHTTPSink(t *testing.T) {
	rec := httptest.NewRecorder()
	rs := static.Rows(bookModel, bookRows())
	opts := NewOptions()
	opts.Values = true
	require.NoError(t, Export(context.Background(), rs, NewHTTPSink(rec), opts))
	res := rec.Result()
	assert.Equal(t, "text/csv", res.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=export.csv", res.Header.Get("Content-Disposition"))
	assert.Equal(t, "1,The Go Programming Language,7,32.9\n2,\"Go, In Practice\",9,24.5\n", rec.Body.String())
}
