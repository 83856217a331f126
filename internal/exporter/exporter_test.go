package exporter

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/providers/static"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookModel = internal.Model{Table: "book", PrimaryKey: "id", Fields: bookFields}

func bookRows() []internal.Row {
	return []internal.Row{
		{"id": 1, "title": "The Go Programming Language", "author": 7, "price": 32.90},
		{"id": 2, "title": "Go, In Practice", "author": 9, "price": 24.50},
	}
}

func TestExport(t *testing.T) {
	rs := static.Rows(bookModel, bookRows())
	sink := NewBufferSink()
	opts := NewOptions()
	opts.Values = true
	require.NoError(t, Export(context.Background(), rs, sink, opts))
	assert.Equal(t, "1,The Go Programming Language,7,32.9\n2,\"Go, In Practice\",9,24.5\n", sink.String())
	assert.Equal(t, "text/csv", sink.Header("Content-Type"))
	assert.Equal(t, "attachment; filename=export.csv", sink.Header("Content-Disposition"))
}

func TestExportHeaderRow(t *testing.T) {
	rs := static.Rows(bookModel, bookRows())
	opts := NewOptions()
	opts.Values = true
	opts.Header = true
	opts.Only = []string{"id", "title"}

	sink := NewBufferSink()
	require.NoError(t, Export(context.Background(), rs, sink, opts))
	assert.Equal(t, "ID,Title\n1,The Go Programming Language\n2,\"Go, In Practice\"\n", sink.String())

	// raw field names without verbose
	opts.Verbose = false
	sink = NewBufferSink()
	require.NoError(t, Export(context.Background(), rs, sink, opts))
	assert.Equal(t, "id,title\n1,The Go Programming Language\n2,\"Go, In Practice\"\n", sink.String())
}

func TestExportFilename(t *testing.T) {
	rs := static.Rows(bookModel, bookRows())
	opts := NewOptions()
	opts.Values = true
	opts.Filename = "books"
	sink := NewBufferSink()
	require.NoError(t, Export(context.Background(), rs, sink, opts))
	assert.Equal(t, "attachment; filename=books.csv", sink.Header("Content-Disposition"))

	opts.Filename = "a*b"
	err := Export(context.Background(), rs, NewBufferSink(), opts)
	assert.True(t, errors.Is(err, internal.ErrInvalidFilename))
}

func TestExportValuesRequiresRows(t *testing.T) {
	books := []any{
		&book{id: 1, title: "The Go Programming Language"},
	}
	rs := static.Records(bookModel, books, bookAccessors())
	opts := NewOptions()
	opts.Values = true
	err := Export(context.Background(), rs, NewBufferSink(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, internal.ErrTypeMismatch))
}

func TestExportAdvisory(t *testing.T) {
	rs := static.Rows(bookModel, bookRows())
	var messages []string
	opts := NewOptions()
	opts.Advisory = func(message string) { messages = append(messages, message) }
	sink := NewBufferSink()
	require.NoError(t, Export(context.Background(), rs, sink, opts))
	// the set was already materialized so re-resolving it warns
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "already evaluated")
}

func TestExportBackendEquality(t *testing.T) {
	for _, tc := range []struct {
		name    string
		header  bool
		verbose bool
		rows    []internal.Row
	}{
		{"plain", false, true, bookRows()},
		{"header", true, false, bookRows()},
		{"header verbose", true, true, bookRows()},
		{"empty header", true, true, nil},
		{"empty", false, true, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := NewOptions()
			opts.Values = true
			opts.Header = tc.header
			opts.Verbose = tc.verbose

			incremental := NewBufferSink()
			require.NoError(t, Export(context.Background(), static.Rows(bookModel, tc.rows), incremental, opts))

			columnar := NewBufferSink()
			require.NoError(t, ExportDataFrame(context.Background(), static.Rows(bookModel, tc.rows), columnar, opts))

			assert.Equal(t, incremental.String(), columnar.String())
		})
	}
}

func TestExportIdempotent(t *testing.T) {
	rs := static.Rows(bookModel, bookRows())
	opts := NewOptions()
	opts.Values = true
	opts.Header = true

	first := NewBufferSink()
	require.NoError(t, Export(context.Background(), rs, first, opts))
	second := NewBufferSink()
	require.NoError(t, Export(context.Background(), rs, second, opts))
	assert.Equal(t, first.String(), second.String())
}

func TestExportDataFrameDefaults(t *testing.T) {
	rs := static.Rows(bookModel, bookRows())
	sink := NewBufferSink()
	opts := NewDataFrameOptions()
	opts.Values = true
	require.NoError(t, ExportDataFrame(context.Background(), rs, sink, opts))
	// the dataframe entry point defaults to a verbose header row
	assert.Equal(t, "ID,Title,Author,price\n1,The Go Programming Language,7,32.9\n2,\"Go, In Practice\",9,24.5\n", sink.String())
	assert.Equal(t, "attachment; filename=export.csv", sink.Header("Content-Disposition"))
}
