package writer

import (
	"encoding/csv"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopmonkeyus/csvexport/internal"
)

// Frame is the columnar backend: rows are buffered into columns and written
// through a gota dataframe. Output is byte identical to the Incremental
// backend for the same field list and rows because both delegate quoting to
// encoding/csv.
type Frame struct {
	fields []string
	cols   [][]string
}

func NewFrame(fields []string) *Frame {
	cols := make([][]string, len(fields))
	for i := range cols {
		cols[i] = make([]string, 0)
	}
	return &Frame{fields: fields, cols: cols}
}

// Append buffers one projected row.
func (f *Frame) Append(row internal.Row) {
	for i, name := range f.fields {
		f.cols[i] = append(f.cols[i], Format(row[name]))
	}
}

// Len returns the number of buffered rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0])
}

// Write serializes the buffered columns. A dataframe cannot represent zero
// rows, so the empty case falls back to writing just the header.
func (f *Frame) Write(w io.Writer, header bool) error {
	if len(f.fields) == 0 {
		return nil
	}
	if f.Len() == 0 {
		if !header {
			return nil
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(f.fields); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
	cols := make([]series.Series, len(f.fields))
	for i, name := range f.fields {
		cols[i] = series.New(f.cols[i], series.String, name)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w, dataframe.WriteHeader(header))
}
