package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopmonkeyus/csvexport/internal"
)

// Format renders one cell value as text. Byte slices are decoded as UTF-8,
// callables are invoked with no arguments, nil becomes the empty string and
// everything else uses its canonical string form.
func Format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case func() any:
		return Format(v())
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Incremental writes CSV output row by row as it is produced.
type Incremental struct {
	cw *csv.Writer
}

func NewIncremental(w io.Writer) *Incremental {
	return &Incremental{cw: csv.NewWriter(w)}
}

// WriteValues writes one pre-formatted row.
func (w *Incremental) WriteValues(values []string) error {
	return w.cw.Write(values)
}

// WriteRow writes one projected row, resolving each column by field name.
// Missing fields serialize as empty cells.
func (w *Incremental) WriteRow(fields []string, row internal.Row) error {
	values := make([]string, len(fields))
	for i, name := range fields {
		values[i] = Format(row[name])
	}
	return w.cw.Write(values)
}

// Flush commits any buffered output and reports the first write error.
func (w *Incremental) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
