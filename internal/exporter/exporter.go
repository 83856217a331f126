// Package exporter turns a record set into a downloadable CSV attachment.
//
// The three entry points mirror each other: Export projects records to rows
// so related fields carry their primary key, ExportDataFrame does the same
// through the columnar writer backend, and ExportRelated keeps full records
// so related fields render via their string representation.
package exporter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/writer"
	"github.com/shopmonkeyus/go-common/logger"
)

const (
	// DefaultFilename is the default filename sentinel for Export and
	// ExportRelated.
	DefaultFilename = "export.csv"

	// DefaultDataFrameFilename is the default filename sentinel for
	// ExportDataFrame, kept from an earlier iteration of the exporter.
	DefaultDataFrameFilename = "export"
)

// Options control one export call.
type Options struct {

	// Filename for the content-disposition header. A .csv suffix is appended
	// when missing. Empty means the entry point's default.
	Filename string

	// Only restricts the export to the named fields.
	Only []string

	// Defer excludes the named fields and overrides Only on overlap.
	Defer []string

	// Header emits a header row before the body.
	Header bool

	// Verbose uses the declared labels instead of the raw field names in the
	// header row.
	Verbose bool

	// Values treats the record set as already projected to rows and uses it
	// as-is instead of re-querying the data source.
	Values bool

	// UseDataFrame selects the columnar writer backend.
	UseDataFrame bool

	// Logger to use for logging.
	Logger logger.Logger

	// Advisory receives non-fatal diagnostics such as the redundant-fetch
	// warning. Defaults to a warning on Logger.
	Advisory func(message string)
}

// NewOptions returns the default options for Export.
func NewOptions() Options {
	return Options{Filename: DefaultFilename, Verbose: true}
}

// NewDataFrameOptions returns the default options for ExportDataFrame.
func NewDataFrameOptions() Options {
	return Options{Filename: DefaultDataFrameFilename, Header: true, Verbose: true, UseDataFrame: true}
}

// NewRelatedOptions returns the default options for ExportRelated.
func NewRelatedOptions() Options {
	return Options{Filename: DefaultFilename, Verbose: true}
}

// Export serializes the record set to the sink as a CSV attachment. Related
// fields carry the related record's primary key because the set is projected
// to rows.
func Export(ctx context.Context, rs internal.RecordSet, sink Sink, opts Options) error {
	return export(ctx, rs, sink, opts, DefaultFilename)
}

// ExportDataFrame is Export through the columnar writer backend. The two
// backends produce byte-identical output for the same resolved field list and
// rows.
func ExportDataFrame(ctx context.Context, rs internal.RecordSet, sink Sink, opts Options) error {
	opts.UseDataFrame = true
	return export(ctx, rs, sink, opts, DefaultDataFrameFilename)
}

func export(ctx context.Context, rs internal.RecordSet, sink Sink, opts Options, sentinel string) error {
	if opts.Filename == "" {
		opts.Filename = sentinel
	}
	filename, err := ValidateFilename(opts.Filename, sentinel)
	if err != nil {
		return err
	}
	fields := SelectFields(rs.Model().Fields, opts.Only, opts.Defer)
	names, labels := FieldNames(fields, opts.Header, opts.Verbose)
	rows, err := resolveRows(ctx, rs, names, opts)
	if err != nil {
		return err
	}
	attach(sink, filename)
	if opts.UseDataFrame {
		frame := writer.NewFrame(names)
		for _, row := range rows {
			frame.Append(row)
		}
		if opts.Header && opts.Verbose {
			// the label header is not part of the frame, emit it separately
			// and write the body headerless
			w := writer.NewIncremental(sink)
			if err := w.WriteValues(labels); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return frame.Write(sink, false)
		}
		return frame.Write(sink, opts.Header)
	}
	w := writer.NewIncremental(sink)
	if opts.Header {
		if err := w.WriteValues(labels); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := w.WriteRow(names, row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// attach sets the response metadata. This must happen before any body byte is
// written.
func attach(sink Sink, filename string) {
	sink.SetHeader("Content-Type", "text/csv")
	sink.SetHeader("Content-Disposition", "attachment; filename="+filename)
}

// resolveRows is the row source adapter: it either re-projects the record set
// through the provider or, when Values is set, validates that the supplied
// set is already mapping-shaped and uses it as-is.
func resolveRows(ctx context.Context, rs internal.RecordSet, names []string, opts Options) ([]internal.Row, error) {
	if !opts.Values {
		if _, ok := rs.Materialized(); ok {
			advise(opts, "the record set was already evaluated before being passed in, resolving it will run another query against the data source")
		}
		return rs.Values(ctx, names)
	}
	items, ok := rs.Materialized()
	if !ok {
		return nil, errors.WithHint(
			errors.Wrap(internal.ErrTypeMismatch, "Values requires a record set that was already projected to rows"),
			"Project the record set to rows before passing it, or unset Values.")
	}
	rows := make([]internal.Row, 0, len(items))
	for i, item := range items {
		row, ok := item.(internal.Row)
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(internal.ErrTypeMismatch, "element %d is %T, not a projected row", i, item),
				"Values only works with a record set of projected rows. Record sets of full records are not compatible.")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func advise(opts Options, message string) {
	if opts.Advisory != nil {
		opts.Advisory(message)
		return
	}
	if opts.Logger != nil {
		opts.Logger.Warn("%s", message)
	}
}
