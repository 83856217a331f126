package exporter

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/writer"
)

// ExportRelated serializes the record set to the sink as a CSV attachment,
// rendering foreign-key and one-to-one fields via the related record's string
// representation instead of its primary key. Many-to-many fields are not
// supported.
//
// When Values is set, the pre-projected rows are resolved back into full
// records with a secondary lookup on their primary keys. This runs one more
// query against the data source and fails with ErrTooLarge when the set
// exceeds the backing store's bind parameter capacity, so prefer passing the
// unprojected record set.
func ExportRelated(ctx context.Context, rs internal.RecordSet, sink Sink, opts Options) error {
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	filename, err := ValidateFilename(opts.Filename, DefaultFilename)
	if err != nil {
		return err
	}
	fields := SelectFields(rs.Model().Fields, opts.Only, opts.Defer)
	names, labels := FieldNames(fields, opts.Header, opts.Verbose)
	records, err := resolveRecords(ctx, rs, names, opts)
	if err != nil {
		return err
	}
	attach(sink, filename)
	w := writer.NewIncremental(sink)
	if opts.Header {
		if err := w.WriteValues(labels); err != nil {
			return err
		}
	}
	values := make([]string, len(names))
	for _, rec := range records {
		for i, name := range names {
			val, err := rec.Field(name)
			if err != nil {
				if errors.Is(err, internal.ErrTypeMismatch) {
					return err
				}
				return errors.WithHint(
					errors.Wrapf(internal.ErrTypeMismatch, "resolving field %s: %v", name, err),
					"The record set was passed projected to rows without setting Values.")
			}
			values[i] = writer.Format(val)
		}
		if err := w.WriteValues(values); err != nil {
			return err
		}
	}
	return w.Flush()
}

// resolveRecords returns the full records to serialize. With Values set the
// set is first projected to rows, then restricted by primary key back to full
// records through the provider.
func resolveRecords(ctx context.Context, rs internal.RecordSet, names []string, opts Options) ([]internal.Record, error) {
	if !opts.Values {
		if _, ok := rs.Materialized(); ok {
			advise(opts, "the record set was already evaluated before being passed in, resolving it will run another query against the data source")
		}
		return rs.Records(ctx, names)
	}
	rows, err := rs.Values(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	pk := rs.Model().PrimaryKey
	keys := make([]any, 0, len(rows))
	for i, row := range rows {
		key, ok := row[pk]
		if !ok {
			return nil, errors.Wrapf(internal.ErrTypeMismatch, "element %d has no %s primary key", i, pk)
		}
		keys = append(keys, key)
	}
	sub, err := rs.ByPrimaryKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	return sub.Records(ctx, names)
}
