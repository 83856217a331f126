// Package static provides materialized record sets: rows or records that
// were already fetched by the caller rather than being query-backed. These
// are what an export receives when the caller sets Values, and they back most
// of the exporter tests.
package static

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
)

// AccessorMap resolves a field name to the accessor that extracts its value
// from a record. Accessors replace reflective attribute lookup: the caller
// declares how each field of its record type is read.
type AccessorMap map[string]func(rec any) any

// Rows returns a record set of pre-projected rows.
func Rows(model internal.Model, rows []internal.Row) internal.RecordSet {
	items := make([]any, 0, len(rows))
	for _, row := range rows {
		items = append(items, row)
	}
	return &recordSet{model: model, items: items, projected: true}
}

// Records returns a record set of full records whose fields are resolved
// through the accessor table.
func Records(model internal.Model, records []any, accessors AccessorMap) internal.RecordSet {
	return &recordSet{model: model, items: records, accessors: accessors}
}

type recordSet struct {
	model     internal.Model
	items     []any
	projected bool
	accessors AccessorMap
}

var _ internal.RecordSet = (*recordSet)(nil)

func (s *recordSet) Model() internal.Model {
	return s.model
}

func (s *recordSet) Values(ctx context.Context, fields []string) ([]internal.Row, error) {
	if len(fields) == 0 {
		fields = exportableFields(s.model)
	}
	rows := make([]internal.Row, 0, len(s.items))
	for i, item := range s.items {
		row := make(internal.Row, len(fields))
		if s.projected {
			src, ok := item.(internal.Row)
			if !ok {
				return nil, errors.Newf("element %d is %T, not a projected row", i, item)
			}
			for _, name := range fields {
				row[name] = src[name]
			}
		} else {
			for _, name := range fields {
				val, err := s.access(item, name)
				if err != nil {
					return nil, err
				}
				if ref, ok := val.(internal.Reference); ok {
					// the projected shape carries the related primary key
					val = ref.Key
				}
				row[name] = val
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *recordSet) Records(ctx context.Context, fields []string) ([]internal.Record, error) {
	if s.projected {
		return nil, errors.WithHint(
			errors.Wrap(internal.ErrTypeMismatch, "the record set holds projected rows, not full records"),
			"Values was likely omitted.")
	}
	records := make([]internal.Record, 0, len(s.items))
	for _, item := range s.items {
		records = append(records, &accessorRecord{rec: item, accessors: s.accessors})
	}
	return records, nil
}

func (s *recordSet) ByPrimaryKeys(ctx context.Context, keys []any) (internal.RecordSet, error) {
	want := make(map[string]bool, len(keys))
	for _, key := range keys {
		want[fmt.Sprintf("%v", key)] = true
	}
	pk := s.model.PrimaryKey
	items := make([]any, 0, len(s.items))
	for i, item := range s.items {
		var val any
		if s.projected {
			src, ok := item.(internal.Row)
			if !ok {
				return nil, errors.Newf("element %d is %T, not a projected row", i, item)
			}
			val = src[pk]
		} else {
			v, err := s.access(item, pk)
			if err != nil {
				return nil, err
			}
			if ref, ok := v.(internal.Reference); ok {
				v = ref.Key
			}
			val = v
		}
		if want[fmt.Sprintf("%v", val)] {
			items = append(items, item)
		}
	}
	return &recordSet{model: s.model, items: items, projected: s.projected, accessors: s.accessors}, nil
}

func (s *recordSet) Materialized() ([]any, bool) {
	return s.items, true
}

func (s *recordSet) access(rec any, name string) (any, error) {
	fn := s.accessors[name]
	if fn == nil {
		return nil, errors.Newf("no accessor for field %s on model %s", name, s.model.Table)
	}
	return fn(rec), nil
}

func exportableFields(model internal.Model) []string {
	names := make([]string, 0, len(model.Fields))
	for _, f := range model.Fields {
		if f.Kind == internal.FieldKindManyToMany {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

type accessorRecord struct {
	rec       any
	accessors AccessorMap
}

var _ internal.Record = (*accessorRecord)(nil)

func (r *accessorRecord) Field(name string) (any, error) {
	fn := r.accessors[name]
	if fn == nil {
		return nil, errors.Newf("no accessor for field %s", name)
	}
	return fn(r.rec), nil
}
