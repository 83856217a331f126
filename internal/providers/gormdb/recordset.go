package gormdb

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
	"gorm.io/gorm"
)

type recordSet struct {
	p     *gormProvider
	model internal.Model
	keys  []any
	cache []any
}

var _ internal.RecordSet = (*recordSet)(nil)

func (r *recordSet) Model() internal.Model {
	return r.model
}

func (r *recordSet) Values(ctx context.Context, fields []string) ([]internal.Row, error) {
	if len(fields) == 0 {
		fields = exportableFields(r.model)
	}
	cols := make([]string, 0, len(fields))
	for _, name := range fields {
		cols = append(cols, quote(name))
	}
	var rows []map[string]any
	if err := r.scope(ctx, "").Select(cols).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	res := make([]internal.Row, 0, len(rows))
	for _, row := range rows {
		res = append(res, normalize(row))
	}
	r.cache = make([]any, 0, len(res))
	for _, row := range res {
		r.cache = append(r.cache, row)
	}
	return res, nil
}

func (r *recordSet) Records(ctx context.Context, fields []string) ([]internal.Record, error) {
	if len(fields) == 0 {
		fields = exportableFields(r.model)
	}
	var sel []string
	var joins []string
	for _, name := range fields {
		f, ok := r.model.Field(name)
		if !ok {
			return nil, errors.Newf("model %s has no field %s", r.model.Table, name)
		}
		sel = append(sel, "t."+quote(f.Name))
		if f.Kind.Related() && f.RelatedDisplay != "" {
			alias := fmt.Sprintf("r%d", len(joins))
			joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = t.%s",
				quote(f.RelatedTable), alias, alias, quote(f.RelatedKey), quote(f.Name)))
			sel = append(sel, fmt.Sprintf("%s.%s AS %s", alias, quote(f.RelatedDisplay), quote(f.Name+internal.DisplaySuffix)))
		}
	}
	tx := r.scope(ctx, "t.").Table(quote(r.model.Table) + " t").Select(sel)
	for _, join := range joins {
		tx = tx.Joins(join)
	}
	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	records := make([]internal.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, internal.NewMapRecord(r.model, normalize(row)))
	}
	r.cache = make([]any, 0, len(records))
	for _, rec := range records {
		r.cache = append(r.cache, rec)
	}
	return records, nil
}

func (r *recordSet) ByPrimaryKeys(ctx context.Context, keys []any) (internal.RecordSet, error) {
	if len(keys) > r.p.maxParams {
		return nil, errors.Wrapf(internal.ErrTooLarge,
			"%d primary keys exceeds the %d bind parameter limit for %s", len(keys), r.p.maxParams, r.p.dialect)
	}
	return &recordSet{p: r.p, model: r.model, keys: keys}, nil
}

func (r *recordSet) Materialized() ([]any, bool) {
	if r.cache == nil {
		return nil, false
	}
	return r.cache, true
}

func (r *recordSet) scope(ctx context.Context, prefix string) *gorm.DB {
	tx := r.p.db.WithContext(ctx).Table(quote(r.model.Table))
	if len(r.keys) > 0 {
		tx = tx.Where(fmt.Sprintf("%s%s IN ?", prefix, quote(r.model.PrimaryKey)), r.keys)
	}
	return tx
}

// quote double quotes an identifier, which both postgres and sqlserver
// accept.
func quote(name string) string {
	return `"` + name + `"`
}

func normalize(row map[string]any) internal.Row {
	res := make(internal.Row, len(row))
	for col, val := range row {
		if buf, ok := val.([]byte); ok {
			res[col] = string(buf)
			continue
		}
		res[col] = val
	}
	return res
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
