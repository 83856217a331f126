package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
)

type recordSet struct {
	p     *sqlProvider
	model internal.Model
	keys  []any // primary key restriction, nil means unrestricted
	cache []any
}

var _ internal.RecordSet = (*recordSet)(nil)

func (r *recordSet) Model() internal.Model {
	return r.model
}

// Values runs a fresh projection query restricted to the named fields.
func (r *recordSet) Values(ctx context.Context, fields []string) ([]internal.Row, error) {
	if len(fields) == 0 {
		fields = exportableFields(r.model)
	}
	cols := make([]string, 0, len(fields))
	for _, name := range fields {
		cols = append(cols, r.p.quote(name))
	}
	var query strings.Builder
	query.WriteString("SELECT ")
	query.WriteString(strings.Join(cols, ", "))
	query.WriteString(" FROM ")
	query.WriteString(r.p.quote(r.model.Table))
	where, args := r.whereKeys("")
	query.WriteString(where)
	rows, err := r.query(ctx, query.String(), args)
	if err != nil {
		return nil, err
	}
	r.cache = asItems(rows)
	return rows, nil
}

// Records runs a fresh query that also joins each related table to fetch the
// display column for foreign-key and one-to-one fields.
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
		sel = append(sel, "t."+r.p.quote(f.Name))
		if f.Kind.Related() && f.RelatedDisplay != "" {
			alias := fmt.Sprintf("r%d", len(joins))
			joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = t.%s",
				r.p.quote(f.RelatedTable), alias, alias, r.p.quote(f.RelatedKey), r.p.quote(f.Name)))
			sel = append(sel, fmt.Sprintf("%s.%s AS %s", alias, r.p.quote(f.RelatedDisplay), r.p.quote(f.Name+internal.DisplaySuffix)))
		}
	}
	var query strings.Builder
	query.WriteString("SELECT ")
	query.WriteString(strings.Join(sel, ", "))
	query.WriteString(" FROM ")
	query.WriteString(r.p.quote(r.model.Table))
	query.WriteString(" t")
	for _, join := range joins {
		query.WriteString(" ")
		query.WriteString(join)
	}
	where, args := r.whereKeys("t.")
	query.WriteString(where)
	rows, err := r.query(ctx, query.String(), args)
	if err != nil {
		return nil, err
	}
	records := make([]internal.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, internal.NewMapRecord(r.model, row))
	}
	r.cache = make([]any, 0, len(records))
	for _, rec := range records {
		r.cache = append(r.cache, rec)
	}
	return records, nil
}

// ByPrimaryKeys returns a new set restricted to the given primary keys. The
// restriction binds one parameter per key, so it fails once the key count
// exceeds what the backing store accepts in a single statement.
func (r *recordSet) ByPrimaryKeys(ctx context.Context, keys []any) (internal.RecordSet, error) {
	if len(keys) > r.p.maxParams {
		return nil, errors.Wrapf(internal.ErrTooLarge,
			"%d primary keys exceeds the %d bind parameter limit for %s", len(keys), r.p.maxParams, r.p.driver)
	}
	return &recordSet{p: r.p, model: r.model, keys: keys}, nil
}

func (r *recordSet) Materialized() ([]any, bool) {
	if r.cache == nil {
		return nil, false
	}
	return r.cache, true
}

func (r *recordSet) whereKeys(prefix string) (string, []any) {
	if len(r.keys) == 0 {
		return "", nil
	}
	holders := make([]string, 0, len(r.keys))
	for i := range r.keys {
		holders = append(holders, r.p.placeholder(i+1))
	}
	return fmt.Sprintf(" WHERE %s%s IN (%s)", prefix, r.p.quote(r.model.PrimaryKey), strings.Join(holders, ", ")), r.keys
}

func (r *recordSet) query(ctx context.Context, query string, args []any) ([]internal.Row, error) {
	r.p.logger.Trace("query: %s, args: %d", query, len(args))
	res, err := r.p.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isTooManyParams(err) {
			return nil, errors.Mark(err, internal.ErrTooLarge)
		}
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer res.Close()
	cols, err := res.Columns()
	if err != nil {
		return nil, err
	}
	var rows []internal.Row
	for res.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := res.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		row := make(internal.Row, len(cols))
		for i, col := range cols {
			if buf, ok := vals[i].([]byte); ok {
				row[col] = string(buf)
				continue
			}
			row[col] = vals[i]
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// isTooManyParams recognizes the driver messages for exceeding the bind
// parameter cap, in case the configured cap is ahead of the server's.
func isTooManyParams(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "too many SQL variables") ||
		strings.Contains(msg, "too many placeholders")
}

func asItems(rows []internal.Row) []any {
	items := make([]any, 0, len(rows))
	for _, row := range rows {
		items = append(items, row)
	}
	return items
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
