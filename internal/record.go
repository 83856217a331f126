package internal

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// DisplaySuffix is the column suffix providers use to carry a related
// record's display value alongside its key in a projected row.
const DisplaySuffix = "__display"

type mapRecord struct {
	model Model
	row   Row
}

var _ Record = (*mapRecord)(nil)

// NewMapRecord returns a Record backed by a projected row. Foreign-key and
// one-to-one fields resolve to Reference values, using the row's
// name+DisplaySuffix column as the display form when present.
func NewMapRecord(model Model, row Row) Record {
	return &mapRecord{model: model, row: row}
}

func (r *mapRecord) Field(name string) (any, error) {
	f, ok := r.model.Field(name)
	if !ok {
		return nil, errors.Newf("model %s has no field %s", r.model.Table, name)
	}
	val, ok := r.row[name]
	if !ok {
		return nil, errors.Newf("record has no value for field %s", name)
	}
	if f.Kind.Related() {
		ref := Reference{Key: val}
		if display, ok := r.row[name+DisplaySuffix]; ok && display != nil {
			switch d := display.(type) {
			case string:
				ref.Display = d
			case []byte:
				ref.Display = string(d)
			default:
				ref.Display = fmt.Sprintf("%v", d)
			}
		}
		return ref, nil
	}
	return val, nil
}
