package exporter

import (
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/util"
)

// SelectFields determines which fields to include in the export.
//
// Deferred names win over only on overlap. If the effective inclusion list is
// non-empty it selects the fields; otherwise a non-empty deferred list
// excludes fields; otherwise every field is kept. Many-to-many fields are
// dropped unconditionally (unsupported). The result keeps declaration order.
func SelectFields(fields []internal.Field, only []string, deferred []string) []internal.Field {
	effective := make([]string, 0, len(only))
	for _, name := range only {
		if !util.SliceContains(deferred, name) {
			effective = append(effective, name)
		}
	}
	res := make([]internal.Field, 0, len(fields))
	for _, f := range fields {
		if f.Kind == internal.FieldKindManyToMany {
			continue
		}
		switch {
		case len(effective) > 0:
			if util.SliceContains(effective, f.Name) {
				res = append(res, f)
			}
		case len(deferred) > 0:
			if !util.SliceContains(deferred, f.Name) {
				res = append(res, f)
			}
		default:
			res = append(res, f)
		}
	}
	return res
}

// FieldNames converts the selected fields to a list of names plus the header
// row values. The header list is nil when no header row was requested and
// uses the declared labels when verbose.
func FieldNames(fields []internal.Field, header bool, verbose bool) ([]string, []string) {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	if !header {
		return names, nil
	}
	if !verbose {
		return names, names
	}
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.DisplayLabel())
	}
	return names, labels
}
