package internal

// FieldKind is the relationship kind of an exportable field.
type FieldKind string

const (
	FieldKindScalar     FieldKind = "scalar"
	FieldKindForeignKey FieldKind = "foreign-key"
	FieldKindOneToOne   FieldKind = "one-to-one"
	FieldKindManyToMany FieldKind = "many-to-many"
)

// Related reports whether the field points at a single related record.
func (k FieldKind) Related() bool {
	return k == FieldKindForeignKey || k == FieldKindOneToOne
}

// Field is the metadata for one exportable column of a model.
type Field struct {
	Name  string    `json:"name"`
	Label string    `json:"label,omitempty"`
	Kind  FieldKind `json:"kind,omitempty"`

	// RelatedTable, RelatedKey and RelatedDisplay describe the record a
	// foreign-key or one-to-one field points at. RelatedDisplay is the column
	// used as the string representation of the related record.
	RelatedTable   string `json:"relatedTable,omitempty"`
	RelatedKey     string `json:"relatedKey,omitempty"`
	RelatedDisplay string `json:"relatedDisplay,omitempty"`
}

// DisplayLabel returns the human readable label for the field, falling back
// to the raw field name when no label was declared.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Model is the schema metadata for a record type.
type Model struct {
	Table      string  `json:"table"`
	PrimaryKey string  `json:"primaryKey"`
	Fields     []Field `json:"fields"`
}

// Field returns the metadata for the named field.
func (m Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in declaration order.
func (m Model) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		names = append(names, f.Name)
	}
	return names
}

// ModelMap is a map of table names to models.
type ModelMap map[string]*Model
