package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookModel = Model{
	Table:      "book",
	PrimaryKey: "id",
	Fields: []Field{
		{Name: "id"},
		{Name: "title", Label: "Title"},
		{Name: "author", Kind: FieldKindForeignKey, RelatedTable: "author", RelatedKey: "id", RelatedDisplay: "name"},
	},
}

func TestMapRecord(t *testing.T) {
	rec := NewMapRecord(bookModel, Row{
		"id":                     1,
		"title":                  "first",
		"author":                 7,
		"author" + DisplaySuffix: "someone",
	})

	val, err := rec.Field("title")
	require.NoError(t, err)
	assert.Equal(t, "first", val)

	val, err = rec.Field("author")
	require.NoError(t, err)
	ref, ok := val.(Reference)
	require.True(t, ok)
	assert.Equal(t, 7, ref.Key)
	assert.Equal(t, "someone", ref.Display)

	_, err = rec.Field("missing")
	assert.Error(t, err)
}

func TestMapRecordNoDisplay(t *testing.T) {
	rec := NewMapRecord(bookModel, Row{"author": 7})
	val, err := rec.Field("author")
	require.NoError(t, err)
	// with no display column the reference renders its key
	assert.Equal(t, "7", val.(Reference).String())
}

func TestReferenceString(t *testing.T) {
	assert.Equal(t, "someone", Reference{Key: 7, Display: "someone"}.String())
	assert.Equal(t, "7", Reference{Key: 7}.String())
}

func TestFieldKind(t *testing.T) {
	assert.True(t, FieldKindForeignKey.Related())
	assert.True(t, FieldKindOneToOne.Related())
	assert.False(t, FieldKindScalar.Related())
	assert.False(t, FieldKindManyToMany.Related())
}
