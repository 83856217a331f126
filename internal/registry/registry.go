// Package registry loads model metadata from a JSON file, validating it
// against an embedded schema before use.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	js "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/csvexport/internal/util"
)

const modelSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"$id": "models.schema.json",
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["primaryKey", "fields"],
		"properties": {
			"table": { "type": "string" },
			"primaryKey": { "type": "string", "minLength": 1 },
			"fields": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["name"],
					"properties": {
						"name": { "type": "string", "minLength": 1 },
						"label": { "type": "string" },
						"kind": { "enum": ["scalar", "foreign-key", "one-to-one", "many-to-many"] },
						"relatedTable": { "type": "string" },
						"relatedKey": { "type": "string" },
						"relatedDisplay": { "type": "string" }
					},
					"additionalProperties": false
				}
			}
		},
		"additionalProperties": false
	}
}`

// Load reads the model metadata file and returns the validated models.
func Load(filename string) (internal.ModelMap, error) {
	if !util.Exists(filename) {
		return nil, fmt.Errorf("models file does not exist: %s", filename)
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading models file: %w", err)
	}
	var doc any
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("error decoding models file: %w", err)
	}
	compiler := js.NewCompiler()
	if err := compiler.AddResource("models.schema.json", strings.NewReader(modelSchema)); err != nil {
		return nil, fmt.Errorf("error adding schema: %w", err)
	}
	schema, err := compiler.Compile("models.schema.json")
	if err != nil {
		return nil, fmt.Errorf("error compiling schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid models file %s: %w", filename, err)
	}
	models := make(internal.ModelMap)
	if err := json.Unmarshal(buf, &models); err != nil {
		return nil, fmt.Errorf("error decoding models file: %w", err)
	}
	for table, model := range models {
		if model.Table == "" {
			model.Table = table
		}
		if _, ok := model.Field(model.PrimaryKey); !ok {
			return nil, fmt.Errorf("model %s declares primary key %s but no such field", table, model.PrimaryKey)
		}
		for _, f := range model.Fields {
			if f.Kind.Related() && (f.RelatedTable == "" || f.RelatedKey == "") {
				return nil, fmt.Errorf("field %s of model %s is %s but is missing relatedTable or relatedKey", f.Name, table, f.Kind)
			}
		}
	}
	return models, nil
}
