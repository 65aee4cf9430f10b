package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultSchema returns a JSON-Schema (draft 2020-12 subset) describing
// the serialized Result. It is the machine-checkable form of the caller
// contract: field names, null-ability and confidence bounds.
func BuildResultSchema() map[string]any {
	isoDate := map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{4}-\d{2}-\d{2}$`}
	optAmount := map[string]any{"type": []string{"number", "null"}, "minimum": 0.0}

	supplier := map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": false,
		"required":             []string{"nombre", "confianza"},
		"properties": map[string]any{
			"nombre":    map[string]any{"type": "string", "minLength": 1},
			"direccion": map[string]any{"type": []string{"string", "null"}},
			"telefono":  map[string]any{"type": []string{"string", "null"}},
			"email":     map[string]any{"type": []string{"string", "null"}},
			"cif":       map[string]any{"type": []string{"string", "null"}},
			"confianza": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}

	document := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"tipo"},
		"properties": map[string]any{
			"tipo":   map[string]any{"type": "string", "enum": []string{DocTypeFactura, DocTypeAlbaran}},
			"numero": map[string]any{"type": []string{"string", "null"}},
			"fecha":  isoDate,
			"total":  optAmount,
		},
	}

	product := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"nombre", "cantidad", "unidad", "confianza"},
		"properties": map[string]any{
			"nombre":       map[string]any{"type": "string", "minLength": 1},
			"cantidad":     map[string]any{"type": "number", "exclusiveMinimum": 0.0},
			"unidad":       map[string]any{"type": "string", "minLength": 1},
			"precio":       optAmount,
			"precio_total": optAmount,
			"caducidad":    isoDate,
			"lote":         map[string]any{"type": []string{"string", "null"}},
			"confianza":    map[string]any{"type": "number", "minimum": 0.0, "maximum": 0.95},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"proveedor", "documento", "productos"},
		"properties": map[string]any{
			"proveedor": supplier,
			"documento": document,
			"productos": map[string]any{
				"type":     "array",
				"maxItems": maxProducts,
				"items":    product,
			},
		},
	}
}

// ValidateResult serializes the result and validates it against the schema.
func ValidateResult(res Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return ValidateJSONAgainstSchema(BuildResultSchema(), data)
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
