package specification

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema es el formato persistido de la especificación dentro de cotizaciones y trabajos.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["size", "paper", "finishing"],
  "properties": {
    "size": {
      "oneOf": [
        {
          "type": "object",
          "required": ["type", "preset"],
          "properties": {
            "type": {"const": "standard"},
            "preset": {"type": "string"}
          }
        },
        {
          "type": "object",
          "required": ["type", "width", "height", "unit"],
          "properties": {
            "type": {"const": "custom"},
            "width": {"type": ["number", "string"]},
            "height": {"type": ["number", "string"]},
            "unit": {"type": "string", "enum": ["mm", "cm", "in"]}
          }
        }
      ]
    },
    "paper": {
      "type": "object",
      "required": ["type", "weight"],
      "properties": {
        "type": {"type": "string"},
        "weight": {"type": "integer", "minimum": 0}
      }
    },
    "finishing": {
      "type": "object",
      "required": ["selectedIds"],
      "properties": {
        "selectedIds": {"type": ["array", "null"], "items": {"type": "string"}},
        "priceOverridesById": {
          "type": ["object", "null"],
          "additionalProperties": {"type": ["number", "string"]}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

// FieldError una violación del esquema.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lista todas las violaciones encontradas en un snapshot.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "invalid specification snapshot: " + strings.Join(parts, "; ")
}

// Unwrap permite a los llamadores comparar con domain.ErrInvalidInput.
func (ve *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// ValidateSnapshot valida JSON crudo contra el formato persistido del snapshot.
func ValidateSnapshot(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// DecodeSnapshot valida y decodifica un snapshot guardado.
func DecodeSnapshot(raw []byte) (entity.Specification, error) {
	var spec entity.Specification
	if err := ValidateSnapshot(raw); err != nil {
		return spec, err
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return spec, nil
}

// EncodeSnapshot serializa una especificación y valida el resultado, para no guardar nada mal formado.
func EncodeSnapshot(spec entity.Specification) ([]byte, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}
	if err := ValidateSnapshot(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
