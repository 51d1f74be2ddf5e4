package model

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

const (
	SchemaChangeEvent = "change-event"
	SchemaAlertEvent  = "alert-event"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// PayloadSchema returns the JSON Schema of a queue payload by name.
func PayloadSchema(name string) (*jsonschema.Schema, bool) {
	r := &jsonschema.Reflector{
		// Consumers must tolerate fields added later.
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == decimalType {
				return &jsonschema.Schema{Type: "number"}
			}
			return nil
		},
	}

	switch name {
	case SchemaChangeEvent:
		return r.Reflect(&ChangeEvent{}), true
	case SchemaAlertEvent:
		s := r.Reflect(&AlertEvent{})
		if prop, ok := s.Properties.Get("alertType"); ok {
			prop.Enum = []any{string(AlertTypeIncrease), string(AlertTypeDecrease)}
		}
		return s, true
	default:
		return nil, false
	}
}
