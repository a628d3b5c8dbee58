package transcript

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// ToolSpec describes a tool the remote agent may invoke: its name, a
// human-readable description attached to emitted tool events, and a JSON
// schema reflected from a Go parameter struct.
type ToolSpec struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// NewToolSpec builds a spec whose schema is reflected from parameters,
// which may be a struct value or a pointer to one.
func NewToolSpec(name, description string, parameters any) ToolSpec {
	spec := ToolSpec{Name: name, Description: description}
	if parameters == nil {
		return spec
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	if reflect.TypeOf(parameters).Kind() == reflect.Ptr {
		spec.Schema = reflector.ReflectFromType(reflect.TypeOf(parameters).Elem())
	} else {
		spec.Schema = reflector.Reflect(parameters)
	}
	return spec
}
