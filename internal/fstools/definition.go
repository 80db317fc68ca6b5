package fstools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

// Definition is one tool: its advertised shape and the function behind it.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Function    func(root *sandbox.Root, input json.RawMessage) (string, error)
}

// GenerateSchema reflects T into an inline JSON Schema object.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	return m
}

// Registry returns every file tool.
func Registry() []Definition {
	return []Definition{ReadFileDefinition, ListFilesDefinition, EditFileDefinition}
}
