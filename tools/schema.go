package tools

import (
	"github.com/invopop/jsonschema"

	"github.com/tzervas/embeddenator-webpuppet-mcp/mcp"
)

// reflectInputSchema reflects a typed argument struct into the simplified
// MCP input schema. Descriptions and enums come from jsonschema struct
// tags on A. Unknown fields are rejected at validation time, so the
// generated schema pins additionalProperties to false.
func reflectInputSchema[A any]() mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference: true, // inline defs
		ExpandedStruct: true, // put struct at root
	}
	s := r.Reflect(new(A))

	// Only object schemas map onto MCP tool input. Argument-less tools
	// reflect struct{} and land here with an empty property set.
	if s == nil || s.Type != "object" {
		return mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]mcp.SchemaProperty{},
		}
	}

	props := make(map[string]mcp.SchemaProperty)
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			props[el.Key] = toSchemaProperty(el.Value)
		}
	}

	var required []string
	if len(s.Required) > 0 {
		required = append(required, s.Required...)
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func toSchemaProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{
		Type:        s.Type,
		Description: s.Description,
	}
	if s.Items != nil {
		items := toSchemaProperty(s.Items)
		p.Items = &items
	}
	if s.Properties != nil {
		p.Properties = make(map[string]mcp.SchemaProperty)
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			p.Properties[el.Key] = toSchemaProperty(el.Value)
		}
	}
	if len(s.Enum) > 0 {
		p.Enum = append(p.Enum, s.Enum...)
	}
	return p
}
