package main

import (
	"encoding/json"

	"github.com/google/generative-ai-go/genai"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func geminiTools(tools []*mcp.Tool) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  convertSchema(schemaMap(t.InputSchema)),
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// schemaMap normalizes whatever the SDK decoded the input schema into
func schemaMap(schema any) map[string]any {
	if m, ok := schema.(map[string]any); ok {
		return m
	}
	if schema == nil {
		return nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func convertSchema(m map[string]any) *genai.Schema {
	out := &genai.Schema{Type: genai.TypeObject}
	if m == nil {
		return out
	}

	switch m["type"] {
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	}
	if d, ok := m["description"].(string); ok {
		out.Description = d
	}

	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			pm, _ := p.(map[string]any)
			out.Properties[name] = convertSchema(pm)
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		out.Items = convertSchema(items)
	}
	return out
}
