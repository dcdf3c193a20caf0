package parser

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

func convertSchema(ref *openapi3.SchemaRef) pkgopenapi.Schema {
	if ref == nil {
		return pkgopenapi.Schema{}
	}
	if ref.Value == nil {
		return pkgopenapi.Schema{Ref: ref.Ref}
	}
	src := ref.Value
	schema := pkgopenapi.Schema{
		Ref:         ref.Ref,
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
		Pattern:     src.Pattern,
		Hints:       extractHints(src.Extensions),
	}

	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]pkgopenapi.Schema, len(src.Properties))
		for name, property := range src.Properties {
			schema.Properties[name] = convertSchema(property)
		}
	}
	if src.Items != nil {
		items := convertSchema(src.Items)
		schema.Items = &items
	}
	if src.Min != nil {
		value := *src.Min
		schema.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		schema.Maximum = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		schema.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		schema.MaxLength = &value
	}
	return schema
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		// nullable unions such as ["string", "null"] keep the concrete type
		for _, value := range values {
			if value != "null" {
				return value
			}
		}
		return values[0]
	}
}

func extractHints(raw map[string]any) map[string]string {
	value, ok := raw[pkgopenapi.HintsExtension]
	if !ok {
		return nil
	}
	mapped, ok := value.(map[string]any)
	if !ok || len(mapped) == 0 {
		return nil
	}
	hints := make(map[string]string, len(mapped))
	for key, val := range mapped {
		key = strings.TrimSpace(key)
		if key == "" || val == nil {
			continue
		}
		hints[key] = fmt.Sprint(val)
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}
