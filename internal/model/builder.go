package model

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

// Builder converts OpenAPI operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	opts.BaseURL = strings.TrimSpace(options.BaseURL)
	return &Builder{opts: opts}
}

// Build transforms an OpenAPI operation into a FormModel whose action is an
// absolute URL. The configured base URL wins over the servers declared by the
// document.
func (b *Builder) Build(op pkgopenapi.Operation) (FormModel, error) {
	if err := validateOperation(op); err != nil {
		return FormModel{}, err
	}

	action, err := b.resolveAction(op)
	if err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		OperationID: op.ID,
		Action:      action,
		Method:      strings.ToUpper(op.Method),
		Encoding:    op.RequestMediaType,
		Summary:     plainText(op.Summary),
		Description: plainText(op.Description),
	}

	order := op.RequestBody.Order
	if len(order) == 0 {
		order = sortedKeys(op.RequestBody.Properties)
	}
	for _, name := range order {
		schema, ok := op.RequestBody.Properties[name]
		if !ok {
			continue
		}
		form.Fields = append(form.Fields, b.fieldFromSchema(name, schema, op.RequestBody.IsRequired(name)))
	}

	return form, nil
}

func (b *Builder) resolveAction(op pkgopenapi.Operation) (string, error) {
	return ResolveURL(b.opts.BaseURL, op)
}

// ResolveURL joins the operation path onto baseURL, or onto the first server
// of the operation when baseURL is empty.
func ResolveURL(baseURL string, op pkgopenapi.Operation) (string, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" && len(op.Servers) > 0 {
		base = op.Servers[0]
	}
	if base == "" {
		return "", fmt.Errorf("model builder: no server to resolve %s against; configure a base URL", op.Path)
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("model builder: invalid base URL %q: %w", base, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("model builder: base URL %q must be http or https", base)
	}
	return parsed.JoinPath(op.Path).String(), nil
}

func (b *Builder) fieldFromSchema(name string, schema pkgopenapi.Schema, required bool) Field {
	field := Field{
		Name:        name,
		Type:        fieldType(schema),
		Format:      schema.Format,
		Required:    required,
		Label:       plainText(schema.Title),
		Description: plainText(schema.Description),
		Default:     schema.Default,
		Pattern:     schema.Pattern,
		Minimum:     schema.Minimum,
		Maximum:     schema.Maximum,
		MinLength:   schema.MinLength,
		MaxLength:   schema.MaxLength,
	}
	if field.Label == "" {
		field.Label = b.opts.Labeler(name)
	}
	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}
	if len(schema.Hints) > 0 {
		field.Metadata = make(map[string]string, len(schema.Hints))
		for key, value := range schema.Hints {
			field.Metadata[key] = value
		}
	}
	if field.Type == FieldTypeArray && schema.Items != nil {
		items := b.fieldFromSchema(name, *schema.Items, false)
		field.Items = &items
	}
	return field
}

func fieldType(schema pkgopenapi.Schema) FieldType {
	switch schema.Type {
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	case "string", "":
		if schema.Format == "binary" || schema.Format == "base64" {
			return FieldTypeFile
		}
		return FieldTypeString
	default:
		return FieldTypeString
	}
}

func sortedKeys(props map[string]pkgopenapi.Schema) []string {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
