package model

import "strings"

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeFile    FieldType = "file"
)

// Metadata keys understood by the prompt collector and encoder.
const (
	MetadataInput  = "input"
	MetadataSecret = "secret"
	MetadataAccept = "accept"
)

// Field models an individual input inside a form.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Minimum     *float64          `json:"minimum,omitempty"`
	Maximum     *float64          `json:"maximum,omitempty"`
	MinLength   *int              `json:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"`
	Pattern     string            `json:"pattern,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

var secretNameHints = []string{"password", "secret", "api_key", "apikey", "token"}

// Secret reports whether the value should be masked while typing and in logs.
func (f Field) Secret() bool {
	if f.Format == "password" || strings.EqualFold(f.Metadata[MetadataSecret], "true") {
		return true
	}
	lower := strings.ToLower(f.Name)
	for _, hint := range secretNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// Multiline reports whether the field expects long free text.
func (f Field) Multiline() bool {
	return f.Format == "textarea" || f.Metadata[MetadataInput] == "textarea"
}

// DisplayLabel returns the label, falling back to the field name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// FormModel is the submittable form: where it posts, how the body is encoded
// and which fields it carries, in display order.
type FormModel struct {
	OperationID string  `json:"operationId"`
	Action      string  `json:"action"`
	Method      string  `json:"method"`
	Encoding    string  `json:"encoding"`
	Summary     string  `json:"summary,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Field looks up a field by name.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
