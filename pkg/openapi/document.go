package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Source identifies where an OpenAPI document originated so loaders can
// operate on files, fs.FS entries, or URLs without leaking implementation
// details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Document wraps the raw OpenAPI payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs. The
// payload must at least look like an OpenAPI/Swagger document.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	if !Detect(raw) {
		return Document{}, fmt.Errorf("openapi: %s does not look like an OpenAPI document", src.Location())
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the OpenAPI payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Detect reports whether the payload appears to be an OpenAPI or Swagger
// document, in either JSON or YAML form.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, openapi := payload["openapi"]
			_, swagger := payload["swagger"]
			return openapi || swagger
		}
	}
	lower := strings.ToLower(string(trimmed))
	return strings.Contains(lower, "openapi:") || strings.Contains(lower, "swagger:")
}

// Media types recognised for request bodies, in order of preference. The
// first one matches what a browser sends for a form with file inputs.
const (
	MediaTypeMultipart  = "multipart/form-data"
	MediaTypeURLEncoded = "application/x-www-form-urlencoded"
	MediaTypeJSON       = "application/json"
)

// Operation models the subset of OpenAPI operation metadata needed to build
// and submit a form.
type Operation struct {
	ID               string
	Method           string
	Path             string
	Summary          string
	Description      string
	Servers          []string
	RequestBody      Schema
	RequestMediaType string
	Responses        map[string]Schema
}

// NewOperation validates core fields and initialises response maps.
func NewOperation(id, method, path string, request Schema, responses map[string]Schema) (Operation, error) {
	if id == "" {
		return Operation{}, errors.New("openapi: operation id is required")
	}
	if method == "" {
		return Operation{}, errors.New("openapi: operation method is required")
	}
	if path == "" {
		return Operation{}, errors.New("openapi: operation path is required")
	}
	if responses == nil {
		responses = make(map[string]Schema)
	}

	return Operation{
		ID:          id,
		Method:      strings.ToUpper(method),
		Path:        path,
		RequestBody: request,
		Responses:   responses,
	}, nil
}

// MustNewOperation panics when construction fails, assisting fixtures/tests.
func MustNewOperation(id, method, path string, request Schema, responses map[string]Schema) Operation {
	op, err := NewOperation(id, method, path, request, responses)
	if err != nil {
		panic(err)
	}
	return op
}

// HasResponse reports whether a response code has a schema registered.
func (op Operation) HasResponse(code string) bool {
	_, ok := op.Responses[code]
	return ok
}

// AcceptsForm reports whether the operation can be driven by a form post.
func (op Operation) AcceptsForm() bool {
	if op.Method != http.MethodPost && op.Method != http.MethodPut && op.Method != http.MethodPatch {
		return false
	}
	return op.RequestMediaType == MediaTypeMultipart || op.RequestMediaType == MediaTypeURLEncoded
}

// Schema represents request/response bodies and nested fields within an
// operation.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Required    []string
	Properties  map[string]Schema
	Order       []string
	Items       *Schema
	Enum        []any
	Description string
	Default     any
	Minimum     *float64
	Maximum     *float64
	MinLength   *int
	MaxLength   *int
	Pattern     string
	// Hints carries the string entries of the x-formpost extension, e.g.
	// {"input": "textarea"} or {"secret": "true"}.
	Hints map[string]string
}

// HintsExtension is the vendor extension read into Schema.Hints.
const HintsExtension = "x-formpost"

// Clone creates a deep copy of the schema tree to avoid accidental mutation.
func (s Schema) Clone() Schema {
	cloned := s
	if len(s.Required) > 0 {
		cloned.Required = append([]string(nil), s.Required...)
	}
	if len(s.Order) > 0 {
		cloned.Order = append([]string(nil), s.Order...)
	}
	if len(s.Enum) > 0 {
		cloned.Enum = append([]any(nil), s.Enum...)
	}
	if len(s.Properties) > 0 {
		cloned.Properties = make(map[string]Schema, len(s.Properties))
		for k, v := range s.Properties {
			cloned.Properties[k] = v.Clone()
		}
	}
	if s.Items != nil {
		items := s.Items.Clone()
		cloned.Items = &items
	}
	if len(s.Hints) > 0 {
		cloned.Hints = make(map[string]string, len(s.Hints))
		for k, v := range s.Hints {
			cloned.Hints[k] = v
		}
	}
	return cloned
}

// IsRequired reports whether the named property is listed as required.
func (s Schema) IsRequired(name string) bool {
	for _, req := range s.Required {
		if req == name {
			return true
		}
	}
	return false
}

// DebugString renders the schema for logging without exposing kin-openapi
// structures.
func (s Schema) DebugString() string {
	summary := fmt.Sprintf("type=%s", s.Type)
	if s.Ref != "" {
		summary += fmt.Sprintf(",ref=%s", s.Ref)
	}
	if len(s.Required) > 0 {
		summary += fmt.Sprintf(",required=%d", len(s.Required))
	}
	if len(s.Properties) > 0 {
		summary += fmt.Sprintf(",properties=%d", len(s.Properties))
	}
	if s.Items != nil {
		summary += ",items=true"
	}
	return summary
}
