package formpost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-formpost/pkg/model"
	"gopkg.in/yaml.v3"
)

// Transformer mutates a FormModel after it is built. Implementations can
// relabel fields, change defaults, hide fields or reorder them.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PresetTransformer applies declarative overrides read from YAML (or JSON):
//
//	order: [text, template_file]
//	fields:
//	  provider: {default: anthropic}
//	  base_url: {hidden: true}
//	  text: {label: Slide content, metadata: {input: textarea}}
//
// Fields named in order move to the front in that order; the rest keep their
// relative order.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Order  []string               `yaml:"order"`
	Fields map[string]fieldPreset `yaml:"fields"`
}

type fieldPreset struct {
	Label       string            `yaml:"label"`
	Description string            `yaml:"description"`
	Default     any               `yaml:"default"`
	Required    *bool             `yaml:"required"`
	Hidden      bool              `yaml:"hidden"`
	Enum        []any             `yaml:"enum"`
	Metadata    map[string]string `yaml:"metadata"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the preset onto form. Naming a field the form does not
// have is an error.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	names := make([]string, 0, len(t.document.Fields))
	for name := range t.document.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	hidden := make(map[string]bool)
	for _, name := range names {
		field := findField(form.Fields, name)
		if field == nil {
			return fmt.Errorf("preset transformer: field %q not found", name)
		}
		patch := t.document.Fields[name]
		applyFieldPreset(field, patch)
		if patch.Hidden {
			hidden[name] = true
		}
	}

	if len(hidden) > 0 {
		kept := form.Fields[:0]
		for _, field := range form.Fields {
			if !hidden[field.Name] {
				kept = append(kept, field)
			}
		}
		form.Fields = kept
	}

	if len(t.document.Order) > 0 {
		reordered, err := reorderFields(form.Fields, t.document.Order)
		if err != nil {
			return err
		}
		form.Fields = reordered
	}
	return nil
}

func applyFieldPreset(field *model.Field, patch fieldPreset) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Default != nil {
		field.Default = patch.Default
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if len(patch.Enum) > 0 {
		field.Enum = append([]any(nil), patch.Enum...)
	}
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
}

func findField(fields []model.Field, name string) *model.Field {
	for idx := range fields {
		if fields[idx].Name == name {
			return &fields[idx]
		}
	}
	return nil
}

func reorderFields(fields []model.Field, order []string) ([]model.Field, error) {
	placed := make(map[string]bool, len(order))
	out := make([]model.Field, 0, len(fields))
	for _, name := range order {
		field := findField(fields, name)
		if field == nil {
			return nil, fmt.Errorf("preset transformer: order names unknown field %q", name)
		}
		if placed[name] {
			continue
		}
		placed[name] = true
		out = append(out, *field)
	}
	for _, field := range fields {
		if !placed[field.Name] {
			out = append(out, field)
		}
	}
	return out, nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	out := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
