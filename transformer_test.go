package formpost

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presetForm() model.FormModel {
	return model.FormModel{Fields: []model.Field{
		{Name: "text", Type: model.FieldTypeString, Required: true},
		{Name: "provider", Type: model.FieldTypeString, Enum: []any{"openai", "anthropic"}, Default: "openai"},
		{Name: "base_url", Type: model.FieldTypeString},
		{Name: "template_file", Type: model.FieldTypeFile, Required: true},
	}}
}

func TestPresetTransformer_AppliesOverrides(t *testing.T) {
	transformer, err := NewPresetTransformer([]byte(`
order: [template_file, text]
fields:
  provider:
    default: anthropic
    enum: [anthropic, gemini]
    required: true
  base_url:
    hidden: true
  text:
    label: Slide content
    metadata:
      input: textarea
`))
	require.NoError(t, err)

	form := presetForm()
	require.NoError(t, transformer.Transform(context.Background(), &form))

	var names []string
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	assert.Equal(t, []string{"template_file", "text", "provider"}, names)

	provider, _ := form.Field("provider")
	assert.Equal(t, "anthropic", provider.Default)
	assert.Equal(t, []any{"anthropic", "gemini"}, provider.Enum)
	assert.True(t, provider.Required)

	text, _ := form.Field("text")
	assert.Equal(t, "Slide content", text.Label)
	assert.True(t, text.Multiline())
}

func TestPresetTransformer_AcceptsJSON(t *testing.T) {
	transformer, err := NewPresetTransformer([]byte(`{"fields": {"text": {"description": "Markdown welcome"}}}`))
	require.NoError(t, err)

	form := presetForm()
	require.NoError(t, transformer.Transform(context.Background(), &form))
	text, _ := form.Field("text")
	assert.Equal(t, "Markdown welcome", text.Description)
}

func TestPresetTransformer_Errors(t *testing.T) {
	_, err := NewPresetTransformer([]byte("  "))
	require.ErrorContains(t, err, "document is empty")

	_, err = NewPresetTransformer([]byte("fields: [nope"))
	require.ErrorContains(t, err, "parse document")

	unknown, err := NewPresetTransformer([]byte("fields: {missing: {label: x}}"))
	require.NoError(t, err)
	form := presetForm()
	require.ErrorContains(t, unknown.Transform(context.Background(), &form), `field "missing" not found`)

	badOrder, err := NewPresetTransformer([]byte("order: [ghost]"))
	require.NoError(t, err)
	form = presetForm()
	require.ErrorContains(t, badOrder.Transform(context.Background(), &form), `unknown field "ghost"`)

	require.Error(t, badOrder.Transform(context.Background(), nil))
}

func TestPresetTransformerFromFS(t *testing.T) {
	fsys := fstest.MapFS{"presets/deck.yaml": {Data: []byte("fields: {text: {label: Body}}")}}

	transformer, err := NewPresetTransformerFromFS(fsys, "presets/deck.yaml")
	require.NoError(t, err)
	form := presetForm()
	require.NoError(t, transformer.Transform(context.Background(), &form))
	assert.Equal(t, "Body", form.Fields[0].Label)

	_, err = NewPresetTransformerFromFS(fsys, "missing.yaml")
	require.Error(t, err)
	_, err = NewPresetTransformerFromFS(nil, "x")
	require.Error(t, err)
}
