package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

func uploadOperation() pkgopenapi.Operation {
	op := pkgopenapi.MustNewOperation("upload", "post", "/v1/upload", pkgopenapi.Schema{
		Type:     "object",
		Required: []string{"title", "attachment"},
		Order:    []string{"title", "count", "attachment", "notify", "tags"},
		Properties: map[string]pkgopenapi.Schema{
			"title":      {Type: "string", Title: "Document title", Hints: map[string]string{"input": "textarea"}},
			"count":      {Type: "integer", Default: float64(3)},
			"attachment": {Type: "string", Format: "binary"},
			"notify":     {Type: "boolean"},
			"tags":       {Type: "array", Items: &pkgopenapi.Schema{Type: "string", Enum: []any{"a", "b"}}},
		},
	}, nil)
	op.RequestMediaType = pkgopenapi.MediaTypeMultipart
	op.Servers = []string{"https://api.example.test/base"}
	return op
}

func TestBuild_FieldsFollowDeclaredOrder(t *testing.T) {
	form, err := New(Options{}).Build(uploadOperation())
	require.NoError(t, err)

	assert.Equal(t, "upload", form.OperationID)
	assert.Equal(t, "POST", form.Method)
	assert.Equal(t, "https://api.example.test/base/v1/upload", form.Action)
	assert.Equal(t, pkgopenapi.MediaTypeMultipart, form.Encoding)

	names := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"title", "count", "attachment", "notify", "tags"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	title, ok := form.Field("title")
	require.True(t, ok)
	assert.True(t, title.Required)
	assert.Equal(t, "Document title", title.Label)
	assert.True(t, title.Multiline())

	attachment, _ := form.Field("attachment")
	assert.Equal(t, FieldTypeFile, attachment.Type)
	assert.True(t, attachment.Required)

	count, _ := form.Field("count")
	assert.Equal(t, FieldTypeInteger, count.Type)
	assert.Equal(t, "Count", count.Label)

	tags, _ := form.Field("tags")
	require.NotNil(t, tags.Items)
	assert.Equal(t, []any{"a", "b"}, tags.Items.Enum)
}

func TestBuild_BaseURLOverridesServers(t *testing.T) {
	form, err := New(Options{BaseURL: "http://127.0.0.1:9000/"}).Build(uploadOperation())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/v1/upload", form.Action)
}

func TestBuild_Errors(t *testing.T) {
	noServer := uploadOperation()
	noServer.Servers = nil
	_, err := New(Options{}).Build(noServer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configure a base URL")

	jsonBody := uploadOperation()
	jsonBody.RequestMediaType = pkgopenapi.MediaTypeJSON
	_, err = New(Options{}).Build(jsonBody)
	require.ErrorIs(t, err, errOperationNotForm)

	_, err = New(Options{BaseURL: "ftp://files.example.test"}).Build(uploadOperation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be http or https")

	nested := uploadOperation()
	nested.RequestBody.Properties["meta"] = pkgopenapi.Schema{Type: "object"}
	_, err = New(Options{}).Build(nested)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested objects")
}

func TestBuild_FallsBackToSortedNames(t *testing.T) {
	op := uploadOperation()
	op.RequestBody.Order = nil
	form, err := New(Options{}).Build(op)
	require.NoError(t, err)
	assert.Equal(t, "attachment", form.Fields[0].Name)
	assert.Equal(t, "title", form.Fields[len(form.Fields)-1].Name)
}

func TestBuild_DocumentTextIsPlain(t *testing.T) {
	op := uploadOperation()
	op.Summary = "<b>Upload</b> a file"
	title := op.RequestBody.Properties["title"]
	title.Title = "<em>Document</em> title"
	title.Description = "Shown on the <a href=\"https://x.test\">cover</a> &amp; index"
	op.RequestBody.Properties["title"] = title

	form, err := New(Options{}).Build(op)
	require.NoError(t, err)
	assert.Equal(t, "Upload a file", form.Summary)
	assert.Equal(t, "Document title", form.Fields[0].Label)
	assert.Equal(t, "Shown on the cover & index", form.Fields[0].Description)
}

func TestBuild_RejectsInvalidPattern(t *testing.T) {
	op := uploadOperation()
	title := op.RequestBody.Properties["title"]
	title.Pattern = "([a-z"
	op.RequestBody.Properties["title"] = title

	_, err := New(Options{}).Build(op)
	require.ErrorContains(t, err, `property "title": invalid pattern "([a-z"`)

	title.Pattern = "^[A-Z]"
	op.RequestBody.Properties["title"] = title
	form, err := New(Options{}).Build(op)
	require.NoError(t, err)
	assert.Equal(t, "^[A-Z]", form.Fields[0].Pattern)
}

func TestCompilePattern_Caches(t *testing.T) {
	first, err := CompilePattern("^deck-[0-9]+$")
	require.NoError(t, err)
	second, err := CompilePattern("^deck-[0-9]+$")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = CompilePattern("(")
	require.Error(t, err)
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"api_key":        "API key",
		"base_url":       "Base URL",
		"generate_notes": "Generate notes",
		"templateFile":   "Template file",
		"model":          "Model",
		"":               "",
	}
	for input, want := range cases {
		assert.Equal(t, want, DefaultLabeler(input), input)
	}
}

func TestFieldSecret(t *testing.T) {
	assert.True(t, Field{Name: "api_key"}.Secret())
	assert.True(t, Field{Name: "x", Format: "password"}.Secret())
	assert.True(t, Field{Name: "x", Metadata: map[string]string{MetadataSecret: "true"}}.Secret())
	assert.False(t, Field{Name: "model"}.Secret())
}
