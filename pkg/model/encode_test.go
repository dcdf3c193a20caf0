package model

import (
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

func generateForm() FormModel {
	return FormModel{
		OperationID: "generate",
		Action:      "http://localhost:8000/generate",
		Method:      "POST",
		Encoding:    pkgopenapi.MediaTypeMultipart,
		Fields: []Field{
			{Name: "text", Type: FieldTypeString, Required: true},
			{Name: "provider", Type: FieldTypeString, Enum: []any{"openai", "anthropic"}, Default: "openai"},
			{Name: "generate_notes", Type: FieldTypeBoolean, Default: false},
			{Name: "template_file", Type: FieldTypeFile, Required: true, Metadata: map[string]string{MetadataAccept: ".pptx,.potx"}},
		},
	}
}

type part struct {
	name, filename, contentType, body string
}

func readParts(t *testing.T, body io.Reader, contentType string) []part {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(body, params["boundary"])
	var parts []part
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, part{
			name:        p.FormName(),
			filename:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			body:        string(data),
		})
	}
	return parts
}

func TestEncode_MultipartOrderBooleansAndFiles(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "brand.pptx")
	require.NoError(t, os.WriteFile(templatePath, []byte("PK-template"), 0o644))

	values := NewValues()
	values.Set("generate_notes", "on")
	values.Set("text", "# Title\n- point")
	values.Set("provider", "anthropic")
	values.Set("zz_extra", "kept")
	require.NoError(t, values.AttachPair("template_file="+templatePath))

	body, contentType, err := Encode(generateForm(), values)
	require.NoError(t, err)

	parts := readParts(t, body, contentType)
	require.Len(t, parts, 5)
	assert.Equal(t, part{name: "text", body: "# Title\n- point"}, parts[0])
	assert.Equal(t, part{name: "provider", body: "anthropic"}, parts[1])
	assert.Equal(t, part{name: "generate_notes", body: "true"}, parts[2])
	assert.Equal(t, "template_file", parts[3].name)
	assert.Equal(t, "brand.pptx", parts[3].filename)
	assert.Equal(t, officeContentTypes[".pptx"], parts[3].contentType)
	assert.Equal(t, "PK-template", parts[3].body)
	assert.Equal(t, part{name: "zz_extra", body: "kept"}, parts[4])
}

func TestEncode_UncheckedBooleanIsOmitted(t *testing.T) {
	values := NewValues()
	values.Set("text", "hello")
	values.Set("generate_notes", "false")
	values.AttachFile("template_file", File{Name: "t.potx", Content: []byte("x")})

	body, contentType, err := Encode(generateForm(), values)
	require.NoError(t, err)

	for _, p := range readParts(t, body, contentType) {
		assert.NotEqual(t, "generate_notes", p.name)
	}
}

func TestEncode_URLEncoded(t *testing.T) {
	form := FormModel{
		Encoding: pkgopenapi.MediaTypeURLEncoded,
		Fields:   []Field{{Name: "q", Type: FieldTypeString}, {Name: "n", Type: FieldTypeInteger}},
	}
	values := NewValues()
	values.Set("q", "a b&c")
	values.Set("n", "4")

	body, contentType, err := Encode(form, values)
	require.NoError(t, err)
	assert.Equal(t, pkgopenapi.MediaTypeURLEncoded, contentType)

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	parsed, err := url.ParseQuery(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "a b&c", parsed.Get("q"))
	assert.Equal(t, "4", parsed.Get("n"))

	values.AttachFile("upload", File{Name: "a.txt", Content: []byte("x")})
	_, _, err = Encode(form, values)
	require.ErrorIs(t, err, errFilesNeedMultipart)
}

func TestEncode_MissingFileFails(t *testing.T) {
	values := NewValues()
	values.AttachFile("template_file", File{Path: filepath.Join(t.TempDir(), "absent.pptx")})

	_, _, err := Encode(generateForm(), values)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestEncode_UnsupportedEncoding(t *testing.T) {
	_, _, err := Encode(FormModel{Encoding: "application/xml"}, NewValues())
	require.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"true", "ON", "yes", "1"} {
		v, ok := ParseBool(in)
		assert.True(t, ok, in)
		assert.True(t, v, in)
	}
	v, ok := ParseBool("off")
	assert.True(t, ok)
	assert.False(t, v)
	_, ok = ParseBool("maybe")
	assert.False(t, ok)
}
