package parser

import (
	"context"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

func loadEmbedded(t *testing.T) pkgopenapi.Document {
	t.Helper()
	raw, err := fs.ReadFile(pkgopenapi.DefaultFS(), pkgopenapi.DefaultDocumentName)
	require.NoError(t, err)
	return pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFS(pkgopenapi.DefaultDocumentName), raw)
}

func TestOperations_EmbeddedGenerateDefinition(t *testing.T) {
	p := New(pkgopenapi.NewParserOptions())

	ops, err := p.Operations(context.Background(), loadEmbedded(t))
	require.NoError(t, err)
	require.Contains(t, ops, "generate")
	require.Contains(t, ops, "health")

	op := ops["generate"]
	assert.Equal(t, "POST", op.Method)
	assert.Equal(t, "/generate", op.Path)
	assert.Equal(t, pkgopenapi.MediaTypeMultipart, op.RequestMediaType)
	assert.Equal(t, []string{"http://localhost:8000"}, op.Servers)
	assert.True(t, op.AcceptsForm())

	wantOrder := []string{"text", "guidance", "provider", "model", "api_key", "base_url", "generate_notes", "template_file"}
	if diff := cmp.Diff(wantOrder, op.RequestBody.Order); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	body := op.RequestBody
	assert.ElementsMatch(t, []string{"text", "api_key", "template_file"}, body.Required)
	assert.Equal(t, "password", body.Properties["api_key"].Format)
	assert.Equal(t, "binary", body.Properties["template_file"].Format)
	assert.Equal(t, map[string]string{"input": "textarea"}, body.Properties["text"].Hints)
	assert.Equal(t, "openai", body.Properties["provider"].Default)
	assert.Len(t, body.Properties["provider"].Enum, 4)
	assert.Equal(t, "boolean", body.Properties["generate_notes"].Type)

	assert.True(t, op.HasResponse("200"))
	assert.Equal(t, "string", op.Responses["400"].Properties["detail"].Type)

	health := ops["health"]
	assert.Equal(t, "GET", health.Method)
	assert.False(t, health.AcceptsForm())
}

const refDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "upload", "version": "1"},
  "servers": [{"url": "https://{region}.example.test/api", "variables": {"region": {"default": "eu"}}}],
  "paths": {
    "/upload": {
      "post": {
        "requestBody": {
          "content": {
            "application/x-www-form-urlencoded": {
              "schema": {"$ref": "#/components/schemas/Upload"}
            }
          }
        },
        "responses": {"204": {"description": "ok"}}
      }
    }
  },
  "components": {
    "schemas": {
      "Upload": {
        "type": "object",
        "properties": {
          "zeta": {"type": "string"},
          "alpha": {"type": "integer", "minimum": 1, "maximum": 5},
          "mid": {"type": "string", "maxLength": 10}
        }
      }
    }
  }
}`

func TestOperations_ResolvesRefsOrderAndServerVariables(t *testing.T) {
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("upload.json"), []byte(refDocument))
	ops, err := New(pkgopenapi.NewParserOptions()).Operations(context.Background(), doc)
	require.NoError(t, err)

	op, ok := ops["post:/upload"]
	require.True(t, ok, "operation id should fall back to method:path")
	assert.Equal(t, pkgopenapi.MediaTypeURLEncoded, op.RequestMediaType)
	assert.Equal(t, []string{"https://eu.example.test/api"}, op.Servers)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, op.RequestBody.Order)

	alpha := op.RequestBody.Properties["alpha"]
	require.NotNil(t, alpha.Minimum)
	require.NotNil(t, alpha.Maximum)
	assert.Equal(t, 1.0, *alpha.Minimum)
	assert.Equal(t, 5.0, *alpha.Maximum)
	require.NotNil(t, op.RequestBody.Properties["mid"].MaxLength)
	assert.Equal(t, 10, *op.RequestBody.Properties["mid"].MaxLength)
}

func TestOperations_RejectsDocumentsWithoutOperations(t *testing.T) {
	raw := []byte("openapi: 3.0.3\ninfo:\n  title: empty\n  version: '1'\npaths: {}\n")
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("empty.yaml"), raw)

	_, err := New(pkgopenapi.NewParserOptions()).Operations(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no operations")

	ops, err := New(pkgopenapi.NewParserOptions(pkgopenapi.WithAllowEmpty(true))).Operations(context.Background(), doc)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestOperations_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(pkgopenapi.NewParserOptions()).Operations(ctx, loadEmbedded(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompleteOrder(t *testing.T) {
	got := completeOrder([]string{"b", "missing", "a", "b"}, []string{"a", "b", "d", "c"})
	assert.Equal(t, []string{"b", "a", "c", "d"}, got)
}
