package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Operations converts a Document into a map keyed by operationId.
func (p *Parser) Operations(ctx context.Context, doc pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}

	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	orders := newPropertyOrders(raw)
	rootServers := serverURLs(spec.Servers)

	operations := make(map[string]pkgopenapi.Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			servers := rootServers
			if len(item.Servers) > 0 {
				servers = serverURLs(item.Servers)
			}
			for method, operation := range item.Operations() {
				p.collectOperation(ctx, operations, method, path, servers, operation, orders)
			}
		}
	}

	if len(operations) == 0 && !p.options.AllowEmpty {
		return nil, errors.New("openapi parser: no operations extracted")
	}

	return operations, nil
}

func (p *Parser) collectOperation(ctx context.Context, target map[string]pkgopenapi.Operation, method, path string, servers []string, operation *openapi3.Operation, orders propertyOrders) {
	if ctx.Err() != nil || operation == nil {
		return
	}
	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}
	mediaType, requestSchema := extractRequestSchema(operation.RequestBody)
	if len(requestSchema.Properties) > 0 {
		names := make([]string, 0, len(requestSchema.Properties))
		for name := range requestSchema.Properties {
			names = append(names, name)
		}
		requestSchema.Order = orders.lookup(path, method, mediaType, names)
	}

	op, err := pkgopenapi.NewOperation(opID, method, path, requestSchema, extractResponseSchemas(operation.Responses))
	if err != nil {
		// Invalid operations are skipped.
		return
	}
	op.Summary = operation.Summary
	op.Description = operation.Description
	op.RequestMediaType = mediaType
	op.Servers = servers
	if operation.Servers != nil && len(*operation.Servers) > 0 {
		op.Servers = serverURLs(*operation.Servers)
	}
	target[opID] = op
}

var preferredMediaTypes = []string{
	pkgopenapi.MediaTypeMultipart,
	pkgopenapi.MediaTypeURLEncoded,
	pkgopenapi.MediaTypeJSON,
}

func extractRequestSchema(requestBody *openapi3.RequestBodyRef) (string, pkgopenapi.Schema) {
	if requestBody == nil {
		return "", pkgopenapi.Schema{}
	}
	if requestBody.Value == nil {
		return "", pkgopenapi.Schema{Ref: requestBody.Ref}
	}
	content := requestBody.Value.Content
	for _, mediaType := range preferredMediaTypes {
		if mt, ok := content[mediaType]; ok {
			return mediaType, convertSchema(mt.Schema)
		}
	}
	for mediaType, mt := range content {
		return mediaType, convertSchema(mt.Schema)
	}
	return "", pkgopenapi.Schema{}
}

func extractResponseSchemas(responses *openapi3.Responses) map[string]pkgopenapi.Schema {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	result := make(map[string]pkgopenapi.Schema)
	for status, ref := range responses.Map() {
		if ref == nil {
			continue
		}
		if ref.Value == nil {
			result[status] = pkgopenapi.Schema{Ref: ref.Ref}
			continue
		}
		var schema pkgopenapi.Schema
		if mt, ok := ref.Value.Content[pkgopenapi.MediaTypeJSON]; ok {
			schema = convertSchema(mt.Schema)
		} else {
			for _, mt := range ref.Value.Content {
				schema = convertSchema(mt.Schema)
				break
			}
		}
		if schema.Description == "" && ref.Value.Description != nil {
			schema.Description = *ref.Value.Description
		}
		result[status] = schema
	}
	return result
}

func serverURLs(servers openapi3.Servers) []string {
	if len(servers) == 0 {
		return nil
	}
	out := make([]string, 0, len(servers))
	for _, server := range servers {
		if server == nil || server.URL == "" {
			continue
		}
		out = append(out, expandServerURL(server))
	}
	return out
}

// expandServerURL substitutes server variables with their defaults.
func expandServerURL(server *openapi3.Server) string {
	url := server.URL
	for name, variable := range server.Variables {
		if variable == nil {
			continue
		}
		url = strings.ReplaceAll(url, "{"+name+"}", variable.Default)
	}
	return url
}
