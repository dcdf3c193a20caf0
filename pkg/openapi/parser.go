package openapi

import "context"

// Parser normalises OpenAPI documents into operation wrappers keyed by
// operationId.
type Parser interface {
	Operations(ctx context.Context, doc Document) (map[string]Operation, error)
}

// ParserOptions exposes parser toggles.
type ParserOptions struct {
	// ResolveReferences controls whether external $ref pointers are followed
	// and the document validated. Defaults to true.
	ResolveReferences bool

	// AllowEmpty accepts documents without any operations instead of
	// returning an error.
	AllowEmpty bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles eager reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithAllowEmpty toggles acceptance of documents that define no operations.
func WithAllowEmpty(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowEmpty = enabled
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		ResolveReferences: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
