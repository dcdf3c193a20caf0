package model

import (
	"github.com/goliatone/go-formpost/internal/model"
	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

// Builder converts OpenAPI operations into form models.
type Builder interface {
	Build(op pkgopenapi.Operation) (FormModel, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler func(string) string
	baseURL string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithBaseURL resolves form actions against baseURL instead of the servers
// declared in the document.
func WithBaseURL(baseURL string) BuilderOption {
	return func(opts *builderOptions) {
		opts.baseURL = baseURL
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	return model.New(model.Options{
		Labeler: cfg.labeler,
		BaseURL: cfg.baseURL,
	})
}

// DefaultLabeler exposes the label generation used when a schema has no title.
func DefaultLabeler(name string) string {
	return model.DefaultLabeler(name)
}

// ResolveURL returns the absolute URL of op, resolved against baseURL or the
// first server the document declares for it.
func ResolveURL(baseURL string, op pkgopenapi.Operation) (string, error) {
	return model.ResolveURL(baseURL, op)
}
