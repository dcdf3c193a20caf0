package formpost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formpost/pkg/model"
	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
	"github.com/goliatone/go-formpost/pkg/prompt"
	"github.com/goliatone/go-formpost/pkg/submit"
	"go.uber.org/zap"
)

// HealthOperationID names the liveness operation of the generation service.
const HealthOperationID = "health"

const defaultSpecTimeout = 30 * time.Second

// ErrNoHealthOperation is returned by Health when the document declares no
// GET /health style operation.
var ErrNoHealthOperation = errors.New("formpost: document has no health operation")

// Option customises the Client configuration.
type Option func(*Client)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(c *Client) {
		c.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(c *Client) {
		c.parser = parser
	}
}

// WithModelBuilder injects a custom form model builder. It takes precedence
// over WithBaseURL for form actions.
func WithModelBuilder(builder model.Builder) Option {
	return func(c *Client) {
		c.builder = builder
	}
}

// WithBaseURL posts to baseURL instead of the servers the document declares.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithSubmitter injects the submitter that performs the POST and the save.
func WithSubmitter(s *submit.Submitter) Option {
	return func(c *Client) {
		c.submitter = s
	}
}

// WithCollector enables interactive filling for requests that ask for it.
func WithCollector(collector *prompt.Collector) Option {
	return func(c *Client) {
		c.collector = collector
	}
}

// WithTransformer registers a Transformer that can mutate form models after
// building and before values are collected.
func WithTransformer(t Transformer) Option {
	return func(c *Client) {
		c.transformer = t
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client coordinates the pipeline from OpenAPI document to saved response:
// load, parse, build the form, collect and validate values, submit. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
type Client struct {
	loader      pkgopenapi.Loader
	parser      pkgopenapi.Parser
	builder     model.Builder
	baseURL     string
	submitter   *submit.Submitter
	collector   *prompt.Collector
	transformer Transformer
	logger      *zap.Logger
}

// New constructs a Client applying any provided options.
func New(options ...Option) *Client {
	c := &Client{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewLoader(
			pkgopenapi.WithFileSystem(pkgopenapi.DefaultFS()),
			pkgopenapi.WithHTTPFallback(defaultSpecTimeout),
		)
	}
	if c.parser == nil {
		c.parser = NewParser()
	}
	if c.builder == nil {
		c.builder = model.NewBuilder(model.WithBaseURL(c.baseURL))
	}
	if c.submitter == nil {
		c.submitter = submit.New(submit.WithLogger(c.logger))
	}
	return c
}

// Request describes one run of the pipeline.
type Request struct {
	// Source identifies where the OpenAPI document lives. Nil selects the
	// embedded definition unless Document is set.
	Source pkgopenapi.Source

	// Document allows callers to bypass the loader when they already have a
	// loaded payload.
	Document *pkgopenapi.Document

	// OperationID selects the form operation; empty means
	// pkgopenapi.DefaultOperationID.
	OperationID string

	// Values are the answers already known. Schema defaults fill the gaps the
	// way a rendered form would be prefilled.
	Values model.Values

	// Interactive prompts for missing values through the configured
	// collector.
	Interactive bool

	// SkipValidation sends the values without checking them against the form
	// first; the server has the last word.
	SkipValidation bool
}

// Operations loads and parses the document named by req.
func (c *Client) Operations(ctx context.Context, req Request) (map[string]pkgopenapi.Operation, error) {
	if ctx == nil {
		return nil, errors.New("formpost: context is required")
	}
	doc, err := c.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	operations, err := c.parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("formpost: parse operations: %w", err)
	}
	return operations, nil
}

// LoadForm builds the form model for req.OperationID.
func (c *Client) LoadForm(ctx context.Context, req Request) (model.FormModel, error) {
	operations, err := c.Operations(ctx, req)
	if err != nil {
		return model.FormModel{}, err
	}

	id := operationID(req)
	op, ok := operations[id]
	if !ok {
		return model.FormModel{}, fmt.Errorf("formpost: operation %q not found", id)
	}

	form, err := c.builder.Build(op)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("formpost: build form model: %w", err)
	}
	if err := c.applyTransformer(ctx, &form); err != nil {
		return model.FormModel{}, err
	}
	c.logger.Debug("form loaded",
		zap.String("operation", form.OperationID),
		zap.String("action", form.Action),
		zap.Int("fields", len(form.Fields)),
	)
	return form, nil
}

// Submit runs the whole pipeline and returns where the response was saved.
// Submission failures are the *submit.ServerError, *submit.TransportError and
// *submit.SaveError values the submitter already presented to the user.
func (c *Client) Submit(ctx context.Context, req Request) (submit.Result, error) {
	form, err := c.LoadForm(ctx, req)
	if err != nil {
		return submit.Result{}, err
	}

	values := req.Values.Clone()
	if req.Interactive {
		if c.collector == nil {
			return submit.Result{}, errors.New("formpost: interactive request without a collector")
		}
		values, err = c.collector.Collect(ctx, form, values)
		if err != nil {
			return submit.Result{}, err
		}
	}
	values = model.WithDefaults(form, values)

	if !req.SkipValidation {
		if err := model.Validate(form, values); err != nil {
			return submit.Result{}, fmt.Errorf("formpost: %w", err)
		}
	}

	return c.submitter.Submit(ctx, submit.Request{Form: form, Values: values})
}

// Health pings the health operation of the document named by req.
func (c *Client) Health(ctx context.Context, req Request) error {
	operations, err := c.Operations(ctx, req)
	if err != nil {
		return err
	}
	op, ok := findHealth(operations)
	if !ok {
		return ErrNoHealthOperation
	}
	target, err := model.ResolveURL(c.baseURL, op)
	if err != nil {
		return fmt.Errorf("formpost: %w", err)
	}
	return c.submitter.Ping(ctx, target)
}

// Submitter returns the submitter used by Submit.
func (c *Client) Submitter() *submit.Submitter {
	return c.submitter
}

func (c *Client) resolveDocument(ctx context.Context, req Request) (pkgopenapi.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	src := req.Source
	if src == nil {
		src = pkgopenapi.SourceFromFS(pkgopenapi.DefaultDocumentName)
	}
	doc, err := c.loader.Load(ctx, src)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("formpost: load document: %w", err)
	}
	return doc, nil
}

func (c *Client) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if c.transformer == nil || form == nil {
		return nil
	}
	if err := c.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("formpost: transform form: %w", err)
	}
	return nil
}

func operationID(req Request) string {
	if id := strings.TrimSpace(req.OperationID); id != "" {
		return id
	}
	return pkgopenapi.DefaultOperationID
}

func findHealth(operations map[string]pkgopenapi.Operation) (pkgopenapi.Operation, bool) {
	if op, ok := operations[HealthOperationID]; ok {
		return op, true
	}
	for _, op := range operations {
		if op.Method == http.MethodGet && strings.TrimSuffix(op.Path, "/") == "/health" {
			return op, true
		}
	}
	return pkgopenapi.Operation{}, false
}
