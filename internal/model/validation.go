package model

import (
	"errors"
	"fmt"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

var (
	errOperationIDMissing     = errors.New("model builder: operation id is required")
	errOperationPathMissing   = errors.New("model builder: operation path is required")
	errOperationMethodMissing = errors.New("model builder: operation method is required")
	errOperationNotForm       = errors.New("model builder: operation does not accept a form body")
)

func validateOperation(op pkgopenapi.Operation) error {
	if op.ID == "" {
		return errOperationIDMissing
	}
	if op.Path == "" {
		return errOperationPathMissing
	}
	if op.Method == "" {
		return errOperationMethodMissing
	}
	if !op.AcceptsForm() {
		return fmt.Errorf("%w: %s %s (%q)", errOperationNotForm, op.Method, op.Path, op.RequestMediaType)
	}
	if err := validateSchema(op.RequestBody); err != nil {
		return fmt.Errorf("model builder: invalid request body: %w", err)
	}
	return nil
}

func validateSchema(schema pkgopenapi.Schema) error {
	if schema.Type == "array" && schema.Items == nil {
		return errors.New("array schema requires items")
	}
	if schema.Pattern != "" {
		if _, err := CompilePattern(schema.Pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", schema.Pattern, err)
		}
	}
	for name, nested := range schema.Properties {
		if nested.Type == "object" {
			return fmt.Errorf("property %q: nested objects cannot be sent as form fields", name)
		}
		if err := validateSchema(nested); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
	}
	if schema.Items != nil {
		return validateSchema(*schema.Items)
	}
	return nil
}
