// Package prompt fills a form interactively. Collector walks the form fields
// in order and asks for every value the caller has not supplied, choosing
// the prompt from the field: masked input for secrets, confirm for booleans,
// select for enums, multi-line input for long text and a completing path
// prompt for files. Invalid answers are explained and asked again.
package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formpost/pkg/model"
)

const skipOption = "(skip)"

// Option configures a Collector.
type Option func(*Collector)

// WithRequiredOnly limits prompting to required fields.
func WithRequiredOnly(requiredOnly bool) Option {
	return func(c *Collector) {
		c.requiredOnly = requiredOnly
	}
}

// Collector prompts for form values through a Driver.
type Collector struct {
	driver       Driver
	requiredOnly bool
}

// NewCollector returns a Collector using driver, or the survey driver when
// driver is nil.
func NewCollector(driver Driver, options ...Option) *Collector {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	c := &Collector{driver: driver}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Collect returns prefill plus an answer for every field prefill does not
// carry. Aborting a prompt returns an error wrapping ErrAborted.
func (c *Collector) Collect(ctx context.Context, form model.FormModel, prefill model.Values) (model.Values, error) {
	values := prefill.Clone()
	for _, field := range form.Fields {
		if err := ctx.Err(); err != nil {
			return model.Values{}, err
		}
		if values.Has(field.Name) || (c.requiredOnly && !field.Required) {
			continue
		}
		if err := c.promptField(ctx, field, &values); err != nil {
			return model.Values{}, fmt.Errorf("prompt: %s: %w", field.Name, err)
		}
	}
	return values, nil
}

func (c *Collector) promptField(ctx context.Context, field model.Field, values *model.Values) error {
	switch {
	case field.Type == model.FieldTypeFile:
		return c.promptFile(ctx, field, values)
	case field.Type == model.FieldTypeBoolean:
		return c.promptBoolean(ctx, field, values)
	case len(field.Enum) > 0:
		return c.promptEnum(ctx, field, values)
	case field.Type == model.FieldTypeArray:
		if field.Items != nil && len(field.Items.Enum) > 0 {
			return c.promptMulti(ctx, field, values)
		}
		return c.promptList(ctx, field, values)
	default:
		return c.promptText(ctx, field, values)
	}
}

func (c *Collector) promptText(ctx context.Context, field model.Field, values *model.Values) error {
	label := field.DisplayLabel()
	defaultVal := defaultString(field.Default)

	for {
		var (
			response string
			err      error
		)
		switch {
		case field.Secret():
			response, err = c.driver.Password(ctx, InputConfig{Message: label, Default: defaultVal, Help: field.Description})
		case field.Multiline():
			response, err = c.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultVal, Help: field.Description})
		default:
			response, err = c.driver.Input(ctx, InputConfig{Message: label, Default: defaultVal, Help: field.Description})
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(response) == "" {
			if field.Required {
				c.invalid(ctx, field, "is required")
				continue
			}
			return nil
		}
		if problem := model.CheckValue(field, response); problem != "" {
			c.invalid(ctx, field, problem)
			continue
		}
		values.Set(field.Name, response)
		return nil
	}
}

func (c *Collector) promptBoolean(ctx context.Context, field model.Field, values *model.Values) error {
	def, _ := model.ParseBool(defaultString(field.Default))
	resp, err := c.driver.Confirm(ctx, ConfirmConfig{
		Message: field.DisplayLabel(),
		Default: def,
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	values.Set(field.Name, fmt.Sprint(resp))
	return nil
}

func (c *Collector) promptEnum(ctx context.Context, field model.Field, values *model.Values) error {
	options := stringifyEnum(field.Enum)
	defaultIdx := indexOf(options, defaultString(field.Default))
	if !field.Required && defaultIdx < 0 {
		options = append([]string{skipOption}, options...)
		defaultIdx = 0
	}

	for {
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      field.DisplayLabel(),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			c.invalid(ctx, field, "pick one of the listed options")
			continue
		}
		if options[idx] == skipOption {
			return nil
		}
		values.Set(field.Name, options[idx])
		return nil
	}
}

func (c *Collector) promptMulti(ctx context.Context, field model.Field, values *model.Values) error {
	options := stringifyEnum(field.Items.Enum)
	var defaults []int
	if def, ok := field.Default.([]any); ok {
		for _, item := range def {
			if idx := indexOf(options, fmt.Sprint(item)); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
	}

	for {
		picked, err := c.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.DisplayLabel(),
			Options:  options,
			Defaults: defaults,
			Help:     field.Description,
		})
		if err != nil {
			return err
		}
		if field.Required && len(picked) == 0 {
			c.invalid(ctx, field, "pick at least one option")
			continue
		}
		for _, idx := range picked {
			if idx >= 0 && idx < len(options) {
				values.Add(field.Name, options[idx])
			}
		}
		return nil
	}
}

func (c *Collector) promptList(ctx context.Context, field model.Field, values *model.Values) error {
	help := field.Description
	if help == "" {
		help = "Separate values with commas."
	}

outer:
	for {
		response, err := c.driver.Input(ctx, InputConfig{
			Message: field.DisplayLabel(),
			Default: defaultList(field.Default),
			Help:    help,
		})
		if err != nil {
			return err
		}

		var items []string
		for _, item := range strings.Split(response, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			if field.Required {
				c.invalid(ctx, field, "is required")
				continue
			}
			return nil
		}
		if field.Items != nil {
			for _, item := range items {
				if problem := model.CheckValue(*field.Items, item); problem != "" {
					c.invalid(ctx, field, fmt.Sprintf("%q %s", item, problem))
					continue outer
				}
			}
		}
		for _, item := range items {
			values.Add(field.Name, item)
		}
		return nil
	}
}

func (c *Collector) promptFile(ctx context.Context, field model.Field, values *model.Values) error {
	help := field.Description
	if accept := field.Metadata[model.MetadataAccept]; accept != "" {
		help = strings.TrimSpace(help + " Accepted: " + accept)
	}

	for {
		response, err := c.driver.Input(ctx, InputConfig{
			Message: field.DisplayLabel() + " (path)",
			Help:    help,
			Suggest: suggestPaths,
		})
		if err != nil {
			return err
		}

		path := expandHome(strings.TrimSpace(response))
		if path == "" {
			if field.Required {
				c.invalid(ctx, field, "a file is required")
				continue
			}
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			c.invalid(ctx, field, "cannot read "+path)
			continue
		}
		if info.IsDir() {
			c.invalid(ctx, field, path+" is a directory")
			continue
		}

		candidate := model.NewValues()
		candidate.AttachFile(field.Name, model.File{Path: path})
		if problems := model.ValidateField(field, candidate); len(problems) > 0 {
			c.invalid(ctx, field, strings.Join(problems, "; "))
			continue
		}
		values.AttachFile(field.Name, model.File{Path: path})
		return nil
	}
}

func (c *Collector) invalid(ctx context.Context, field model.Field, problem string) {
	_ = c.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", field.DisplayLabel(), problem))
}

func suggestPaths(toComplete string) []string {
	matches, _ := filepath.Glob(expandHome(toComplete) + "*")
	return matches
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func defaultString(def any) string {
	if def == nil {
		return ""
	}
	return fmt.Sprint(def)
}

func defaultList(def any) string {
	items, ok := def.([]any)
	if !ok {
		return defaultString(def)
	}
	return strings.Join(stringifyEnum(items), ", ")
}

func stringifyEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
