package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	internalmodel "github.com/goliatone/go-formpost/internal/model"
)

// FieldError is a single problem with a submitted value.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return "model: invalid form values: " + strings.Join(parts, "; ")
}

// For returns the messages attached to field.
func (e *ValidationError) For(field string) []string {
	var out []string
	for _, p := range e.Problems {
		if p.Field == field {
			out = append(out, p.Message)
		}
	}
	return out
}

// Validate checks values against the constraints declared on the form.
// Unknown names are allowed; the server decides what to do with them.
func Validate(form FormModel, values Values) error {
	var problems []FieldError
	for _, field := range form.Fields {
		for _, msg := range ValidateField(field, values) {
			problems = append(problems, FieldError{Field: field.Name, Message: msg})
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// ValidateField returns the problems with the values submitted for field.
func ValidateField(field Field, values Values) []string {
	if field.Type == FieldTypeFile {
		if field.Required && len(values.Files(field.Name)) == 0 {
			return []string{"a file is required"}
		}
		return checkAccept(field, values.Files(field.Name))
	}

	vals := values.All(field.Name)
	if field.Required && field.Type != FieldTypeBoolean && !hasNonBlank(vals) {
		return []string{"is required"}
	}

	var problems []string
	for _, val := range vals {
		if strings.TrimSpace(val) == "" && !field.Required {
			continue
		}
		if msg := CheckValue(field, val); msg != "" {
			problems = append(problems, msg)
		}
	}
	return problems
}

// CheckValue validates one raw value and returns a message, or "" when valid.
func CheckValue(field Field, value string) string {
	if len(field.Enum) > 0 && !inEnum(field.Enum, value) {
		return fmt.Sprintf("must be one of %s", joinEnum(field.Enum))
	}

	switch field.Type {
	case FieldTypeBoolean:
		if _, ok := ParseBool(value); !ok {
			return "must be true or false"
		}
	case FieldTypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return "must be a whole number"
		}
		return checkRange(field, float64(n))
	case FieldTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return "must be a number"
		}
		return checkRange(field, n)
	default:
		length := utf8.RuneCountInString(value)
		if field.MinLength != nil && length < *field.MinLength {
			return fmt.Sprintf("must be at least %d characters", *field.MinLength)
		}
		if field.MaxLength != nil && length > *field.MaxLength {
			return fmt.Sprintf("must be at most %d characters", *field.MaxLength)
		}
		if field.Pattern != "" {
			re, err := internalmodel.CompilePattern(field.Pattern)
			if err != nil {
				return fmt.Sprintf("has an invalid pattern %s", field.Pattern)
			}
			if !re.MatchString(value) {
				return fmt.Sprintf("must match %s", field.Pattern)
			}
		}
	}
	return ""
}

func checkRange(field Field, n float64) string {
	if field.Minimum != nil && n < *field.Minimum {
		return fmt.Sprintf("must be >= %s", strconv.FormatFloat(*field.Minimum, 'f', -1, 64))
	}
	if field.Maximum != nil && n > *field.Maximum {
		return fmt.Sprintf("must be <= %s", strconv.FormatFloat(*field.Maximum, 'f', -1, 64))
	}
	return ""
}

func checkAccept(field Field, files []File) []string {
	accept := strings.TrimSpace(field.Metadata[MetadataAccept])
	if accept == "" {
		return nil
	}
	var allowed []string
	for _, ext := range strings.Split(accept, ",") {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			allowed = append(allowed, ext)
		}
	}
	var problems []string
	for _, file := range files {
		name := strings.ToLower(file.FileName())
		ok := false
		for _, ext := range allowed {
			if strings.HasSuffix(name, ext) {
				ok = true
				break
			}
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("%s must be one of %s", file.FileName(), strings.Join(allowed, ", ")))
		}
	}
	return problems
}

func hasNonBlank(vals []string) bool {
	for _, val := range vals {
		if strings.TrimSpace(val) != "" {
			return true
		}
	}
	return false
}

func inEnum(enum []any, value string) bool {
	for _, candidate := range enum {
		if fmt.Sprint(candidate) == value {
			return true
		}
	}
	return false
}

func joinEnum(enum []any) string {
	parts := make([]string, 0, len(enum))
	for _, candidate := range enum {
		parts = append(parts, fmt.Sprint(candidate))
	}
	return strings.Join(parts, ", ")
}
