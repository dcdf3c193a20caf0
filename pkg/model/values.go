package model

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// File is a file attached to a form field. Content, when non-nil, is sent as
// is; otherwise the file at Path is streamed into the body.
type File struct {
	Path        string
	Name        string
	ContentType string
	Content     []byte
}

// FileName returns the name reported to the server.
func (f File) FileName() string {
	if f.Name != "" {
		return f.Name
	}
	if f.Path != "" {
		return filepath.Base(f.Path)
	}
	return ""
}

// Values holds what the user filled into a form: text values (a field may
// repeat) and attached files. The zero value is ready to use.
type Values struct {
	fields map[string][]string
	files  map[string][]File
}

// NewValues returns an empty value set.
func NewValues() Values {
	return Values{}
}

// Set replaces the values of name with value.
func (v *Values) Set(name, value string) {
	if v.fields == nil {
		v.fields = make(map[string][]string)
	}
	v.fields[name] = []string{value}
}

// Add appends value to the values of name.
func (v *Values) Add(name, value string) {
	if v.fields == nil {
		v.fields = make(map[string][]string)
	}
	v.fields[name] = append(v.fields[name], value)
}

// Get returns the first value of name, or "".
func (v Values) Get(name string) string {
	if vals := v.fields[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// All returns every value of name.
func (v Values) All(name string) []string {
	return v.fields[name]
}

// AttachFile adds a file to name.
func (v *Values) AttachFile(name string, file File) {
	if v.files == nil {
		v.files = make(map[string][]File)
	}
	v.files[name] = append(v.files[name], file)
}

// Files returns the files attached to name.
func (v Values) Files(name string) []File {
	return v.files[name]
}

// Has reports whether name carries a text value or a file.
func (v Values) Has(name string) bool {
	return len(v.fields[name]) > 0 || len(v.files[name]) > 0
}

// Delete drops every value and file of name.
func (v *Values) Delete(name string) {
	delete(v.fields, name)
	delete(v.files, name)
}

// Names returns the sorted union of field and file names.
func (v Values) Names() []string {
	seen := make(map[string]struct{}, len(v.fields)+len(v.files))
	for name := range v.fields {
		seen[name] = struct{}{}
	}
	for name := range v.files {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many names carry a value.
func (v Values) Len() int {
	return len(v.Names())
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	out := Values{}
	for name, vals := range v.fields {
		if out.fields == nil {
			out.fields = make(map[string][]string, len(v.fields))
		}
		out.fields[name] = append([]string(nil), vals...)
	}
	for name, files := range v.files {
		if out.files == nil {
			out.files = make(map[string][]File, len(v.files))
		}
		out.files[name] = append([]File(nil), files...)
	}
	return out
}

// Merge copies every name of other into v, replacing what v held for it.
func (v *Values) Merge(other Values) {
	for name, vals := range other.fields {
		if v.fields == nil {
			v.fields = make(map[string][]string)
		}
		v.fields[name] = append([]string(nil), vals...)
	}
	for name, files := range other.files {
		if v.files == nil {
			v.files = make(map[string][]File)
		}
		v.files[name] = append([]File(nil), files...)
	}
}

// SetPair parses "name=value" and adds the value.
func (v *Values) SetPair(pair string) error {
	name, value, err := splitPair(pair)
	if err != nil {
		return err
	}
	v.Add(name, value)
	return nil
}

// AttachPair parses "name=path" and attaches the file at path.
func (v *Values) AttachPair(pair string) error {
	name, path, err := splitPair(pair)
	if err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("model: file %q has an empty path", name)
	}
	v.AttachFile(name, File{Path: path})
	return nil
}

func splitPair(pair string) (string, string, error) {
	name, value, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("model: expected name=value, got %q", pair)
	}
	return name, value, nil
}

// WithDefaults returns a copy of values where every form field without a
// value receives its schema default, the way a rendered HTML form would be
// prefilled.
func WithDefaults(form FormModel, values Values) Values {
	out := values.Clone()
	for _, field := range form.Fields {
		if out.Has(field.Name) || field.Default == nil || field.Type == FieldTypeFile {
			continue
		}
		switch def := field.Default.(type) {
		case []any:
			for _, item := range def {
				out.Add(field.Name, fmt.Sprint(item))
			}
		default:
			out.Set(field.Name, fmt.Sprint(def))
		}
	}
	return out
}
