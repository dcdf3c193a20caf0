package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

var errFilesNeedMultipart = errors.New("model: file fields require multipart/form-data")

// officeContentTypes fills gaps in the platform MIME table for the template
// formats the generation service accepts.
var officeContentTypes = map[string]string{
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".potx": "application/vnd.openxmlformats-officedocument.presentationml.template",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode builds the request body for form from values, mirroring what a
// browser sends for the same form: fields in form order followed by any
// extra names sorted, booleans sent only when checked, files streamed with
// their base name. The returned reader is rewindable so redirects can resend
// it.
func Encode(form FormModel, values Values) (*bytes.Reader, string, error) {
	switch form.Encoding {
	case pkgopenapi.MediaTypeURLEncoded:
		return encodeURL(form, values)
	case pkgopenapi.MediaTypeMultipart, "":
		return encodeMultipart(form, values)
	default:
		return nil, "", fmt.Errorf("model: unsupported form encoding %q", form.Encoding)
	}
}

type encodedEntry struct {
	name  string
	field Field
	known bool
}

func entries(form FormModel, values Values) []encodedEntry {
	out := make([]encodedEntry, 0, len(form.Fields))
	seen := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		seen[field.Name] = struct{}{}
		out = append(out, encodedEntry{name: field.Name, field: field, known: true})
	}
	for _, name := range values.Names() {
		if _, ok := seen[name]; ok {
			continue
		}
		out = append(out, encodedEntry{name: name})
	}
	return out
}

func textValues(entry encodedEntry, values Values) []string {
	vals := values.All(entry.name)
	if !entry.known || entry.field.Type != FieldTypeBoolean {
		return vals
	}
	var out []string
	for _, val := range vals {
		if checked, ok := ParseBool(val); ok && checked {
			out = append(out, "true")
		}
	}
	return out
}

func encodeURL(form FormModel, values Values) (*bytes.Reader, string, error) {
	encoded := url.Values{}
	for _, entry := range entries(form, values) {
		if len(values.Files(entry.name)) > 0 {
			return nil, "", fmt.Errorf("%w (field %q)", errFilesNeedMultipart, entry.name)
		}
		for _, val := range textValues(entry, values) {
			encoded.Add(entry.name, val)
		}
	}
	return bytes.NewReader([]byte(encoded.Encode())), pkgopenapi.MediaTypeURLEncoded, nil
}

func encodeMultipart(form FormModel, values Values) (*bytes.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, entry := range entries(form, values) {
		for _, val := range textValues(entry, values) {
			if err := writer.WriteField(entry.name, val); err != nil {
				return nil, "", fmt.Errorf("model: encode field %q: %w", entry.name, err)
			}
		}
		for _, file := range values.Files(entry.name) {
			if err := writeFilePart(writer, entry.name, file); err != nil {
				return nil, "", err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("model: close multipart body: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, name string, file File) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(file.FileName())))
	header.Set("Content-Type", fileContentType(file))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("model: encode file %q: %w", name, err)
	}

	if file.Content != nil {
		_, err = part.Write(file.Content)
		return err
	}

	src, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("model: open file for %q: %w", name, err)
	}
	defer src.Close()
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("model: read file for %q: %w", name, err)
	}
	return nil
}

func fileContentType(file File) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	ext := strings.ToLower(filepath.Ext(file.FileName()))
	if ct, ok := officeContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ParseBool accepts the spellings browsers and humans use for checkbox
// values. The second result is false when value is not a boolean.
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "yes", "y", "1", "checked":
		return true, true
	case "false", "off", "no", "n", "0", "":
		return false, true
	default:
		return false, false
	}
}
