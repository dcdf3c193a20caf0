// Package testsupport holds fixture and golden file helpers shared by the
// package tests.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgmodel "github.com/goliatone/go-formpost/pkg/model"
	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "UPDATE_GOLDENS"

// LoadDocument reads a fixture and builds an openapi.Document using a file
// source.
func LoadDocument(t *testing.T, path string) pkgopenapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (pkgopenapi.Document, error) {
	if path == "" {
		return pkgopenapi.Document{}, errors.New("testsupport: document path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), data)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// MustLoadFormModel loads a JSON golden file into a FormModel.
func MustLoadFormModel(t *testing.T, path string) pkgmodel.FormModel {
	t.Helper()

	form, err := LoadFormModel(path)
	if err != nil {
		t.Fatalf("load form model: %v", err)
	}
	return form
}

// LoadFormModel reads a JSON fixture into a FormModel.
func LoadFormModel(path string) (pkgmodel.FormModel, error) {
	if path == "" {
		return pkgmodel.FormModel{}, errors.New("testsupport: form model path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: read form model: %w", err)
	}
	var out pkgmodel.FormModel
	if err := json.Unmarshal(data, &out); err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: unmarshal form model: %w", err)
	}
	return out, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}
