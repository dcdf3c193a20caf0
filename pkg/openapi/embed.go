package openapi

import (
	"embed"
	"io/fs"
)

// DefaultDocumentName is the embedded definition of the deck generation
// service, used when no document is configured.
const DefaultDocumentName = "generate.yaml"

// DefaultOperationID is the form operation inside the embedded definition.
const DefaultOperationID = "generate"

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

// DefaultFS returns the bundled OpenAPI definitions. Pass it to a loader via
// WithFileSystem and load SourceFromFS(DefaultDocumentName).
func DefaultFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}
