package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	formpost "github.com/goliatone/go-formpost"
	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
)

func main() {
	var (
		specPath    = flag.String("spec", "", "OpenAPI document path or URL (default built-in definition)")
		operationID = flag.String("operation", pkgopenapi.DefaultOperationID, "operation ID to snapshot")
		outputPath  = flag.String("output", "pkg/model/testdata/generate.form.json", "output path for the serialized form model")
		preset      = flag.String("preset", "", "optional preset applied before serializing")
	)
	flag.Parse()

	src, err := pkgopenapi.ParseSource(*specPath)
	if err != nil {
		fail("parse spec", err)
	}

	var options []formpost.Option
	if *preset != "" {
		transformer, err := formpost.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(*preset)), filepath.Base(*preset))
		if err != nil {
			fail("load preset", err)
		}
		options = append(options, formpost.WithTransformer(transformer))
	}

	form, err := formpost.New(options...).LoadForm(context.Background(), formpost.Request{
		Source:      src,
		OperationID: *operationID,
	})
	if err != nil {
		fail("build form model", err)
	}

	payload, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		fail("marshal form model", err)
	}
	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		fail("create output dir", err)
	}
	if err := os.WriteFile(*outputPath, append(payload, '\n'), 0o644); err != nil {
		fail("write form model", err)
	}
	fmt.Printf("form model written to %s\n", *outputPath)
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "failed to %s: %v\n", what, err)
	os.Exit(1)
}
