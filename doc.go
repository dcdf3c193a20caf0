// Package formpost submits a form described by an OpenAPI operation and saves
// the binary answer of the service, by default as generated.pptx.
//
// The pipeline is load, parse, build the form model, collect and validate
// values, then post through a submit.Submitter:
//
//	client := formpost.New(formpost.WithBaseURL("http://localhost:8000"))
//	res, err := client.Submit(ctx, formpost.Request{Values: values})
//
// Without a Source the embedded generation service definition is used.
package formpost
