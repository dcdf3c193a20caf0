// Package model defines the submittable form model, the values a user fills
// in, and the encoding of those values into a request body. Builders reside
// in internal/model but return the types re-exported here. Fields keep the
// declaration order of the OpenAPI request body so prompts and encoded bodies
// follow the order the service author wrote. Schema hints under the
// `x-formpost` extension land in Field.Metadata (`input: textarea`,
// `secret: true`, `accept: .pptx,.potx`).
package model
