// Package validation provides struct-tag and programmatic validation.
//
// Struct tag validation (go-playground/validator) is used for configuration
// structs; the programmatic Validator collects field errors for documents
// such as pipeline definitions where rules depend on more than one field.
//
//	err := validation.ValidateStruct(cfg)
//
//	v := validation.New()
//	v.Unique("nodes", "nodes[1].name", def.Name)
//	err := v.Err()
package validation
