package schema

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Document names a request body shape accepted by the HTTP API.
type Document string

const (
	CommitRequest  Document = "commit_request"
	RestoreRequest Document = "restore_request"
)

var (
	ErrInvalidDocument = errors.New("invalid request body")
	ErrUnknownDocument = errors.New("unknown document schema")
)

// Validator holds the compiled request schemas. It is safe for concurrent use.
type Validator struct {
	schemas map[Document]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	validator := &Validator{schemas: make(map[Document]*jsonschema.Schema)}
	for _, doc := range []Document{CommitRequest, RestoreRequest} {
		raw, err := schemaFiles.ReadFile("schemas/" + string(doc) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", doc, err)
		}
		compiled, err := compile(string(doc)+".json", raw)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", doc, err)
		}
		validator.schemas[doc] = compiled
	}
	return validator, nil
}

// Validate checks body against the schema of doc.
func (v *Validator) Validate(ctx context.Context, doc Document, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	compiled, ok := v.schemas[doc]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, doc)
	}

	var instance any
	if err := json.Unmarshal(body, &instance); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := compiled.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, describe(verr))
		}
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

func compile(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// describe reports the innermost failure, which names the offending field.
func describe(verr *jsonschema.ValidationError) string {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	location := leaf.InstanceLocation
	if location == "" {
		location = "/"
	}
	return location + ": " + leaf.Message
}
