package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	configurationSchemaURL = "inline://pipeline-configuration"
	documentSchemaURL      = "inline://pipeline-document"
)

const configurationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["steps"],
  "properties": {
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "script": {"type": "string"}
        }
      }
    }
  }
}`

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "type": {"enum": ["security_scan", "compliance_check", "deployment", "testing", "custom"]},
    "project_id": {"type": ["integer", "string"]},
    "configuration": {"$ref": "inline://pipeline-configuration"}
  }
}`

var (
	schemaOnce       sync.Once
	compiledConfig   *jsonschema.Schema
	compiledDocument *jsonschema.Schema
	errSchemaCompile error
)

func compilePipelineSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		sources := map[string]string{
			configurationSchemaURL: configurationSchema,
			documentSchemaURL:      documentSchema,
		}
		compiler := jsonschema.NewCompiler()
		compiler.LoadURL = func(url string) (io.ReadCloser, error) {
			if s, ok := sources[url]; ok {
				return io.NopCloser(strings.NewReader(s)), nil
			}
			return nil, fmt.Errorf("unsupported schema ref: %s", url)
		}
		for url, s := range sources {
			if err := compiler.AddResource(url, strings.NewReader(s)); err != nil {
				errSchemaCompile = fmt.Errorf("failed to add schema resource: %w", err)
				return
			}
		}
		if compiledConfig, errSchemaCompile = compiler.Compile(configurationSchemaURL); errSchemaCompile != nil {
			return
		}
		compiledDocument, errSchemaCompile = compiler.Compile(documentSchemaURL)
	})
	return compiledConfig, compiledDocument, errSchemaCompile
}

// validatePipelineConfiguration checks a pipeline "configuration" object.
func validatePipelineConfiguration(v any) error {
	s, _, err := compilePipelineSchemas()
	if err != nil {
		return err
	}
	return validateAgainst(s, v, "pipeline configuration")
}

// validatePipelineDocument checks one document of a pipeline file.
func validatePipelineDocument(v any) error {
	_, s, err := compilePipelineSchemas()
	if err != nil {
		return err
	}
	return validateAgainst(s, v, "pipeline definition")
}

func validateAgainst(s *jsonschema.Schema, v any, what string) error {
	// round trip through JSON so YAML decoded values use JSON types
	raw, err := json.Marshal(v)
	if err != nil {
		return ErrValidation.MsgErr(fmt.Sprintf("invalid %s: %v", what, err), err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return ErrValidation.MsgErr(fmt.Sprintf("invalid %s: %v", what, err), err)
	}
	if err := s.Validate(doc); err != nil {
		msg := err.Error()
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			msg = leafMessage(ve)
		}
		return ErrValidation.MsgErr(fmt.Sprintf("invalid %s: %s", what, msg), err)
	}
	return nil
}

// leafMessage returns the first innermost cause of a validation error.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}
