package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/h2non/filetype"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

// PipelineDocument is one pipeline definition of a pipeline file.
type PipelineDocument struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Type          string         `json:"type,omitempty"`
	ProjectID     any            `json:"project_id,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// Project returns project_id as a string, or "" when absent.
func (d *PipelineDocument) Project() string {
	if d.ProjectID == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(d.ProjectID))
}

// loadPipelineFile reads a file of one or more pipeline definitions separated
// by "---". Environment placeholders are expanded and every document is
// checked against the pipeline schema.
func loadPipelineFile(filename string) ([]PipelineDocument, error) {
	data, err := readDefinitionFile(filename)
	if err != nil {
		return nil, err
	}
	data = bytes.ReplaceAll(data, []byte("\t"), []byte("    "))

	if data, err = expandEnv(data); err != nil {
		return nil, err
	}

	docs, err := parseMultiYAML(data)
	if err != nil {
		return nil, err
	}

	out := make([]PipelineDocument, 0, len(docs))
	for i, doc := range docs {
		if err := validatePipelineDocument(doc); err != nil {
			return nil, ErrValidation.MsgErr(fmt.Sprintf("document %d: %v", i+1, err), err)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		var pd PipelineDocument
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&pd); err != nil {
			return nil, ErrValidation.MsgErr(fmt.Sprintf("document %d: %v", i+1, err), err)
		}
		out = append(out, pd)
	}
	return out, nil
}

// readDefinitionFile reads a text definition file. Files whose header matches
// a known binary format are rejected before parsing.
func readDefinitionFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, ErrValidation.MsgErr(fmt.Sprintf("failed to read file: %v", err), err)
	}
	header := data
	if len(header) > 261 {
		header = header[:261]
	}
	if kind, _ := filetype.Match(header); kind != filetype.Unknown {
		return nil, ErrValidation.New(fmt.Sprintf("%s has content type %s, expected YAML, JSON or TOML", filename, kind.MIME.Value))
	}
	return data, nil
}

// parseMultiYAML parses data containing multiple YAML documents. Empty
// documents are skipped.
func parseMultiYAML(data []byte) ([]map[string]any, error) {
	content := strings.TrimSpace(string(data))
	if len(content) == 0 || strings.Trim(content, "- \n\t") == "" {
		return []map[string]any{}, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	result := []map[string]any{}
	for {
		var doc map[string]any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, ErrValidation.MsgErr(fmt.Sprintf("failed to decode YAML: %v", err), err)
		}
		if len(doc) > 0 {
			result = append(result, doc)
		}
	}
	return result, nil
}

// loadConfigurationFile reads a pipeline configuration object from a YAML,
// JSON or TOML file and validates it. TOML is chosen by the .toml extension.
func loadConfigurationFile(filename string) (map[string]any, error) {
	data, err := readDefinitionFile(filename)
	if err != nil {
		return nil, err
	}
	if data, err = expandEnv(data); err != nil {
		return nil, err
	}
	var raw []byte
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		raw, err = tomlToJSON(data)
	} else {
		raw, err = k8syaml.YAMLToJSON(data)
	}
	if err != nil {
		return nil, ErrValidation.MsgErr(fmt.Sprintf("unable to parse %s: %v", filename, err), err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil || cfg == nil {
		return nil, ErrValidation.New(fmt.Sprintf("%s must contain an object", filename))
	}
	if err := validatePipelineConfiguration(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func tomlToJSON(data []byte) ([]byte, error) {
	var v map[string]any
	if _, err := toml.Decode(string(data), &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
