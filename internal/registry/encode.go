package registry

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"sennaar/internal/jsonx"
)

// Format is an output encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatJSON, fmt.Errorf("unknown registry format %q (want json or yaml)", s)
}

// normalize replaces absent collections with empty ones so documents
// always carry every top-level member.
func (r *Registry) normalize() {
	if r.Imports == nil {
		r.Imports = []Import{}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	if len(bytes.TrimSpace(r.Ext)) == 0 {
		r.Ext = jsonx.RawMessage("null")
	}
}

// MarshalDocument returns the indented JSON document of r.
func MarshalDocument(r *Registry) ([]byte, error) {
	r.normalize()
	return jsonx.MarshalIndent(r, "", "  ")
}

// Encode writes r to w in format f.
func Encode(w io.Writer, r *Registry, f Format) error {
	doc, err := MarshalDocument(r)
	if err != nil {
		return fmt.Errorf("encode registry %q: %w", r.Name, err)
	}
	if f == FormatYAML {
		doc, err = jsonToYAML(doc)
		if err != nil {
			return fmt.Errorf("encode registry %q: %w", r.Name, err)
		}
	} else {
		doc = append(doc, '\n')
	}
	_, err = w.Write(doc)
	return err
}

// Decode reads a registry document in format f.
func Decode(rd io.Reader, f Format) (*Registry, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	if f == FormatYAML {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	}
	return Unmarshal(data)
}

// Unmarshal decodes a JSON registry document.
func Unmarshal(data []byte) (*Registry, error) {
	r := &Registry{}
	if err := jsonx.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	r.normalize()
	return r, nil
}

// jsonToYAML re-encodes a JSON document as block-style YAML keeping member
// order: JSON is valid YAML, so it is parsed into a node tree whose flow
// styles are then cleared.
func jsonToYAML(doc []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	resetStyle(&root)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resetStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = 0
	case yaml.ScalarNode:
		// the encoder re-quotes strings that would read back as another type
		if n.Style == yaml.DoubleQuotedStyle && n.Tag == "!!str" {
			n.Style = 0
		}
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// yamlToJSON converts a YAML registry document to JSON.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return jsonx.Marshal(v)
}
