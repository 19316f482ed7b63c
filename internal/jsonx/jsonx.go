// Package jsonx is the JSON codec used for registry documents. It wraps
// json-iterator configured to behave like encoding/json (sorted map keys,
// Marshaler/TextMarshaler support).
package jsonx

import (
	"bytes"
	"encoding/json" //nolint:depguard // indentation only
	"io"

	jsoniter "github.com/json-iterator/go"
)

// RawMessage is a raw encoded JSON value.
type RawMessage = jsoniter.RawMessage

// Encoder writes JSON values to a stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads JSON values from a stream.
type Decoder interface {
	Decode(v any) error
}

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent is Marshal with indentation.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	b, err := api.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Indent(&buf, b, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses JSON into v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) Encoder {
	return api.NewEncoder(w)
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) Decoder {
	return api.NewDecoder(r)
}

// Indent appends to dst an indented form of src.
func Indent(dst *bytes.Buffer, src []byte, prefix, indent string) error {
	return json.Indent(dst, src, prefix, indent)
}

// Valid reports whether data is valid JSON.
func Valid(data []byte) bool {
	return api.Valid(data)
}
