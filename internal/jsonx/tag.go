package jsonx

import (
	"bytes"
	"errors"
	"fmt"
)

// TagKey is the discriminator member of tagged unions in registry documents.
const TagKey = "$kind"

// WithTag inserts `"$kind":"<tag>"` as the first member of the JSON object body.
func WithTag(tag string, body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' || body[len(body)-1] != '}' {
		return nil, errors.New("tagged payload must encode as a JSON object")
	}
	quoted, err := Marshal(tag)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + len(quoted) + len(TagKey) + 5)
	buf.WriteString(`{"` + TagKey + `":`)
	buf.Write(quoted)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReadTag returns the "$kind" member of a JSON object.
func ReadTag(data []byte) (string, error) {
	var head struct {
		Kind *string `json:"$kind"`
	}
	if err := Unmarshal(data, &head); err != nil {
		return "", err
	}
	if head.Kind == nil {
		return "", fmt.Errorf("missing %q tag", TagKey)
	}
	return *head.Kind, nil
}
