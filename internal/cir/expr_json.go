package cir

import (
	"fmt"

	"sennaar/internal/jsonx"
)

// MarshalJSON writes the payload object with a leading "$kind" tag.
func (e Expr) MarshalJSON() ([]byte, error) {
	if e.Data == nil {
		return nil, fmt.Errorf("expr %s: missing payload", e.Kind)
	}
	body, err := jsonx.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return jsonx.WithTag(e.Kind.String(), body)
}

// UnmarshalJSON reads the "$kind" tag and decodes the matching payload.
func (e *Expr) UnmarshalJSON(data []byte) error {
	tag, err := jsonx.ReadTag(data)
	if err != nil {
		return err
	}
	kind, ok := parseExprKind(tag)
	if !ok {
		return fmt.Errorf("unknown expression kind %q", tag)
	}
	payload := newExprData(kind)
	if err := jsonx.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("expr %s: %w", kind, err)
	}
	e.Kind = kind
	e.Data = payload
	return nil
}
