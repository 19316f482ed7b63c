package registry

import (
	"fmt"

	"sennaar/internal/jsonx"
)

// MetadataKind tags the variants of Metadata.
type MetadataKind uint8

const (
	MetaNone MetadataKind = iota
	MetaString
	MetaKeyValues
)

// Metadata is a free-form annotation attached to an entity.
type Metadata struct {
	Kind  MetadataKind
	Value string              // MetaString
	KVs   map[string]Metadata // MetaKeyValues
}

// StringMeta builds a string metadata value.
func StringMeta(v string) Metadata {
	return Metadata{Kind: MetaString, Value: v}
}

// KeyValuesMeta builds a nested metadata map.
func KeyValuesMeta(kvs map[string]Metadata) Metadata {
	return Metadata{Kind: MetaKeyValues, KVs: kvs}
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case MetaNone:
		return []byte(`{"$kind":"None"}`), nil
	case MetaString:
		body, err := jsonx.Marshal(struct {
			Value string `json:"value"`
		}{m.Value})
		if err != nil {
			return nil, err
		}
		return jsonx.WithTag("String", body)
	case MetaKeyValues:
		kvs := m.KVs
		if kvs == nil {
			kvs = map[string]Metadata{}
		}
		body, err := jsonx.Marshal(struct {
			KVs map[string]Metadata `json:"kvs"`
		}{kvs})
		if err != nil {
			return nil, err
		}
		return jsonx.WithTag("KeyValues", body)
	}
	return nil, fmt.Errorf("registry: invalid metadata kind %d", m.Kind)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	tag, err := jsonx.ReadTag(data)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	var payload struct {
		Value string              `json:"value"`
		KVs   map[string]Metadata `json:"kvs"`
	}
	if err := jsonx.Unmarshal(data, &payload); err != nil {
		return err
	}
	switch tag {
	case "None":
		*m = Metadata{}
	case "String":
		*m = StringMeta(payload.Value)
	case "KeyValues":
		*m = KeyValuesMeta(payload.KVs)
	default:
		return fmt.Errorf("metadata: unknown kind %q", tag)
	}
	return nil
}

// Equal reports deep equality.
func (m Metadata) Equal(o Metadata) bool {
	if m.Kind != o.Kind || m.Value != o.Value || len(m.KVs) != len(o.KVs) {
		return false
	}
	for k, v := range m.KVs {
		ov, ok := o.KVs[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
