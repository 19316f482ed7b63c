package registry

import (
	"bytes"
	"fmt"

	"sennaar/internal/ident"
	"sennaar/internal/jsonx"
)

// entityPtr constrains P to the pointer type of entity T.
type entityPtr[T any] interface {
	*T
	Entity
}

// Entities is a map of entities keyed by name. It encodes as a JSON object
// whose members appear in identifier order. The zero value is empty and
// ready to use.
type Entities[T any, P entityPtr[T]] struct {
	m map[ident.Identifier]P
}

// Len returns the number of entities.
func (e *Entities[T, P]) Len() int {
	return len(e.m)
}

// Get returns the entity named id.
func (e *Entities[T, P]) Get(id ident.Identifier) (P, bool) {
	v, ok := e.m[id]
	return v, ok
}

// Has reports whether id is present.
func (e *Entities[T, P]) Has(id ident.Identifier) bool {
	_, ok := e.m[id]
	return ok
}

// Insert adds v under its own name and reports false if the name is
// already taken.
func (e *Entities[T, P]) Insert(v P) bool {
	name := v.Base().Name
	if _, ok := e.m[name]; ok {
		return false
	}
	e.Put(v)
	return true
}

// Put adds or replaces v.
func (e *Entities[T, P]) Put(v P) {
	if e.m == nil {
		e.m = make(map[ident.Identifier]P)
	}
	e.m[v.Base().Name] = v
}

// Delete removes id.
func (e *Entities[T, P]) Delete(id ident.Identifier) {
	delete(e.m, id)
}

// Keys returns the names in identifier order.
func (e *Entities[T, P]) Keys() []ident.Identifier {
	keys := make([]ident.Identifier, 0, len(e.m))
	for k := range e.m {
		keys = append(keys, k)
	}
	ident.Sort(keys)
	return keys
}

// Values returns the entities in identifier order.
func (e *Entities[T, P]) Values() []P {
	keys := e.Keys()
	out := make([]P, len(keys))
	for i, k := range keys {
		out[i] = e.m[k]
	}
	return out
}

func (e Entities[T, P]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range e.Values() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsonx.Marshal(v.Base().Name.Encode())
		if err != nil {
			return nil, err
		}
		val, err := jsonx.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Entities[T, P]) UnmarshalJSON(data []byte) error {
	var raw map[string]jsonx.RawMessage
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.m = make(map[ident.Identifier]P, len(raw))
	for key, body := range raw {
		v := P(new(T))
		if err := jsonx.Unmarshal(body, v); err != nil {
			return fmt.Errorf("entity %q: %w", key, err)
		}
		if got := v.Base().Name.Encode(); got != key {
			return fmt.Errorf("entity %q: name %q does not match its key", key, got)
		}
		e.m[v.Base().Name] = v
	}
	return nil
}
