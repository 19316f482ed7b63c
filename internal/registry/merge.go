package registry

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"sennaar/internal/jsonx"
)

// Conflict is one name present in both registries of a merge.
type Conflict struct {
	Section string
	Name    string
}

// MergeConflictError lists every collision of a rejected merge.
type MergeConflictError struct {
	Into      string
	From      string
	Conflicts []Conflict
}

func (e *MergeConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.Section+"."+c.Name)
	}
	return fmt.Sprintf("cannot merge registry %q into %q: %d conflicting entries: %s",
		e.From, e.Into, len(e.Conflicts), strings.Join(parts, ", "))
}

// Merge adds every entity, import and metadata entry of other to r. A name
// already present in the same section of r rejects the whole merge: r is
// left unchanged and every collision is reported in a *MergeConflictError.
// Ext payloads merge structurally (see mergeExt).
func (r *Registry) Merge(other *Registry) error {
	var conflicts []Conflict
	for _, s := range r.sections() {
		for _, id := range s.collide(other) {
			conflicts = append(conflicts, Conflict{Section: s.name, Name: id.Encode()})
		}
	}

	keys := make([]string, 0, len(other.Metadata))
	for k := range other.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if have, ok := r.Metadata[k]; ok && have != other.Metadata[k] {
			conflicts = append(conflicts, Conflict{Section: "metadata", Name: k})
		}
	}

	ext, extConflicts, err := mergeExtRaw(r.Ext, other.Ext)
	if err != nil {
		return err
	}
	conflicts = append(conflicts, extConflicts...)

	if len(conflicts) > 0 {
		return &MergeConflictError{Into: r.Name, From: other.Name, Conflicts: conflicts}
	}

	for _, s := range r.sections() {
		s.absorb(other)
	}
	for _, imp := range other.Imports {
		r.AddImport(imp)
	}
	if r.Metadata == nil {
		r.Metadata = make(map[string]string, len(other.Metadata))
	}
	for k, v := range other.Metadata {
		r.Metadata[k] = v
	}
	r.Ext = ext
	return nil
}

// DropIdentical removes from r every entity that base already holds under
// the same name with an identical encoding, and returns how many were
// removed. Units that include the same header produce such duplicates;
// dropping them first keeps Merge strict about real collisions.
func (r *Registry) DropIdentical(base *Registry) (int, error) {
	total := 0
	for _, s := range r.sections() {
		n, err := s.dropIdentical(base)
		total += n
		if err != nil {
			return total, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return total, nil
}

func mergeExtRaw(a, b jsonx.RawMessage) (jsonx.RawMessage, []Conflict, error) {
	var av, bv any
	if err := decodeExt(a, &av); err != nil {
		return nil, nil, fmt.Errorf("ext: %w", err)
	}
	if err := decodeExt(b, &bv); err != nil {
		return nil, nil, fmt.Errorf("ext: %w", err)
	}
	var conflicts []Conflict
	merged := mergeExt("ext", av, bv, &conflicts)
	if len(conflicts) > 0 {
		return nil, conflicts, nil
	}
	out, err := jsonx.Marshal(merged)
	if err != nil {
		return nil, nil, fmt.Errorf("ext: %w", err)
	}
	return out, nil, nil
}

func decodeExt(raw jsonx.RawMessage, v *any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		*v = nil
		return nil
	}
	return jsonx.Unmarshal(raw, v)
}

// mergeExt merges b into a: null adopts the other side, arrays
// concatenate, objects merge member-wise recursively, equal scalars are
// kept. Anything else is recorded as a conflict at path.
func mergeExt(path string, a, b any, conflicts *[]Conflict) any {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	switch av := a.(type) {
	case []any:
		if bv, ok := b.([]any); ok {
			return append(append(make([]any, 0, len(av)+len(bv)), av...), bv...)
		}
	case map[string]any:
		if bv, ok := b.(map[string]any); ok {
			out := make(map[string]any, len(av)+len(bv))
			for k, v := range av {
				out[k] = v
			}
			keys := make([]string, 0, len(bv))
			for k := range bv {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if have, ok := out[k]; ok {
					out[k] = mergeExt(path+"."+k, have, bv[k], conflicts)
				} else {
					out[k] = bv[k]
				}
			}
			return out
		}
	default:
		if a == b {
			return a
		}
	}
	*conflicts = append(*conflicts, Conflict{Section: "ext", Name: path})
	return a
}
