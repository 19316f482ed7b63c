package mapper

import (
	"errors"

	"sennaar/internal/cir"
)

// UnitOptions controls MapUnit.
type UnitOptions struct {
	// SkipSystemHeaders drops declarations located in system headers.
	SkipSystemHeaders bool
	// OnError decides what happens to a failed declaration. Returning nil
	// skips the cursor; returning an error aborts the unit with it. A nil
	// OnError aborts on the first failure.
	OnError func(*MappingError) error
}

// MapUnit maps every top-level declaration under root. Extra declarations
// precede the declaration that produced them. Cursors that are not
// declarations (macros, inclusion directives) are ignored.
func (m *Mapper) MapUnit(root Cursor, opts UnitOptions) ([]cir.Decl, error) {
	if root.Kind() != CursorTranslationUnit {
		return nil, unexpected(root, CursorTranslationUnit)
	}
	var out []cir.Decl
	for _, c := range root.Children() {
		if !c.Kind().IsDecl() {
			continue
		}
		if opts.SkipSystemHeaders && c.InSystemHeader() {
			continue
		}
		var extra []cir.Decl
		d, err := m.MapDecl(c, &extra)
		if err != nil {
			var merr *MappingError
			if !errors.As(err, &merr) || opts.OnError == nil {
				return nil, err
			}
			if herr := opts.OnError(merr); herr != nil {
				return nil, herr
			}
			continue // extras of a failed cursor are dropped with it
		}
		out = append(out, extra...)
		out = append(out, d)
	}
	return out, nil
}
