//go:build libclang

package libclang

import (
	"context"
	"fmt"

	"github.com/go-clang/clang-v13/clang"

	"sennaar/internal/mapper"
)

// Parse parses header with args. Each call owns its index and unit, so
// concurrent calls are independent.
func (f *Frontend) Parse(ctx context.Context, header string, args []string) (mapper.Cursor, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var opts uint32
	if !f.KeepFunctionBodies {
		opts = uint32(clang.TranslationUnit_SkipFunctionBodies)
	}

	idx := clang.NewIndex(0, 0)
	tu := idx.ParseTranslationUnit(header, args, nil, opts)
	if tu == (clang.TranslationUnit{}) {
		idx.Dispose()
		return nil, nil, &ParseError{Header: header}
	}
	dispose := func() {
		tu.Dispose()
		idx.Dispose()
	}
	if msgs := errorDiagnostics(tu); len(msgs) > 0 {
		dispose()
		return nil, nil, &ParseError{Header: header, Messages: msgs}
	}
	return cursor{c: tu.TranslationUnitCursor(), tu: tu}, dispose, nil
}

func errorDiagnostics(tu clang.TranslationUnit) []string {
	var msgs []string
	for i := range tu.NumDiagnostics() {
		d := tu.Diagnostic(i)
		if sev := d.Severity(); sev == clang.Diagnostic_Error || sev == clang.Diagnostic_Fatal {
			f, line, col, _ := d.Location().FileLocation()
			msgs = append(msgs, fmt.Sprintf("%s:%d:%d: %s", f.Name(), line, col, d.Spelling()))
		}
		d.Dispose()
	}
	return msgs
}
