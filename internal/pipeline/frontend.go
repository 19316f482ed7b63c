package pipeline

import (
	"context"

	"sennaar/internal/mapper"
)

// Frontend parses a header into a translation unit cursor. dispose releases
// the unit; cursors must not be used after it is called.
type Frontend interface {
	Parse(ctx context.Context, header string, args []string) (root mapper.Cursor, dispose func(), err error)
}

// FrontendFunc adapts a function to Frontend.
type FrontendFunc func(ctx context.Context, header string, args []string) (mapper.Cursor, func(), error)

func (f FrontendFunc) Parse(ctx context.Context, header string, args []string) (mapper.Cursor, func(), error) {
	return f(ctx, header, args)
}

// sourceFiles returns header followed by every other file that holds a
// top-level declaration of root, in first-seen order.
func sourceFiles(header string, root mapper.Cursor) []string {
	seen := map[string]bool{header: true}
	files := []string{header}
	for _, c := range root.Children() {
		f := c.Location().File
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		files = append(files, f)
	}
	return files
}
