//go:build !libclang

package libclang

import (
	"context"
	"errors"

	"sennaar/internal/mapper"
)

// ErrUnavailable is returned by Parse in builds without the libclang tag.
var ErrUnavailable = errors.New("libclang: not compiled in, rebuild with -tags libclang")

// Parse reports ErrUnavailable after honouring ctx.
func (f *Frontend) Parse(ctx context.Context, header string, args []string) (mapper.Cursor, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return nil, nil, ErrUnavailable
}
