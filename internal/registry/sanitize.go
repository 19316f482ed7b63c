package registry

import (
	"errors"
	"fmt"
)

// SanitizeError reports a pointer parameter whose nullability disagrees
// with its optionality.
type SanitizeError struct {
	Entity   string
	Param    string
	Nullable bool
	Optional bool
}

func (e *SanitizeError) Error() string {
	return fmt.Sprintf("%s: parameter %s of pointer type: nullable=%v does not match optional=%v",
		e.Entity, e.Param, e.Nullable, e.Optional)
}

// Sanitize checks the parameters of every command and function typedef.
// All mismatches are returned joined.
func (r *Registry) Sanitize() error {
	var errs []error
	r.eachParams(func(owner string, params []Param) {
		for _, p := range params {
			if ptr, ok := p.Type.Pointer(); ok && ptr.Nullable != p.Optional {
				errs = append(errs, &SanitizeError{Entity: owner, Param: p.Name.String(), Nullable: ptr.Nullable, Optional: p.Optional})
			}
		}
	})
	return errors.Join(errs...)
}

// SanitizeFix makes pointer nullability follow parameter optionality and
// returns the number of parameters changed.
func (r *Registry) SanitizeFix() int {
	fixed := 0
	r.eachParams(func(_ string, params []Param) {
		for i := range params {
			if ptr, ok := params[i].Type.Pointer(); ok && ptr.Nullable != params[i].Optional {
				ptr.Nullable = params[i].Optional
				fixed++
			}
		}
	})
	return fixed
}

func (r *Registry) eachParams(fn func(owner string, params []Param)) {
	for _, c := range r.Commands.Values() {
		fn(c.Name.String(), c.Params)
	}
	for _, f := range r.FunctionTypedefs.Values() {
		fn(f.Name.String(), f.Params)
	}
}
