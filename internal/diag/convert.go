package diag

import (
	"errors"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/mapper"
	"sennaar/internal/materialize"
	"sennaar/internal/namer"
	"sennaar/internal/registry"
)

// CodeOf returns the diagnostic code for err, UnknownCode if err is not one
// of the pipeline's typed errors.
func CodeOf(err error) Code {
	var (
		me *mapper.MappingError
		ne *namer.ConsistencyError
		ce *materialize.ConsistencyError
		rc *ident.RenameConflictError
		mc *registry.MergeConflictError
		se *registry.SanitizeError
		ve *registry.ValidationError
	)
	switch {
	case errors.As(err, &me):
		switch me.Kind {
		case mapper.ErrUnexpectedCursorKind:
			return MapUnexpectedCursorKind
		case mapper.ErrUnsupportedConstruct:
			return MapUnsupportedConstruct
		case mapper.ErrTextDecode:
			return MapTextDecode
		case mapper.ErrLiteralEval:
			return MapLiteralEval
		}
	case errors.As(err, &ne):
		switch ne.Kind {
		case namer.ErrMissingUsage:
			return NamMissingUsage
		case namer.ErrCyclicAnonymousRecord:
			return NamCyclicAnonymousRecord
		case namer.ErrNameConflict:
			return NamNameConflict
		}
	case errors.As(err, &ce):
		switch ce.Kind {
		case materialize.ErrUnresolvedRecord:
			return MatUnresolvedRecord
		case materialize.ErrAnonymousRecord:
			return MatAnonymousRecord
		case materialize.ErrFunctionType:
			return MatFunctionType
		case materialize.ErrRecordNotDefined:
			return MatRecordNotDefined
		}
	case errors.As(err, &rc):
		return NamRenameConflict
	case errors.As(err, &mc):
		return RegMergeConflict
	case errors.As(err, &se):
		return RegSanitize
	case errors.As(err, &ve):
		return RegSchema
	}
	return UnknownCode
}

// FromError converts err into an error diagnostic. Mapping errors carry
// their own location; other errors use at.
func FromError(err error, at cir.Location) Diagnostic {
	loc := at
	var me *mapper.MappingError
	if errors.As(err, &me) && me.Loc.File != "" {
		loc = me.Loc
	}
	return NewError(CodeOf(err), loc, err.Error())
}

// Collect adds one diagnostic per leaf of err to bag: joined errors,
// merge conflicts and schema problems are expanded.
func Collect(bag *Bag, err error, at cir.Location) {
	if err == nil || bag == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			Collect(bag, e, at)
		}
		return
	}
	var mc *registry.MergeConflictError
	if errors.As(err, &mc) && len(mc.Conflicts) > 0 {
		for _, c := range mc.Conflicts {
			bag.Add(NewError(RegMergeConflict, at, "registry "+mc.From+": "+c.Section+"."+c.Name+" is already defined in "+mc.Into))
		}
		return
	}
	var ve *registry.ValidationError
	if errors.As(err, &ve) && len(ve.Problems) > 0 {
		for _, p := range ve.Problems {
			bag.Add(NewError(RegSchema, at, p))
		}
		return
	}
	bag.Add(FromError(err, at))
}
