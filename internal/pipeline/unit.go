package pipeline

import (
	"context"
	"fmt"
	"time"

	"sennaar/internal/cir"
	"sennaar/internal/diag"
	"sennaar/internal/ident"
	"sennaar/internal/mapper"
	"sennaar/internal/materialize"
	"sennaar/internal/namer"
	"sennaar/internal/registry"
	"sennaar/internal/trace"
)

// MappingPolicy decides what a mapping error does to its unit.
type MappingPolicy uint8

const (
	// PolicyAbort fails the unit on the first mapping error.
	PolicyAbort MappingPolicy = iota
	// PolicySkip drops the failing declaration and records a warning.
	PolicySkip
)

func (p MappingPolicy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "abort"
}

// ParseMappingPolicy parses "abort" or "skip". The empty string is abort.
func ParseMappingPolicy(s string) (MappingPolicy, error) {
	switch s {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	}
	return PolicyAbort, fmt.Errorf("unknown mapping error policy %q (want abort or skip)", s)
}

// UnitOptions configures the passes of one unit.
type UnitOptions struct {
	SkipSystemHeaders bool
	OnMappingError    MappingPolicy
}

// Lowered is a unit after mapping and naming.
type Lowered struct {
	Decls   []cir.Decl
	Timings map[Stage]time.Duration
}

// Lower maps the translation unit under root and names its anonymous
// records. Skipped declarations are reported to bag as warnings. The tracer
// and parent span come from ctx.
func Lower(ctx context.Context, idents *ident.Table, root mapper.Cursor, opts UnitOptions, bag *diag.Bag) (*Lowered, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	out := &Lowered{Timings: make(map[Stage]time.Duration, 2)}

	start := time.Now()
	span := trace.Begin(tracer, trace.ScopePass, string(StageMap), parent)
	m := mapper.New(idents, mapper.WithTracer(tracer, span.ID()))
	unitOpts := mapper.UnitOptions{SkipSystemHeaders: opts.SkipSystemHeaders}
	if opts.OnMappingError == PolicySkip {
		rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
		unitOpts.OnError = func(merr *mapper.MappingError) error {
			diag.ReportWarning(rep, diag.MapSkippedDeclaration, merr.Loc, "declaration skipped: "+merr.Error()).
				WithNote(merr.Loc, "caused by "+diag.CodeOf(merr).ID()).
				Emit()
			trace.Point(tracer, trace.ScopeDecl, "skip", merr.Error(), span.ID())
			return nil
		}
	}
	decls, err := m.MapUnit(root, unitOpts)
	span.End(fmt.Sprintf("decls=%d", len(decls)))
	out.Timings[StageMap] = time.Since(start)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	span = trace.Begin(tracer, trace.ScopePass, string(StageName), parent)
	decls, err = namer.New(idents, namer.WithTracer(tracer, span.ID())).Run(decls)
	span.End("")
	out.Timings[StageName] = time.Since(start)
	if err != nil {
		return nil, err
	}
	out.Decls = decls
	return out, nil
}

// Materialize deduplicates lowered declarations and builds a registry named
// name from them.
func Materialize(ctx context.Context, idents *ident.Table, name string, low *Lowered) (*registry.Registry, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	start := time.Now()
	span := trace.Begin(tracer, trace.ScopePass, string(StageDedupe), parent)
	set := materialize.NewDeclSet(low.Decls)
	span.End(fmt.Sprintf("decls=%d unique=%d", len(low.Decls), set.Len()))
	low.Timings[StageDedupe] = time.Since(start)

	start = time.Now()
	span = trace.Begin(tracer, trace.ScopePass, string(StageMaterialize), parent)
	reg := registry.New(name)
	err := materialize.New(idents, materialize.WithTracer(tracer, span.ID())).Build(reg, set)
	span.End(fmt.Sprintf("entities=%d", reg.Len()))
	low.Timings[StageMaterialize] = time.Since(start)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// BuildUnit runs every pass over root and returns the unit registry.
func BuildUnit(ctx context.Context, idents *ident.Table, name string, root mapper.Cursor, opts UnitOptions, bag *diag.Bag) (*registry.Registry, error) {
	low, err := Lower(ctx, idents, root, opts, bag)
	if err != nil {
		return nil, err
	}
	return Materialize(ctx, idents, name, low)
}
