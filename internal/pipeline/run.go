// Package pipeline drives headers through mapping, naming, deduplication
// and materialization, and merges the per-header registries.
//
// Headers are processed concurrently; all of them intern into
// ident.Global(), which is also the table decoded cache entries use.
// Unit registries are merged serially in header order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sennaar/internal/cir"
	"sennaar/internal/diag"
	"sennaar/internal/ident"
	"sennaar/internal/registry"
	"sennaar/internal/trace"
)

var (
	// ErrNoHeaders is returned by Run when Config.Headers is empty.
	ErrNoHeaders = errors.New("no headers to process")
	// ErrNoFrontend is returned by Run when Config.Frontend is nil.
	ErrNoFrontend = errors.New("no front end configured")
)

// Config describes one run.
type Config struct {
	Name     string
	Imports  []registry.Import
	Metadata map[string]string

	Headers   []string
	ClangArgs []string
	Options   UnitOptions

	// Jobs bounds concurrent headers; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int

	Frontend Frontend
	Cache    *DiskCache
	Progress ProgressSink
}

// UnitReport summarizes one header.
type UnitReport struct {
	Header   string
	Cached   bool
	Failed   bool
	Entities int
}

// Result is the outcome of Run. Registry holds every unit that built and
// merged cleanly; failures are in Bag.
type Result struct {
	Registry *registry.Registry
	Bag      *diag.Bag
	Units    []UnitReport
	Timings  *Timings
}

type unitResult struct {
	reg    *registry.Registry
	bag    *diag.Bag
	cached bool
}

// Run processes every header of cfg. The returned error is reserved for
// configuration problems and cancellation; unit failures are diagnostics.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if len(cfg.Headers) == 0 {
		return nil, ErrNoHeaders
	}
	if cfg.Frontend == nil {
		return nil, ErrNoFrontend
	}
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = min(jobs, len(cfg.Headers))

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "run", trace.CurrentSpan(ctx)).
		WithExtra("headers", fmt.Sprint(len(cfg.Headers))).
		WithExtra("jobs", fmt.Sprint(jobs))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	timings := &Timings{}
	for _, h := range cfg.Headers {
		emit(cfg.Progress, Event{Header: h, Stage: StageParse, Status: StatusQueued})
	}

	units := make([]unitResult, len(cfg.Headers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, header := range cfg.Headers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each goroutine owns units[i]
			units[i] = runUnit(gctx, cfg, header, timings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Registry: registry.New(cfg.Name),
		Bag:      diag.NewBag(cfg.MaxDiagnostics),
		Units:    make([]UnitReport, len(units)),
		Timings:  timings,
	}
	for _, imp := range cfg.Imports {
		res.Registry.AddImport(imp)
	}
	for k, v := range cfg.Metadata {
		res.Registry.Metadata[k] = v
	}

	start := time.Now()
	for i, u := range units {
		header := cfg.Headers[i]
		res.Bag.Merge(u.bag)
		rep := UnitReport{Header: header, Cached: u.cached, Failed: u.reg == nil}
		if u.reg != nil {
			rep.Entities = u.reg.Len()
			if err := mergeUnit(res.Registry, u.reg); err != nil {
				diag.Collect(res.Bag, err, cir.Location{File: header})
				rep.Failed = true
				emit(cfg.Progress, Event{Header: header, Stage: StageMerge, Status: StatusError, Err: err})
			} else {
				emit(cfg.Progress, Event{Header: header, Stage: StageMerge, Status: StatusDone})
			}
		}
		res.Units[i] = rep
	}
	// headers sharing an include report its skipped declarations once
	res.Bag.Dedup()
	timings.Add(StageMerge, time.Since(start))
	emit(cfg.Progress, Event{Stage: StageMerge, Status: StatusDone, Elapsed: time.Since(start)})
	span.WithExtra("entities", fmt.Sprint(res.Registry.Len()))
	return res, nil
}

// mergeUnit folds unit into acc. Entities unit shares verbatim with acc,
// typically from a common include, are dropped first.
func mergeUnit(acc, unit *registry.Registry) error {
	if _, err := unit.DropIdentical(acc); err != nil {
		return err
	}
	return acc.Merge(unit)
}

func runUnit(ctx context.Context, cfg Config, header string, timings *Timings) unitResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, header, trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	out := unitResult{bag: diag.NewBag(cfg.MaxDiagnostics)}
	at := cir.Location{File: header}

	fail := func(stage Stage, code diag.Code, err error) unitResult {
		if code != diag.UnknownCode {
			out.bag.Add(diag.NewError(code, at, err.Error()))
		} else {
			diag.Collect(out.bag, err, at)
		}
		emit(cfg.Progress, Event{Header: header, Stage: stage, Status: StatusError, Err: err})
		span.End("failed: " + err.Error())
		return out
	}

	var key Digest
	if cfg.Cache != nil {
		start := time.Now()
		content, err := os.ReadFile(header)
		if err != nil {
			return fail(StageParse, diag.IOLoadFileError, err)
		}
		key = UnitKey(header, content, cfg.ClangArgs, cfg.Options)
		reg, hit, err := lookup(cfg.Cache, key, out.bag)
		timings.Add(StageCache, time.Since(start))
		switch {
		case err != nil:
			out.bag.Add(diag.NewWarning(diag.IOCacheError, at, "cache entry ignored: "+err.Error()))
		case hit:
			out.reg = reg
			out.cached = true
			emit(cfg.Progress, Event{Header: header, Stage: StageCache, Status: StatusCached, Elapsed: time.Since(start)})
			span.End("cached")
			return out
		}
	}

	start := time.Now()
	emit(cfg.Progress, Event{Header: header, Stage: StageParse, Status: StatusWorking})
	root, dispose, err := cfg.Frontend.Parse(ctx, header, cfg.ClangArgs)
	if err != nil {
		return fail(StageParse, diag.IOParseError, err)
	}
	if dispose != nil {
		defer dispose()
	}
	timings.Add(StageParse, time.Since(start))
	emit(cfg.Progress, Event{Header: header, Stage: StageParse, Status: StatusDone, Elapsed: time.Since(start)})

	idents := ident.Global()
	emit(cfg.Progress, Event{Header: header, Stage: StageMap, Status: StatusWorking})
	low, err := Lower(ctx, idents, root, cfg.Options, out.bag)
	if err != nil {
		return fail(StageMap, diag.UnknownCode, err)
	}
	for _, st := range []Stage{StageMap, StageName} {
		timings.Add(st, low.Timings[st])
		emit(cfg.Progress, Event{Header: header, Stage: st, Status: StatusDone, Elapsed: low.Timings[st]})
	}
	var deps []string
	if cfg.Cache != nil {
		deps = sourceFiles(header, root)
	}

	emit(cfg.Progress, Event{Header: header, Stage: StageMaterialize, Status: StatusWorking})
	reg, err := Materialize(ctx, idents, header, low)
	if err != nil {
		return fail(StageMaterialize, diag.UnknownCode, err)
	}
	for _, st := range []Stage{StageDedupe, StageMaterialize} {
		timings.Add(st, low.Timings[st])
		emit(cfg.Progress, Event{Header: header, Stage: st, Status: StatusDone, Elapsed: low.Timings[st]})
	}
	out.reg = reg

	if cfg.Cache != nil {
		start := time.Now()
		if err := store(cfg.Cache, key, header, deps, reg, out.bag); err != nil {
			out.bag.Add(diag.NewWarning(diag.IOCacheError, at, "cache entry not written: "+err.Error()))
		}
		timings.Add(StageCache, time.Since(start))
	}
	span.End(fmt.Sprintf("entities=%d", reg.Len()))
	return out
}

// lookup returns the cached registry for key if it is still fresh and
// replays its warnings into bag.
func lookup(c *DiskCache, key Digest, bag *diag.Bag) (*registry.Registry, bool, error) {
	var p cachePayload
	ok, err := c.get(key, &p)
	if err != nil || !ok || !p.fresh() {
		return nil, false, err
	}
	reg, err := registry.Unmarshal(p.Registry)
	if err != nil {
		return nil, false, err
	}
	for _, w := range p.Warnings {
		bag.Add(w.diagnostic())
	}
	return reg, true, nil
}

func store(c *DiskCache, key Digest, header string, deps []string, reg *registry.Registry, bag *diag.Bag) error {
	p := cachePayload{
		Schema:    cacheSchemaVersion,
		Header:    header,
		Deps:      deps,
		DepHashes: make([]Digest, len(deps)),
		Warnings:  toCached(bag.Items()),
	}
	for i, dep := range deps {
		d, err := HashFile(dep)
		if err != nil {
			return fmt.Errorf("hash %s: %w", dep, err)
		}
		p.DepHashes[i] = d
	}
	doc, err := registry.MarshalDocument(reg)
	if err != nil {
		return err
	}
	p.Registry = doc
	return c.put(key, &p)
}
