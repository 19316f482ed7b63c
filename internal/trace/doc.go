// Package trace is the structured event log of the sennaar pipeline.
//
// A run emits spans at four scopes:
//
//   - ScopeDriver: one span per `sennaar gen` invocation
//   - ScopePass:   map, name, dedupe and materialize passes
//   - ScopeUnit:   one span per header (translation unit)
//   - ScopeDecl:   per-declaration points (debug only)
//
// Enable it with:
//
//	sennaar gen --trace=- --trace-level=detail include/vk.h
//
// Tracers:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes text or NDJSON lines as events arrive
//   - RingTracer: keeps the last N events, dumped when a run fails
//   - MultiTracer: fans out to several tracers
//
// A Tracer travels through the pipeline in a context.Context
// (WithTracer / FromContext).
package trace
