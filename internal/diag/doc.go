// Package diag defines the diagnostic model shared by the pipeline and the
// CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//   - Message – short human oriented text.
//   - Loc – the source location reported by the front end, if any.
//   - Notes – optional secondary locations/messages.
//
// Producers emit through a Reporter (BagReporter, DedupReporter) or add to a
// Bag directly. FromError turns the typed errors of the mapper, namer,
// materializer and registry into diagnostics with the matching Code.
//
// Package diag does no terminal IO; rendering lives in internal/diagfmt.
package diag
