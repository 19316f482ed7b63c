package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sennaar/internal/trace"
)

// traceSession owns the tracer of one command.
type traceSession struct {
	tracer trace.Tracer
	errOut io.Writer
}

// setupTracing inspects trace-related flags, initializes the tracer and
// attaches it to the command context.
func setupTracing(cmd *cobra.Command) (*traceSession, error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace without a level means phase tracing
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return &traceSession{tracer: trace.Nop, errOut: cmd.ErrOrStderr()}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	// error level keeps events in memory until something fails
	if level == trace.LevelError && traceOutput == "" {
		mode = trace.ModeRing
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	return &traceSession{tracer: tracer, errOut: cmd.ErrOrStderr()}, nil
}

// ring returns the in-memory buffer of the session tracer, if any.
func (s *traceSession) ring() (*trace.RingTracer, bool) {
	switch t := s.tracer.(type) {
	case *trace.RingTracer:
		return t, true
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil, false
}

// dump writes the buffered events to stderr. Commands call it when they
// fail so that ring-only tracing still leaves a record.
func (s *traceSession) dump() {
	r, ok := s.ring()
	if !ok {
		return
	}
	fmt.Fprintln(s.errOut, "trace: recent events")
	if err := r.Dump(s.errOut, trace.FormatText); err != nil {
		fmt.Fprintf(s.errOut, "trace: dump error: %v\n", err)
	}
}

// close flushes and closes the tracer.
func (s *traceSession) close() {
	if err := s.tracer.Flush(); err != nil {
		fmt.Fprintf(s.errOut, "trace: flush error: %v\n", err)
	}
	if err := s.tracer.Close(); err != nil {
		fmt.Fprintf(s.errOut, "trace: close error: %v\n", err)
	}
}
