package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeUnit, false},
		{LevelDetail, ScopeUnit, true},
		{LevelDetail, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
		{LevelError, ScopeDecl, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTextSpan(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	root := Begin(tr, ScopeDriver, "gen", 0)
	unit := Begin(tr, ScopeUnit, "unit:demo.h", root.ID())
	unit.WithExtra("decls", "4").End("ok")
	Point(tr, ScopeDecl, "decl", "filtered at detail", unit.ID())
	root.End("")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "→ gen") {
		t.Errorf("first line must open the driver span: %q", lines[0])
	}
	if !strings.Contains(lines[2], "← unit:demo.h (ok) {decls=4}") {
		t.Errorf("unit end line malformed: %q", lines[2])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDecl, "typedef", "MyInt", 0)
	if !strings.Contains(buf.String(), `"kind":"point"`) || !strings.Contains(buf.String(), `"detail":"MyInt"`) {
		t.Fatalf("unexpected ndjson: %s", buf.String())
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeDecl, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	if snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("expected oldest-first c..e, got %s..%s", snap[0].Name, snap[2].Name)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatalf("off level must produce a disabled tracer")
	}
	s := Begin(tr, ScopeDriver, "gen", 7)
	if s.ID() != 7 {
		t.Fatalf("inert span must forward the parent id, got %d", s.ID())
	}
}

func TestContextRoundTrip(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not recovered from context")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must default to Nop")
	}
	span := Begin(r, ScopePass, "map", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("span id not recovered from context")
	}
}
