package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"sennaar/internal/diag"
	"sennaar/internal/ident"
	"sennaar/internal/mapper"
	"sennaar/internal/pipeline"
	"sennaar/internal/registry"
	tk "sennaar/internal/testkit"
)

type fakeFrontend struct {
	units  map[string]*tk.Node
	parses atomic.Int32
}

func (f *fakeFrontend) Parse(_ context.Context, header string, _ []string) (mapper.Cursor, func(), error) {
	f.parses.Add(1)
	root, ok := f.units[header]
	if !ok {
		return nil, nil, errors.New("no such header: " + header)
	}
	return root, func() {}, nil
}

func id(s string) ident.Identifier {
	return ident.Global().MustIntern(s)
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestRunMergesHeaders(t *testing.T) {
	fe := &fakeFrontend{units: map[string]*tk.Node{
		"a.h": tk.TU(
			tk.Typedef("PipeShared", tk.Int()),
			tk.Function("pipe_add", tk.Int(), tk.Param("a", tk.Int()), tk.Param("b", tk.Int())),
		),
		"b.h": tk.TU(
			tk.Typedef("PipeShared", tk.Int()),
			tk.Enum("PipeColor", tk.Prim(mapper.TypeUInt), tk.EnumConst("PIPE_RED", 0)),
		),
	}}
	res, err := pipeline.Run(context.Background(), pipeline.Config{
		Name:     "demo",
		Metadata: map[string]string{"vendor": "acme"},
		Imports:  []registry.Import{{Name: "libc", Depend: true}},
		Headers:  []string{"a.h", "b.h"},
		Jobs:     2,
		Frontend: fe,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Bag))
	}
	reg := res.Registry
	if reg.Name != "demo" || reg.Metadata["vendor"] != "acme" || len(reg.Imports) != 1 {
		t.Fatalf("run settings not applied: %+v", reg)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 entities, got %+v", reg.Counts())
	}
	if !reg.Aliases.Has(id("PipeShared")) || !reg.Commands.Has(id("pipe_add")) || !reg.Enumerations.Has(id("PipeColor")) {
		t.Fatalf("missing entities: %+v", reg.Counts())
	}
	if res.Units[0].Entities != 2 || res.Units[1].Entities != 2 {
		t.Fatalf("unit reports: %+v", res.Units)
	}
	if err := tk.CheckRegistryKeys(reg); err != nil {
		t.Fatal(err)
	}
}

func TestRunReportsMergeConflicts(t *testing.T) {
	fe := &fakeFrontend{units: map[string]*tk.Node{
		"a.h": tk.TU(tk.Typedef("PipeT", tk.Int())),
		"b.h": tk.TU(tk.Typedef("PipeT", tk.Prim(mapper.TypeLong)), tk.Typedef("PipeU", tk.Int())),
	}}
	res, err := pipeline.Run(context.Background(), pipeline.Config{
		Name:     "demo",
		Headers:  []string{"a.h", "b.h"},
		Frontend: fe,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.RegMergeConflict {
		t.Fatalf("expected one merge conflict, got %v", got)
	}
	if !res.Units[1].Failed || res.Units[0].Failed {
		t.Fatalf("unit reports: %+v", res.Units)
	}
	alias, ok := res.Registry.Aliases.Get(id("PipeT"))
	if !ok || alias.Type.String() != "int" {
		t.Fatalf("first header must win, got %+v", alias)
	}
	if res.Registry.Aliases.Has(id("PipeU")) {
		t.Fatalf("a rejected merge must not apply any entity")
	}
}

func TestRunUnitFailures(t *testing.T) {
	bad := tk.TU(tk.Struct("PipeBad", tk.Raw(mapper.CursorCallExpr, "f")), tk.Typedef("PipeGood", tk.Int()))
	// void PipeOn(void (*cb)(int));
	inline := tk.TU(tk.Function("PipeOn", tk.Void(), tk.Param("cb", tk.Ptr(tk.Proto(tk.Void(), tk.Int())))))
	tests := []struct {
		name   string
		policy pipeline.MappingPolicy
		header string
		code   diag.Code
		sev    diag.Severity
		failed bool
	}{
		{"abort", pipeline.PolicyAbort, "bad.h", diag.MapUnexpectedCursorKind, diag.SevError, true},
		{"skip", pipeline.PolicySkip, "bad.h", diag.MapSkippedDeclaration, diag.SevWarning, false},
		{"parse", pipeline.PolicyAbort, "missing.h", diag.IOParseError, diag.SevError, true},
		{"inline callback", pipeline.PolicyAbort, "cb.h", diag.MatFunctionType, diag.SevError, true},
		{"inline callback skip", pipeline.PolicySkip, "cb.h", diag.MatFunctionType, diag.SevError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := &fakeFrontend{units: map[string]*tk.Node{"bad.h": bad, "cb.h": inline}}
			res, err := pipeline.Run(context.Background(), pipeline.Config{
				Headers:  []string{tt.header},
				Options:  pipeline.UnitOptions{OnMappingError: tt.policy},
				Frontend: fe,
			})
			if err != nil {
				t.Fatalf("unit failures must not fail the run: %v", err)
			}
			items := res.Bag.Items()
			if len(items) != 1 || items[0].Code != tt.code || items[0].Severity != tt.sev {
				t.Fatalf("expected one %s %s, got %+v", tt.sev, tt.code.ID(), items)
			}
			if res.Units[0].Failed != tt.failed {
				t.Fatalf("failed = %t, want %t", res.Units[0].Failed, tt.failed)
			}
			if !tt.failed && !res.Registry.Aliases.Has(id("PipeGood")) {
				t.Fatalf("skip mode must keep the remaining declarations")
			}
		})
	}
}

func TestRunConfigErrors(t *testing.T) {
	if _, err := pipeline.Run(context.Background(), pipeline.Config{Frontend: &fakeFrontend{}}); !errors.Is(err, pipeline.ErrNoHeaders) {
		t.Fatalf("expected ErrNoHeaders, got %v", err)
	}
	if _, err := pipeline.Run(context.Background(), pipeline.Config{Headers: []string{"a.h"}}); !errors.Is(err, pipeline.ErrNoFrontend) {
		t.Fatalf("expected ErrNoFrontend, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fe := &fakeFrontend{units: map[string]*tk.Node{"a.h": tk.TU()}}
	if _, err := pipeline.Run(ctx, pipeline.Config{Headers: []string{"a.h"}, Frontend: fe}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunProgressEvents(t *testing.T) {
	fe := &fakeFrontend{units: map[string]*tk.Node{
		"a.h": tk.TU(tk.Typedef("PipeEvA", tk.Int())),
		"b.h": tk.TU(tk.Typedef("PipeEvB", tk.Int())),
	}}
	var mu sync.Mutex
	seen := map[string][]pipeline.Stage{}
	sink := pipeline.SinkFunc(func(e pipeline.Event) {
		if e.Status != pipeline.StatusDone {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		seen[e.Header] = append(seen[e.Header], e.Stage)
	})
	res, err := pipeline.Run(context.Background(), pipeline.Config{
		Headers:  []string{"a.h", "b.h"},
		Frontend: fe,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []pipeline.Stage{pipeline.StageParse, pipeline.StageMap, pipeline.StageName, pipeline.StageDedupe, pipeline.StageMaterialize, pipeline.StageMerge}
	for _, h := range []string{"a.h", "b.h"} {
		got := seen[h]
		if len(got) != len(want) {
			t.Fatalf("%s: stages %v, want %v", h, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: stages %v, want %v", h, got, want)
			}
		}
	}
	if len(seen[""]) != 1 || seen[""][0] != pipeline.StageMerge {
		t.Fatalf("expected one run-level merge event, got %v", seen[""])
	}
	if !res.Timings.Has(pipeline.StageMap) || !res.Timings.Has(pipeline.StageMerge) {
		t.Fatalf("timings not recorded")
	}
}

func TestRunCache(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "cached.h")
	write := func(text string) {
		t.Helper()
		if err := os.WriteFile(header, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("typedef int PipeCached;\n")

	cache, err := pipeline.NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	fe := &fakeFrontend{units: map[string]*tk.Node{
		header: tk.TU(tk.Typedef("PipeCached", tk.Int()).At(header, 1, 13)),
	}}
	run := func() *pipeline.Result {
		t.Helper()
		res, err := pipeline.Run(context.Background(), pipeline.Config{
			Name:     "cached",
			Headers:  []string{header},
			Frontend: fe,
			Cache:    cache,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Bag.Len() != 0 {
			t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
		}
		return res
	}
	doc := func(r *registry.Registry) []byte {
		t.Helper()
		b, err := registry.MarshalDocument(r)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	first := run()
	if first.Units[0].Cached || fe.parses.Load() != 1 {
		t.Fatalf("first run must parse")
	}
	second := run()
	if !second.Units[0].Cached || fe.parses.Load() != 1 {
		t.Fatalf("second run must hit the cache")
	}
	if !bytes.Equal(doc(first.Registry), doc(second.Registry)) {
		t.Fatalf("cached registry differs:\n%s\n%s", doc(first.Registry), doc(second.Registry))
	}

	write("typedef int PipeCached; /* edited */\n")
	if third := run(); third.Units[0].Cached || fe.parses.Load() != 2 {
		t.Fatalf("an edited header must invalidate the entry")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if fourth := run(); fourth.Units[0].Cached || fe.parses.Load() != 3 {
		t.Fatalf("DropAll must empty the cache")
	}
}

func TestUnitKey(t *testing.T) {
	base := pipeline.UnitKey("a.h", []byte("int x;"), []string{"-Iinc"}, pipeline.UnitOptions{})
	variants := map[string]pipeline.Digest{
		"header":  pipeline.UnitKey("b.h", []byte("int x;"), []string{"-Iinc"}, pipeline.UnitOptions{}),
		"content": pipeline.UnitKey("a.h", []byte("int y;"), []string{"-Iinc"}, pipeline.UnitOptions{}),
		"args":    pipeline.UnitKey("a.h", []byte("int x;"), []string{"-Iother"}, pipeline.UnitOptions{}),
		"options": pipeline.UnitKey("a.h", []byte("int x;"), []string{"-Iinc"}, pipeline.UnitOptions{OnMappingError: pipeline.PolicySkip}),
	}
	for name, k := range variants {
		if k == base {
			t.Errorf("%s must change the key", name)
		}
	}
	if again := pipeline.UnitKey("a.h", []byte("int x;"), []string{"-Iinc"}, pipeline.UnitOptions{}); again != base {
		t.Fatalf("key must be deterministic")
	}
}

func TestParseMappingPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    pipeline.MappingPolicy
		wantErr bool
	}{
		{"", pipeline.PolicyAbort, false},
		{"abort", pipeline.PolicyAbort, false},
		{"skip", pipeline.PolicySkip, false},
		{"ignore", pipeline.PolicyAbort, true},
	}
	for _, tt := range tests {
		got, err := pipeline.ParseMappingPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMappingPolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
