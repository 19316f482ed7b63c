package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"sennaar/internal/cir"
	"sennaar/internal/diag"
	"sennaar/internal/jsonx"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.MapTextDecode, cir.Location{File: "inc/a.h", Line: 3, Column: 5}, "bad\nname").
		WithNote(cir.Location{File: "inc/b.h", Line: 1, Column: 1}, "included from here"))
	bag.Add(diag.NewWarning(diag.MapSkippedDeclaration, cir.Location{}, "skipped"))
	return bag
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true})
	want := "inc/a.h:3:5: ERROR MAP1003: bad name\n" +
		"  note: inc/b.h:1:1: included from here\n" +
		"<unknown>: WARNING MAP1005: skipped\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestShort(t *testing.T) {
	got := Short(sampleBag())
	want := "error MAP1003 inc/a.h:3:5 bad name\nwarning MAP1005 <unknown> skipped"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{Max: 1, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := jsonx.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Diagnostics[0].Location.File != "a.h" || out.Diagnostics[0].Code != "MAP1003" {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes are opt-in")
	}
	if !strings.Contains(buf.String(), `"title": "Cursor text could not be decoded"`) {
		t.Fatalf("missing title in %s", buf.String())
	}
}
