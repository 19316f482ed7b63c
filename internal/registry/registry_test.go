package registry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/jsonx"
)

func id(s string) ident.Identifier {
	return ident.Global().MustIntern(s)
}

func sample(name string) *Registry {
	r := New(name)
	r.Aliases.Put(NewTypedef(id("MyInt"), Named(id("int"))))
	r.OpaqueHandleTypedefs.Put(NewOpaqueHandleTypedef(id("H")))
	r.Commands.Put(NewCommand(id("add"), []Param{
		NewParam(id("a"), Named(id("int"))),
		NewParam(id("b"), Named(id("int"))),
	}, Named(id("int"))))
	r.Enumerations.Put(NewEnumeration(id("Color"), []EnumVariant{
		NewEnumVariant(id("RED"), cir.HexLit(0, ""), false),
		NewEnumVariant(id("GREEN"), cir.HexLit(5, ""), true),
	}))
	r.Structs.Put(NewStructure(id("Point"), []Member{
		NewMember(id("x"), Named(id("int"))),
		NewMember(id("tags"), Array(Pointer(Named(id("char")), true), cir.HexLit(4, ""), false)),
	}))
	return r
}

func TestEntitiesOrderedByIdentifier(t *testing.T) {
	var e Entities[Typedef, *Typedef]
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if !e.Insert(NewTypedef(id(n), Named(id("int")))) {
			t.Fatalf("insert %s failed", n)
		}
	}
	if e.Insert(NewTypedef(id("alpha"), Named(id("long")))) {
		t.Fatalf("duplicate insert must be refused")
	}
	data, err := jsonx.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	a, m, z := strings.Index(s, `"alpha"`), strings.Index(s, `"mid"`), strings.Index(s, `"zeta"`)
	if a < 0 || a >= m || m >= z {
		t.Fatalf("members not in identifier order: %s", s)
	}
}

func TestEntitiesKeyCarriesRename(t *testing.T) {
	renamed := id("registry_test_renamed")
	if err := renamed.TryRename("Nice"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	var e Entities[OpaqueTypedef, *OpaqueTypedef]
	e.Put(NewOpaqueTypedef(renamed))
	data, err := jsonx.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"registry_test_renamed:Nice":`) {
		t.Fatalf("key must be the encoded identifier: %s", data)
	}

	var back Entities[OpaqueTypedef, *OpaqueTypedef]
	if err := jsonx.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Has(renamed) {
		t.Fatalf("decoded map must be keyed by the same identifier")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	r := sample("demo")
	r.AddImport(Import{Name: "libc", Depend: true})
	r.Metadata["vendor"] = "acme"
	r.Structs.Values()[0].Metadata = map[string]Metadata{"note": StringMeta("hi")}

	first, err := MarshalDocument(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Unmarshal(first)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := MarshalDocument(back)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip changed the document:\n%s\n---\n%s", first, second)
	}
	if back.Len() != r.Len() {
		t.Fatalf("entity count changed: %d != %d", back.Len(), r.Len())
	}
}

func TestTaggedNodes(t *testing.T) {
	data, err := MarshalDocument(sample("demo"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{
		`"$kind": "IdentifierType"`,
		`"$kind": "ArrayType"`,
		`"$kind": "PointerType"`,
		`"$kind": "IntLiteral"`,
		`"value": "0x5"`,
		`"explicit": true`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("document lacks %s", want)
		}
	}
}

func TestValidate(t *testing.T) {
	data, err := MarshalDocument(sample("demo"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("generated document must validate: %v", err)
	}

	bad := []byte(`{"name": "x", "aliases": {"T": {"name": "T", "type": {"$kind": "Bogus"}}}}`)
	err = Validate(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) == 0 {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestMergeRejectsCollisions(t *testing.T) {
	a := sample("a")
	b := New("b")
	b.Aliases.Put(NewTypedef(id("MyInt"), Named(id("long"))))
	b.Commands.Put(NewCommand(id("add"), nil, Named(id("void"))))
	b.Commands.Put(NewCommand(id("sub"), nil, Named(id("void"))))
	before := a.Len()

	err := a.Merge(b)
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *MergeConflictError, got %v", err)
	}
	if len(conflict.Conflicts) != 2 {
		t.Fatalf("expected 2 collisions, got %+v", conflict.Conflicts)
	}
	if a.Len() != before || a.Commands.Has(id("sub")) {
		t.Fatalf("a rejected merge must not change the destination")
	}
}

func TestMergeDisjoint(t *testing.T) {
	a := New("a")
	a.Commands.Put(NewCommand(id("f"), nil, Named(id("void"))))
	a.AddImport(Import{Name: "zlib", Depend: true})
	a.Ext = jsonx.RawMessage(`{"tags": ["x"], "opts": {"a": 1}}`)

	b := New("b")
	b.Commands.Put(NewCommand(id("g"), nil, Named(id("void"))))
	b.AddImport(Import{Name: "libc", Depend: false})
	b.AddImport(Import{Name: "zlib", Depend: true})
	b.Ext = jsonx.RawMessage(`{"tags": ["y"], "opts": {"b": 2}}`)

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if a.Commands.Len() != 2 {
		t.Fatalf("expected 2 commands, got %d", a.Commands.Len())
	}
	if len(a.Imports) != 2 || a.Imports[0].Name != "libc" || a.Imports[1].Name != "zlib" {
		t.Fatalf("imports must be a set ordered by name: %+v", a.Imports)
	}
	var ext struct {
		Tags []string       `json:"tags"`
		Opts map[string]int `json:"opts"`
	}
	if err := jsonx.Unmarshal(a.Ext, &ext); err != nil {
		t.Fatalf("ext: %v", err)
	}
	if len(ext.Tags) != 2 || ext.Opts["a"] != 1 || ext.Opts["b"] != 2 {
		t.Fatalf("unexpected merged ext %s", a.Ext)
	}
}

func TestMergeExt(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		want     string
		conflict bool
	}{
		{"null adopts", `null`, `[1]`, `[1]`, false},
		{"other null keeps", `{"a":1}`, `null`, `{"a":1}`, false},
		{"arrays concatenate", `[1]`, `[2,3]`, `[1,2,3]`, false},
		{"objects recurse", `{"a":{"x":1}}`, `{"a":{"y":2}}`, `{"a":{"x":1,"y":2}}`, false},
		{"equal scalars", `{"v":"s"}`, `{"v":"s"}`, `{"v":"s"}`, false},
		{"scalar conflict", `{"v":1}`, `{"v":2}`, ``, true},
		{"shape conflict", `[1]`, `{"a":1}`, ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conflicts, err := mergeExtRaw(jsonx.RawMessage(tt.a), jsonx.RawMessage(tt.b))
			if err != nil {
				t.Fatalf("merge: %v", err)
			}
			if tt.conflict {
				if len(conflicts) == 0 {
					t.Fatalf("expected a conflict, got %s", got)
				}
				return
			}
			if len(conflicts) > 0 {
				t.Fatalf("unexpected conflicts %+v", conflicts)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	r := New("s")
	p := NewParam(id("buf"), Pointer(Named(id("char")), false))
	p.Optional = true
	r.Commands.Put(NewCommand(id("fill"), []Param{p}, Named(id("void"))))

	err := r.Sanitize()
	var serr *SanitizeError
	if !errors.As(err, &serr) || serr.Param != "buf" || serr.Entity != "fill" {
		t.Fatalf("expected a sanitize error for fill.buf, got %v", err)
	}
	if n := r.SanitizeFix(); n != 1 {
		t.Fatalf("expected 1 fix, got %d", n)
	}
	if err := r.Sanitize(); err != nil {
		t.Fatalf("fixed registry must sanitize cleanly: %v", err)
	}
}

func TestPlatform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x86_64-little-linux-glibc-[any]", "x86_64-little-linux-glibc-[any]"},
		{"any_arch-any_endian-windows-msft", "any_arch-any_endian-windows-msft-[any]"},
		{"other_arch-big-other_os-any_libc-[other]", "other_arch-big-other_os-any_libc-[other]"},
		{"AArch64-little-macos-any_libc-[ios]", "aarch64-little-macos-any_libc-[ios]"},
	}
	for _, tt := range tests {
		p, err := ParsePlatform(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := p.String(); got != tt.want {
			t.Errorf("parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePlatform("x86-sideways-linux-glibc"); err == nil {
		t.Fatalf("unknown endian must fail")
	}
	if _, err := ParsePlatform("x86-little"); err == nil {
		t.Fatalf("short platform must fail")
	}
}

func TestPlatformJSON(t *testing.T) {
	p, err := ParsePlatform("x86_64-any_endian-other_os-glibc-[any]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := jsonx.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"arch":{"$kind":"Exact","value":"x86_64"},"endian":null,"os":{"$kind":"Other"},"libc":{"$kind":"Exact","value":"glibc"},"custom":{"$kind":"Any"}}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
	var back Platform
	if err := jsonx.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != p.String() {
		t.Fatalf("round trip: %s != %s", back, p)
	}
}

func TestMetadataJSON(t *testing.T) {
	m := KeyValuesMeta(map[string]Metadata{
		"b": StringMeta("x"),
		"a": {},
	})
	data, err := jsonx.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"$kind":"KeyValues","kvs":{"a":{"$kind":"None"},"b":{"$kind":"String","value":"x"}}}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
	var back Metadata
	if err := jsonx.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(m) {
		t.Fatalf("round trip changed metadata")
	}
}

func TestYAMLEncoding(t *testing.T) {
	r := sample("demo")
	var buf bytes.Buffer
	if err := Encode(&buf, r, FormatYAML); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "{\"") {
		t.Fatalf("yaml output must be block style:\n%s", out)
	}
	if !strings.Contains(out, "$kind: IdentifierType") {
		t.Fatalf("yaml output lacks tags:\n%s", out)
	}
	if !strings.Contains(out, `value: "0x5"`) && !strings.Contains(out, `value: '0x5'`) {
		t.Fatalf("hex literal text must stay a string:\n%s", out)
	}

	back, err := Decode(strings.NewReader(out), FormatYAML)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, _ := MarshalDocument(r)
	b, _ := MarshalDocument(back)
	if !bytes.Equal(a, b) {
		t.Fatalf("yaml round trip changed the document")
	}
}

func TestDropIdentical(t *testing.T) {
	base := sample("base")
	incoming := sample("incoming")
	incoming.Aliases.Put(NewTypedef(id("MyInt"), Named(id("long"))))
	incoming.Commands.Put(NewCommand(id("extra"), nil, Named(id("void"))))

	n, err := incoming.DropIdentical(base)
	if err != nil {
		t.Fatalf("DropIdentical: %v", err)
	}
	if n != base.Len()-1 {
		t.Fatalf("expected every entity but MyInt dropped, got %d", n)
	}
	if !incoming.Aliases.Has(id("MyInt")) || !incoming.Commands.Has(id("extra")) {
		t.Fatalf("differing and new entities must stay")
	}
	err = base.Merge(incoming)
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) || len(conflict.Conflicts) != 1 || conflict.Conflicts[0].Name != "MyInt" {
		t.Fatalf("only the differing alias may conflict, got %v", err)
	}
}
