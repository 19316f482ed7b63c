package registry

import (
	"fmt"
	"strings"

	"sennaar/internal/jsonx"
)

// Arch is a target architecture. Unknown names are kept verbatim.
type Arch string

const (
	ArchX86     Arch = "x86"
	ArchX86_64  Arch = "x86_64"
	ArchAArch64 Arch = "aarch64"
	ArchRiscV64 Arch = "riscv64"
)

// Endian is a byte order.
type Endian string

const (
	EndianLittle Endian = "little"
	EndianBig    Endian = "big"
)

// OS is a target operating system.
type OS string

const (
	OSWindows OS = "windows"
	OSLinux   OS = "linux"
	OSMacOS   OS = "macos"
	OSFreeBSD OS = "freebsd"
)

// LibC is a target C library.
type LibC string

const (
	LibCMSFT  LibC = "msft"
	LibCMusl  LibC = "musl"
	LibCGlibc LibC = "glibc"
)

const (
	otherArch   = "other_arch"
	otherOS     = "other_os"
	otherLibC   = "other_libc"
	otherCustom = "[other]"
	anyArch     = "any_arch"
	anyEndian   = "any_endian"
	anyOS       = "any_os"
	anyLibC     = "any_libc"
	anyCustom   = "[any]"
)

// SpecState is the state of one platform specifier.
type SpecState uint8

const (
	SpecAny SpecState = iota
	SpecExact
	SpecOther
)

// Specifier constrains one platform axis: an exact value, any value not
// listed elsewhere (Other) or no constraint (Any).
type Specifier[T ~string] struct {
	State SpecState
	Value T
}

// Exact returns a specifier matching v only.
func Exact[T ~string](v T) Specifier[T] {
	return Specifier[T]{State: SpecExact, Value: v}
}

func (s Specifier[T]) format(otherText, anyText string) string {
	switch s.State {
	case SpecExact:
		return string(s.Value)
	case SpecOther:
		return otherText
	default:
		return anyText
	}
}

func parseSpecifier[T ~string](s, otherText, anyText string) Specifier[T] {
	switch s {
	case otherText:
		return Specifier[T]{State: SpecOther}
	case anyText:
		return Specifier[T]{}
	default:
		return Exact(T(s))
	}
}

func (s Specifier[T]) MarshalJSON() ([]byte, error) {
	switch s.State {
	case SpecExact:
		body, err := jsonx.Marshal(struct {
			Value T `json:"value"`
		}{s.Value})
		if err != nil {
			return nil, err
		}
		return jsonx.WithTag("Exact", body)
	case SpecOther:
		return []byte(`{"$kind":"Other"}`), nil
	default:
		return []byte(`{"$kind":"Any"}`), nil
	}
}

func (s *Specifier[T]) UnmarshalJSON(data []byte) error {
	tag, err := jsonx.ReadTag(data)
	if err != nil {
		return fmt.Errorf("platform specifier: %w", err)
	}
	switch tag {
	case "Exact":
		var payload struct {
			Value T `json:"value"`
		}
		if err := jsonx.Unmarshal(data, &payload); err != nil {
			return err
		}
		*s = Exact(payload.Value)
	case "Other":
		*s = Specifier[T]{State: SpecOther}
	case "Any":
		*s = Specifier[T]{}
	default:
		return fmt.Errorf("platform specifier: unknown kind %q", tag)
	}
	return nil
}

// Platform restricts an entity to targets. A nil Endian matches any byte
// order.
type Platform struct {
	Arch   Specifier[Arch]   `json:"arch"`
	Endian *Endian           `json:"endian"`
	OS     Specifier[OS]     `json:"os"`
	LibC   Specifier[LibC]   `json:"libc"`
	Custom Specifier[string] `json:"custom"`
}

// String renders arch-endian-os-libc-[custom].
func (p Platform) String() string {
	endian := anyEndian
	if p.Endian != nil {
		endian = string(*p.Endian)
	}
	custom := anyCustom
	switch p.Custom.State {
	case SpecExact:
		custom = "[" + p.Custom.Value + "]"
	case SpecOther:
		custom = otherCustom
	}
	return strings.Join([]string{
		p.Arch.format(otherArch, anyArch),
		endian,
		p.OS.format(otherOS, anyOS),
		p.LibC.format(otherLibC, anyLibC),
		custom,
	}, "-")
}

// ParsePlatform parses the String form. The custom part may be omitted.
func ParsePlatform(s string) (Platform, error) {
	parts := strings.SplitN(strings.ToLower(s), "-", 5)
	if len(parts) < 4 {
		return Platform{}, fmt.Errorf("platform %q: expected arch-endian-os-libc[-[custom]]", s)
	}
	var p Platform
	p.Arch = parseSpecifier[Arch](parts[0], otherArch, anyArch)
	switch e := Endian(parts[1]); e {
	case anyEndian:
	case EndianLittle, EndianBig:
		p.Endian = &e
	default:
		return Platform{}, fmt.Errorf("platform %q: unknown endian %q", s, parts[1])
	}
	p.OS = parseSpecifier[OS](parts[2], otherOS, anyOS)
	p.LibC = parseSpecifier[LibC](parts[3], otherLibC, anyLibC)
	if len(parts) == 5 {
		switch c := parts[4]; c {
		case anyCustom, "[]", "":
		case otherCustom:
			p.Custom = Specifier[string]{State: SpecOther}
		default:
			p.Custom = Exact(strings.TrimSuffix(strings.TrimPrefix(c, "["), "]"))
		}
	}
	return p, nil
}
