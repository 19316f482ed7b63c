package testkit

import (
	"fmt"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/registry"
)

// CheckNoAnonymous verifies that no anonymous record survives in decls:
// 1) no record declaration is itself anonymous
// 2) no type reachable from any declaration references an anonymous record
// 3) no subrecord entry is anonymous
func CheckNoAnonymous(decls []cir.Decl) error {
	for i, d := range decls {
		if rec, ok := d.Record(); ok {
			if rec.Name.IsAnonymous() {
				return fmt.Errorf("decl #%d: anonymous record %s", i, rec.Name)
			}
			for j, sub := range rec.Subrecords {
				if sub.IsAnonymous() {
					return fmt.Errorf("decl #%d (%s): anonymous subrecord #%d %s", i, d.Name(), j, sub)
				}
			}
		}
		var err error
		d.Types(func(t *cir.Type) {
			if err != nil {
				return
			}
			if usr, ok := cir.FirstAnonymous(*t); ok {
				err = fmt.Errorf("decl #%d (%s): type references anonymous record %s", i, d.Name(), usr)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckRegistryKeys verifies that every entity of reg is stored under its
// own name and that no typedef-like name lands in two sections:
// aliases, function typedefs, opaque typedefs and opaque handles share the
// ordinary C name space.
func CheckRegistryKeys(reg *registry.Registry) error {
	owner := make(map[ident.Identifier]string)
	claim := func(section string, id ident.Identifier) error {
		if prev, ok := owner[id]; ok {
			return fmt.Errorf("%s is both in %s and %s", id, prev, section)
		}
		owner[id] = section
		return nil
	}
	for _, v := range reg.Aliases.Values() {
		if err := claim("aliases", v.Name); err != nil {
			return err
		}
	}
	for _, v := range reg.FunctionTypedefs.Values() {
		if err := claim("functionTypedefs", v.Name); err != nil {
			return err
		}
	}
	for _, v := range reg.OpaqueTypedefs.Values() {
		if err := claim("opaqueTypedefs", v.Name); err != nil {
			return err
		}
	}
	for _, v := range reg.OpaqueHandleTypedefs.Values() {
		if err := claim("opaqueHandleTypedefs", v.Name); err != nil {
			return err
		}
	}

	check := func(section string, keys []ident.Identifier, names []ident.Identifier) error {
		if len(keys) != len(names) {
			return fmt.Errorf("%s: %d keys for %d entities", section, len(keys), len(names))
		}
		for i := range keys {
			if keys[i] != names[i] {
				return fmt.Errorf("%s: entity %s stored under %s", section, names[i], keys[i])
			}
			if i > 0 && keys[i-1].Compare(keys[i]) >= 0 {
				return fmt.Errorf("%s: keys out of order at %s", section, keys[i])
			}
		}
		return nil
	}
	if err := check("structs", reg.Structs.Keys(), namesOf(reg.Structs.Values())); err != nil {
		return err
	}
	if err := check("unions", reg.Unions.Keys(), namesOf(reg.Unions.Values())); err != nil {
		return err
	}
	if err := check("commands", reg.Commands.Keys(), namesOf(reg.Commands.Values())); err != nil {
		return err
	}
	if err := check("enumerations", reg.Enumerations.Keys(), namesOf(reg.Enumerations.Values())); err != nil {
		return err
	}
	return check("constants", reg.Constants.Keys(), namesOf(reg.Constants.Values()))
}

func namesOf[P registry.Entity](vs []P) []ident.Identifier {
	out := make([]ident.Identifier, len(vs))
	for i, v := range vs {
		out[i] = v.Base().Name
	}
	return out
}
