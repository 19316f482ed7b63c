package diag

import "sennaar/internal/cir"

func New(sev Severity, code Code, loc cir.Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Loc:      loc,
		Message:  msg,
	}
}

func NewError(code Code, loc cir.Location, msg string) Diagnostic {
	return New(SevError, code, loc, msg)
}

func NewWarning(code Code, loc cir.Location, msg string) Diagnostic {
	return New(SevWarning, code, loc, msg)
}

func (d Diagnostic) WithNote(loc cir.Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
