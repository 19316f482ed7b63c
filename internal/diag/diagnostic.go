package diag

import (
	"sennaar/internal/cir"
)

type Note struct {
	Loc cir.Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Loc      cir.Location
	Notes    []Note
}
