package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// mapping (AST -> IR)
	MapInfo                 Code = 1000
	MapUnexpectedCursorKind Code = 1001
	MapUnsupportedConstruct Code = 1002
	MapTextDecode           Code = 1003
	MapLiteralEval          Code = 1004
	MapSkippedDeclaration   Code = 1005

	// anonymous record naming
	NamInfo                  Code = 2000
	NamMissingUsage          Code = 2001
	NamCyclicAnonymousRecord Code = 2002
	NamNameConflict          Code = 2003
	NamRenameConflict        Code = 2004

	// materialization
	MatInfo             Code = 3000
	MatUnresolvedRecord Code = 3001
	MatAnonymousRecord  Code = 3002
	MatFunctionType     Code = 3003
	MatRecordNotDefined Code = 3004

	// registry documents
	RegInfo          Code = 4000
	RegMergeConflict Code = 4001
	RegSanitize      Code = 4002
	RegSchema        Code = 4003
	RegDecode        Code = 4004

	// io
	IOLoadFileError Code = 5001
	IOParseError    Code = 5002
	IOCacheError    Code = 5003

	// project
	PrjInfo            Code = 6000
	PrjManifestInvalid Code = 6001
	PrjNoHeaders       Code = 6002

	// observability
	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		MapInfo:                  "Mapping information",
		MapUnexpectedCursorKind:  "Unexpected cursor kind",
		MapUnsupportedConstruct:  "Unsupported C construct",
		MapTextDecode:            "Cursor text could not be decoded",
		MapLiteralEval:           "Literal could not be evaluated",
		MapSkippedDeclaration:    "Declaration skipped after a mapping error",
		NamInfo:                  "Naming information",
		NamMissingUsage:          "Anonymous record has no usage",
		NamCyclicAnonymousRecord: "Cyclic anonymous record",
		NamNameConflict:          "Synthesized name could not be interned",
		NamRenameConflict:        "Identifier renamed twice",
		MatInfo:                  "Materialization information",
		MatUnresolvedRecord:      "Unresolved record",
		MatAnonymousRecord:       "Anonymous record reached the registry",
		MatFunctionType:          "Function prototype used as a value type",
		MatRecordNotDefined:      "Record is declared but never defined",
		RegInfo:                  "Registry information",
		RegMergeConflict:         "Registry merge conflict",
		RegSanitize:              "Parameter nullability disagrees with optionality",
		RegSchema:                "Registry document does not match the schema",
		RegDecode:                "Registry document could not be decoded",
		IOLoadFileError:          "I/O load file error",
		IOParseError:             "Header could not be parsed",
		IOCacheError:             "Cache entry could not be used",
		PrjInfo:                  "Project information",
		PrjManifestInvalid:       "Invalid sennaar.toml",
		PrjNoHeaders:             "No input headers",
		ObsInfo:                  "Observability information",
		ObsTimings:               "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MAP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("NAM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("MAT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("REG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
