package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"sennaar/internal/cir"
	"sennaar/internal/diag"
)

// Pretty prints diagnostics in bag order (call bag.Sort first):
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	  note: <path>:<line>:<col>: <Message>
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	codeColor := color.New(color.Faint)
	locColor := color.New(color.Bold)
	for _, c := range sevColor {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, c := range []*color.Color{codeColor, locColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			locColor.Sprint(location(d.Loc, opts.PathMode, opts.BaseDir)),
			sevColor[d.Severity].Sprint(d.Severity.String()),
			codeColor.Sprint(d.Code.ID()),
			oneLine(d.Message),
		)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s: %s\n", location(n.Loc, opts.PathMode, opts.BaseDir), oneLine(n.Msg))
		}
	}
}

// Short renders one line per diagnostic without colour, suitable for
// comparisons in tests.
func Short(bag *diag.Bag) string {
	var b strings.Builder
	for i, d := range bag.Items() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s", strings.ToLower(d.Severity.String()), d.Code.ID(), location(d.Loc, PathModeRelative, ""), oneLine(d.Message))
	}
	return b.String()
}

func location(loc cir.Location, mode PathMode, base string) string {
	if loc.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", formatPath(loc.File, mode, base), loc.Line, loc.Column)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
