// Package observ measures the phases of a command for --timings.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration of one step of a command. Sub-phases name
// their parent by index and do not count toward the total.
type Phase struct {
	Name   string
	Start  time.Time
	Dur    time.Duration
	Note   string
	Parent int
}

// Timer tracks the execution time of the steps of a command.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new top-level phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now(), Parent: -1})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Record adds a sub-phase of parent that was measured elsewhere, such as a
// pipeline stage summed over headers.
func (t *Timer) Record(parent int, name string, dur time.Duration, note string) {
	if parent < 0 || parent >= len(t.phases) {
		return
	}
	t.phases = append(t.phases, Phase{Name: name, Dur: dur, Note: note, Parent: parent})
}

// Summary renders the phases as an aligned table, sub-phases indented
// under their parent.
func (t *Timer) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	var walk func(parent, depth int)
	walk = func(parent, depth int) {
		for i, p := range t.phases {
			if p.Parent != parent {
				continue
			}
			name := strings.Repeat("  ", depth) + p.Name
			fmt.Fprintf(&sb, "  %-20s %7.2f ms", name, durationToMillis(p.Dur))
			if p.Note != "" {
				sb.WriteString("  // " + p.Note)
			}
			sb.WriteByte('\n')
			walk(i, depth+1)
		}
	}
	walk(-1, 0)
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", t.Report().TotalMS)
	return sb.String()
}

// PhaseReport is the serialized form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	Parent     string  `json:"parent,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serialized form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report lists every phase in recording order. The total covers
// top-level phases only.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		pr := PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
		if phase.Parent >= 0 {
			pr.Parent = t.phases[phase.Parent].Name
		} else {
			total += phase.Dur
		}
		report.Phases[i] = pr
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
