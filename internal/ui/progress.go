// Package ui renders pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sennaar/internal/pipeline"
)

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	prog    progress.Model
	rows    []headerRow
	index   map[string]int
	width   int
	done    bool
}

type headerRow struct {
	path    string
	label   string
	stage   pipeline.Stage
	cached  bool
	failed  bool
	merged  bool
	elapsed time.Duration
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders one row per
// header from events. The model quits when events is closed.
func NewProgressModel(title string, headers []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	rows := make([]headerRow, len(headers))
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		rows[i] = headerRow{path: h, label: string(pipeline.StatusQueued)}
		index[h] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		rows:    rows,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth, timeWidth = 12, 10
	nameWidth := max(m.width-statusWidth-timeWidth-6, 20)
	for _, row := range m.rows {
		status := styleStatus(row.label).Render(fmt.Sprintf("%12s", row.label))
		elapsed := ""
		if row.elapsed > 0 {
			elapsed = fmt.Sprintf("%8.1fms", float64(row.elapsed)/float64(time.Millisecond))
		}
		fmt.Fprintf(&b, "  %s %-*s %s\n", status, nameWidth, truncateLeft(row.path, nameWidth), elapsed)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.footer()))
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) footer() string {
	var finished, cached, failed int
	for _, row := range m.rows {
		if row.merged || row.failed {
			finished++
		}
		if row.cached {
			cached++
		}
		if row.failed {
			failed++
		}
	}
	return fmt.Sprintf("%d/%d headers, %d cached, %d failed", finished, len(m.rows), cached, failed)
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	if ev.Header == "" {
		return nil
	}
	idx, ok := m.index[ev.Header]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	row.elapsed += ev.Elapsed
	switch ev.Status {
	case pipeline.StatusError:
		row.failed = true
		row.label = "error"
	case pipeline.StatusCached:
		row.cached = true
		row.stage = ev.Stage
		row.label = "cached"
	case pipeline.StatusDone:
		row.stage = ev.Stage
		if ev.Stage == pipeline.StageMerge {
			row.merged = true
			if !row.cached {
				row.label = "done"
			}
		}
	case pipeline.StatusWorking:
		row.stage = ev.Stage
		row.label = stageLabel(ev.Stage)
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, row := range m.rows {
		total += rowProgress(row)
	}
	return total / float64(len(m.rows))
}

// rowProgress weighs a header by the last stage it reached.
func rowProgress(row headerRow) float64 {
	if row.merged || row.failed {
		return 1
	}
	if row.cached {
		return 0.9
	}
	for i, st := range pipeline.Stages {
		if st == row.stage {
			return float64(i+1) / float64(len(pipeline.Stages)+1)
		}
	}
	return 0
}

func stageLabel(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageParse:
		return "parsing"
	case pipeline.StageMap:
		return "mapping"
	case pipeline.StageName:
		return "naming"
	case pipeline.StageDedupe, pipeline.StageMaterialize:
		return "building"
	case pipeline.StageCache:
		return "caching"
	case pipeline.StageMerge:
		return "merging"
	default:
		return string(stage)
	}
}

func styleStatus(label string) lipgloss.Style {
	switch label {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "cached":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "queued":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

// truncateLeft keeps the end of a path, which names the header.
func truncateLeft(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.TruncateLeft(value, runewidth.StringWidth(value)-width, "")
	}
	return runewidth.TruncateLeft(value, runewidth.StringWidth(value)-width+3, "...")
}
