package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"sennaar/internal/pipeline"
)

func TestApplyEvent(t *testing.T) {
	m := NewProgressModel("gen demo", []string{"a.h", "b.h", "c.h"}, nil).(*progressModel)
	events := []pipeline.Event{
		{Header: "a.h", Stage: pipeline.StageParse, Status: pipeline.StatusWorking},
		{Header: "a.h", Stage: pipeline.StageParse, Status: pipeline.StatusDone, Elapsed: 2 * time.Millisecond},
		{Header: "a.h", Stage: pipeline.StageMap, Status: pipeline.StatusWorking},
		{Header: "b.h", Stage: pipeline.StageCache, Status: pipeline.StatusCached, Elapsed: time.Millisecond},
		{Header: "b.h", Stage: pipeline.StageMerge, Status: pipeline.StatusDone},
		{Header: "c.h", Stage: pipeline.StageParse, Status: pipeline.StatusError, Err: errors.New("boom")},
		{Header: "unknown.h", Stage: pipeline.StageParse, Status: pipeline.StatusWorking},
		{Stage: pipeline.StageMerge, Status: pipeline.StatusDone},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}

	tests := []struct {
		row   int
		label string
	}{
		{0, "mapping"},
		{1, "cached"},
		{2, "error"},
	}
	for _, tt := range tests {
		if got := m.rows[tt.row].label; got != tt.label {
			t.Errorf("row %d label = %q, want %q", tt.row, got, tt.label)
		}
	}
	if m.rows[0].elapsed != 2*time.Millisecond {
		t.Errorf("elapsed not accumulated: %v", m.rows[0].elapsed)
	}
	if got := m.footer(); got != "2/3 headers, 1 cached, 1 failed" {
		t.Errorf("footer = %q", got)
	}
	if p := m.percent(); p <= 2.0/3 || p >= 1 {
		t.Errorf("percent = %v", p)
	}

	view := m.View()
	for _, want := range []string{"gen demo", "a.h", "2/3 headers"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q", want)
		}
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"include/demo.h", 40, "include/demo.h"},
		{"include/demo.h", 9, "...demo.h"},
		{"include/demo.h", 2, ".h"},
		{"include/demo.h", 0, "include/demo.h"},
	}
	for _, tt := range tests {
		if got := truncateLeft(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateLeft(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
