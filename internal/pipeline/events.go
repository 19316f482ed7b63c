package pipeline

import (
	"sync"
	"time"
)

// Stage describes a step of the per-header pipeline.
type Stage string

const (
	// StageParse runs the front end over a header.
	StageParse Stage = "parse"
	// StageMap builds IR declarations from the cursor tree.
	StageMap Stage = "map"
	// StageName names anonymous records.
	StageName Stage = "name"
	// StageDedupe collapses redeclarations.
	StageDedupe Stage = "dedupe"
	// StageMaterialize fills the unit registry.
	StageMaterialize Stage = "materialize"
	// StageCache looks up or stores the unit registry on disk.
	StageCache Stage = "cache"
	// StageMerge folds unit registries into the result.
	StageMerge Stage = "merge"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageParse, StageMap, StageName, StageDedupe, StageMaterialize, StageCache, StageMerge}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the header is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished.
	StatusDone Status = "done"
	// StatusCached indicates the result came from the disk cache.
	StatusCached Status = "cached"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for a header (or for the whole run when Header is
// empty).
type Event struct {
	Header  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks are called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// Timings accumulates stage durations across headers.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

// Add adds dur to the total of stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t *Timings) Has(stage Stage) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t *Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.Duration(stage)
	}
	return total
}
