package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sennaar/internal/pipeline"
	"sennaar/internal/ui"
)

type runOutcome struct {
	result *pipeline.Result
	err    error
}

// runWithUI runs the pipeline while a bubbletea program renders its events.
func runWithUI(ctx context.Context, title string, cfg pipeline.Config) (*pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		cfg.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, cfg)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, cfg.Headers, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
