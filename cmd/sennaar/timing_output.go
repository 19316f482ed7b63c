package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sennaar/internal/diag"
	"sennaar/internal/diagfmt"
	"sennaar/internal/observ"
	"sennaar/internal/pipeline"
)

// recordStageTimings adds the pipeline stages under parent. Unit stages are
// summed over headers, so with several jobs they can exceed the parent.
func recordStageTimings(timer *observ.Timer, parent int, timings *pipeline.Timings) {
	if timings == nil {
		return
	}
	for _, stage := range pipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		note := ""
		if stage != pipeline.StageMerge {
			note = "summed over headers"
		}
		timer.Record(parent, string(stage), timings.Duration(stage), note)
	}
}

// printDiagnostics renders bag to stderr in the requested format.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, format, baseDir string) error {
	if bag.Len() == 0 {
		return nil
	}
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	switch format {
	case "", "pretty":
		if quiet(cmd) && !bag.HasErrors() {
			return nil
		}
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{
			Color:     colorEnabled(),
			PathMode:  diagfmt.PathModeAuto,
			BaseDir:   baseDir,
			ShowNotes: true,
		})
		return nil
	case "json":
		return diagfmt.JSON(cmd.ErrOrStderr(), bag, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeAuto,
			BaseDir:      baseDir,
			Max:          maxDiag,
			IncludeNotes: true,
		})
	default:
		return fmt.Errorf("unsupported diagnostics format %q (must be pretty or json)", format)
	}
}
