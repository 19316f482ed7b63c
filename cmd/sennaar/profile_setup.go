package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sennaar/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	root := cmd.Root()
	cpu, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	mem, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	return prof.Start(prof.Options{CPU: cpu, Mem: mem, Trace: tracePath})
}
