package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sennaar/internal/config"
	"sennaar/internal/libclang"
	"sennaar/internal/observ"
	"sennaar/internal/pipeline"
	"sennaar/internal/registry"
)

var genCmd = &cobra.Command{
	Use:   "gen [headers...]",
	Short: "Generate a registry from C headers",
	Long: `gen parses each header with libclang, lowers its declarations and merges
the per-header registries in the order given. Settings missing from the
command line are read from the nearest sennaar.toml.`,
	RunE: runGen,
}

func init() {
	genCmd.Flags().String("name", "", "registry name (defaults to the manifest or the first header)")
	genCmd.Flags().StringP("output", "o", "", "write the registry to a file instead of stdout")
	genCmd.Flags().String("format", "", "registry format (json|yaml)")
	genCmd.Flags().IntP("jobs", "j", 0, "headers processed in parallel (0 = GOMAXPROCS)")
	addClangFlags(genCmd.Flags())
	genCmd.Flags().String("on-mapping-error", "", "what to do with unmappable declarations (abort|skip)")
	genCmd.Flags().Bool("include-system-headers", false, "also map declarations from system headers")
	genCmd.Flags().Bool("no-cache", false, "do not read or write the unit cache")
	genCmd.Flags().Bool("clean-cache", false, "drop every cached unit before running")
	genCmd.Flags().Bool("sanitize-fix", false, "make pointer nullability follow parameter optionality")
	genCmd.Flags().String("diagnostics-format", "pretty", "diagnostics output format (pretty|json)")
}

// genOptions is the manifest merged with the command line.
type genOptions struct {
	pipeline   pipeline.Config
	output     string
	format     registry.Format
	useCache   bool
	cleanCache bool
	fix        bool
	diagFormat string
	baseDir    string
}

func runGen(cmd *cobra.Command, args []string) error {
	ts, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer ts.close()
	profiles, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiles.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}()

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	timer := observ.NewTimer()

	setup := timer.Begin("setup")
	opts, err := resolveGenOptions(cmd, args)
	if err != nil {
		return err
	}
	if opts.useCache || opts.cleanCache {
		cache, err := pipeline.OpenDiskCache("sennaar")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if opts.cleanCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clean cache: %w", err)
			}
		}
		if opts.useCache {
			opts.pipeline.Cache = cache
		}
	}
	timer.End(setup, "")

	uiFlag, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	run := timer.Begin("pipeline")
	var res *pipeline.Result
	if shouldUseTUI(mode, len(opts.pipeline.Headers)) && !quiet(cmd) {
		res, err = runWithUI(cmd.Context(), "sennaar gen "+opts.pipeline.Name, opts.pipeline)
	} else {
		res, err = pipeline.Run(cmd.Context(), opts.pipeline)
	}
	if err != nil {
		ts.dump()
		return err
	}
	timer.End(run, fmt.Sprintf("%d headers", len(opts.pipeline.Headers)))
	recordStageTimings(timer, run, res.Timings)

	if opts.fix {
		if n := res.Registry.SanitizeFix(); n > 0 && !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "sanitize: adjusted %d parameters\n", n)
		}
	}

	res.Bag.Sort()
	if err := printDiagnostics(cmd, res.Bag, opts.diagFormat, opts.baseDir); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		ts.dump()
		return fmt.Errorf("generation failed: %s", failedUnits(res.Units))
	}

	write := timer.Begin("write")
	if err := writeRegistry(cmd.OutOrStdout(), opts.output, res.Registry, opts.format); err != nil {
		return err
	}
	timer.End(write, opts.format.String())

	if !quiet(cmd) {
		printUnitSummary(cmd.ErrOrStderr(), res)
	}
	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

// resolveGenOptions layers flags over the manifest found from the working
// directory. Without a manifest, headers must come from the command line.
func resolveGenOptions(cmd *cobra.Command, args []string) (genOptions, error) {
	manifest, found, err := config.Load(".")
	if err != nil {
		return genOptions{}, err
	}
	flags := cmd.Flags()

	var opts genOptions
	var cfg config.Config
	if found {
		cfg = manifest.Config
		opts.baseDir = manifest.Root
		opts.pipeline.Headers = manifest.Headers()
		opts.output = manifest.Resolve(cfg.Output.Path)
		opts.useCache = cfg.Pipeline.Cache
		opts.pipeline.Imports = cfg.Imports()
		opts.pipeline.Metadata = cfg.Registry.Metadata
		opts.pipeline.ClangArgs = append(opts.pipeline.ClangArgs, cfg.Input.ClangArgs...)
		opts.pipeline.Options = cfg.UnitOptions()
		opts.pipeline.Jobs = cfg.Pipeline.Jobs
		opts.pipeline.Name = cfg.Registry.Name
	} else {
		opts.baseDir, _ = os.Getwd()
		opts.useCache = true
		opts.pipeline.Options.SkipSystemHeaders = true
	}

	if len(args) > 0 {
		opts.pipeline.Headers = args
	}
	if len(opts.pipeline.Headers) == 0 {
		return genOptions{}, errors.New("no headers given and no sennaar.toml with [input].headers found")
	}

	if flags.Changed("name") {
		opts.pipeline.Name, _ = flags.GetString("name")
	}
	if opts.pipeline.Name == "" {
		base := filepath.Base(opts.pipeline.Headers[0])
		opts.pipeline.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if flags.Changed("output") {
		opts.output, _ = flags.GetString("output")
	}

	formatStr := cfg.Output.Format
	if flags.Changed("format") {
		formatStr, _ = flags.GetString("format")
	} else if formatStr == "" {
		formatStr = formatFromPath(opts.output)
	}
	if opts.format, err = registry.ParseFormat(formatStr); err != nil {
		return genOptions{}, err
	}

	if flags.Changed("jobs") {
		if opts.pipeline.Jobs, _ = flags.GetInt("jobs"); opts.pipeline.Jobs < 0 {
			return genOptions{}, fmt.Errorf("--jobs must not be negative")
		}
	}
	if flags.Changed("on-mapping-error") {
		policy, _ := flags.GetString("on-mapping-error")
		if opts.pipeline.Options.OnMappingError, err = pipeline.ParseMappingPolicy(policy); err != nil {
			return genOptions{}, err
		}
	}
	if flags.Changed("include-system-headers") {
		include, _ := flags.GetBool("include-system-headers")
		opts.pipeline.Options.SkipSystemHeaders = !include
	}

	opts.pipeline.ClangArgs = append(opts.pipeline.ClangArgs, clangArgs(flags)...)

	if noCache, _ := flags.GetBool("no-cache"); noCache {
		opts.useCache = false
	}
	opts.cleanCache, _ = flags.GetBool("clean-cache")
	opts.fix, _ = flags.GetBool("sanitize-fix")
	opts.diagFormat, _ = flags.GetString("diagnostics-format")

	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return genOptions{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.pipeline.MaxDiagnostics = maxDiag
	opts.pipeline.Frontend = &libclang.Frontend{}
	return opts, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// writeRegistry writes to path, or to stdout when path is empty. Files are
// replaced atomically.
func writeRegistry(stdout io.Writer, path string, reg *registry.Registry, f registry.Format) (err error) {
	if path == "" {
		return registry.Encode(stdout, reg, f)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sennaar-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = registry.Encode(tmp, reg, f); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func failedUnits(units []pipeline.UnitReport) string {
	var failed []string
	for _, u := range units {
		if u.Failed {
			failed = append(failed, u.Header)
		}
	}
	if len(failed) == 0 {
		return "errors reported"
	}
	return strings.Join(failed, ", ")
}

func printUnitSummary(out io.Writer, res *pipeline.Result) {
	cached := 0
	for _, u := range res.Units {
		if u.Cached {
			cached++
		}
	}
	fmt.Fprintf(out, "%s: %d entities from %d headers (%d cached)\n",
		res.Registry.Name, res.Registry.Len(), len(res.Units), cached)
}
