package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sennaar/internal/cir"
	"sennaar/internal/diag"
	"sennaar/internal/registry"
)

var checkCmd = &cobra.Command{
	Use:   "check <registry>",
	Short: "Validate a registry document",
	Long: `check validates a JSON or YAML registry document against the registry
schema, then reports pointer parameters whose nullability disagrees with
their optionality.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "document format (json|yaml, default by extension)")
	checkCmd.Flags().String("diagnostics-format", "pretty", "diagnostics output format (pretty|json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = formatFromPath(path)
	}
	format, err := registry.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	diagFormat, _ := cmd.Flags().GetString("diagnostics-format")
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	bag := diag.NewBag(maxDiag)
	checkDocument(path, format, bag)
	bag.Sort()
	if err := printDiagnostics(cmd, bag, diagFormat, filepath.Dir(path)); err != nil {
		return err
	}
	if bag.HasErrors() {
		return fmt.Errorf("%s: registry check failed", path)
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: ok\n", path)
	}
	return nil
}

// checkDocument reports every problem of the document at path to bag.
func checkDocument(path string, format registry.Format, bag *diag.Bag) {
	at := cir.Location{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		bag.Add(diag.NewError(diag.IOLoadFileError, at, err.Error()))
		return
	}
	reg, err := registry.Decode(bytes.NewReader(data), format)
	if err != nil {
		bag.Add(diag.NewError(diag.RegDecode, at, err.Error()))
		return
	}
	doc := data
	if format == registry.FormatYAML {
		if doc, err = registry.MarshalDocument(reg); err != nil {
			bag.Add(diag.NewError(diag.RegDecode, at, err.Error()))
			return
		}
	}
	diag.Collect(bag, registry.Validate(doc), at)
	diag.Collect(bag, reg.Sanitize(), at)
}
