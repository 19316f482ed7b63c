package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sennaar/internal/diag"
	"sennaar/internal/ident"
	"sennaar/internal/libclang"
	"sennaar/internal/pipeline"
)

var astCmd = &cobra.Command{
	Use:   "ast <header>",
	Short: "Print the declarations lowered from a header",
	Long: `ast maps and names the declarations of one header and prints one line per
declaration with its kind, name and location. Anonymous records appear
under their synthesized names.`,
	Args: cobra.ExactArgs(1),
	RunE: runAST,
}

func init() {
	addClangFlags(astCmd.Flags())
	astCmd.Flags().String("on-mapping-error", "abort", "what to do with unmappable declarations (abort|skip)")
	astCmd.Flags().Bool("include-system-headers", false, "also map declarations from system headers")
}

func runAST(cmd *cobra.Command, args []string) error {
	ts, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer ts.close()

	header := args[0]
	flags := cmd.Flags()
	policyStr, _ := flags.GetString("on-mapping-error")
	policy, err := pipeline.ParseMappingPolicy(policyStr)
	if err != nil {
		return err
	}
	includeSystem, _ := flags.GetBool("include-system-headers")
	opts := pipeline.UnitOptions{SkipSystemHeaders: !includeSystem, OnMappingError: policy}

	fe := &libclang.Frontend{}
	root, dispose, err := fe.Parse(cmd.Context(), header, clangArgs(flags))
	if err != nil {
		ts.dump()
		return err
	}
	defer dispose()

	bag := diag.NewBag(0)
	low, lowerErr := pipeline.Lower(cmd.Context(), ident.Global(), root, opts, bag)
	if err := printDiagnostics(cmd, bag, "pretty", ""); err != nil {
		return err
	}
	if lowerErr != nil {
		ts.dump()
		return lowerErr
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, d := range low.Decls {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Kind, d.Name(), d.Loc)
	}
	return tw.Flush()
}
