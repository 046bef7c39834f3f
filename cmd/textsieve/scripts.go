package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nao1215/textsieve/internal/script"
	"github.com/spf13/cobra"
)

// NewScriptsCmd creates the scripts command.
func NewScriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the available script codes",
		Long: `Scripts lists the codes accepted by --scripts.

Baseline sets (punctuation, numbers, symbols) are always allowed, whatever
scripts are requested.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tDESCRIPTION\tBASELINE")
			for _, code := range script.Codes() {
				baseline := ""
				if script.IsBaseline(code) {
					baseline = "always"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", code, script.Describe(code), baseline)
			}
			return tw.Flush()
		},
	}
}
