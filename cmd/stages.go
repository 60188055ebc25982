package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Inspect stage identifiers",
}

var stagesOrderCmd = &cobra.Command{
	Use:   "order <id>...",
	Short: "Print stage IDs in natural race order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range stages.OrderStages(args) {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var stagesParseCmd = &cobra.Command{
	Use:   "parse <id>...",
	Short: "Show the number and suffix parsed from stage IDs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			n, suffix := stages.ParseStageID(id)
			if n == stages.MalformedStageNumber {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t(malformed)\n", id, n)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", id, n, suffix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
	stagesCmd.AddCommand(stagesOrderCmd)
	stagesCmd.AddCommand(stagesParseCmd)
}
