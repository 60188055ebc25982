package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/utils"
)

var (
	anaFormat     string
	anaOutputPath string
	anaSheetName  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Compute the five dashboard views and print them",
	Long: `Compute stage wins, stages completed, stage-time and age densities and
attrition by stage. Without a file argument the configured data source is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.DataPath = args[0]
			cfg.WarehouseDSN = ""
		}
		if anaSheetName != "" {
			cfg.DataSheet = anaSheetName
		}
		v, err := loadViews(cmd.Context())
		if err != nil {
			return err
		}

		var out string
		switch strings.ToLower(anaFormat) {
		case "table", "":
			var sb strings.Builder
			report.Tables(&sb, v)
			out = sb.String()
		case "markdown", "md":
			out = v.Markdown()
		case "json":
			b, err := utils.PrettyJSON(v)
			if err != nil {
				return err
			}
			out = string(b) + "\n"
		default:
			return fmt.Errorf("unsupported --format: %s (use table|markdown|json)", anaFormat)
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("Wrote analysis to %s", anaOutputPath))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "table", "output format: table|markdown|json")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX: sheet name (default: first sheet)")
}
