package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/tdfdash/internal/chart"
	"github.com/KaramelBytes/tdfdash/internal/utils"
)

var (
	chartOutDir string
	chartOnly   []string
	chartWidth  float64
	chartHeight float64
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the dashboard charts as PNG files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := chartOnly
		if len(names) == 0 {
			names = chart.Names
		}
		v, err := loadViews(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			p, err := chart.Render(name, v)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := chart.WritePNG(&buf, p, vg.Length(chartWidth)*vg.Inch, vg.Length(chartHeight)*vg.Inch); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			path := filepath.Join(chartOutDir, name+".png")
			if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("Wrote %s", path))
		}
		for _, w := range v.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), warning("%s", w))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutDir, "out", "o", "charts", "output directory")
	chartCmd.Flags().StringSliceVar(&chartOnly, "only", nil, "render only these charts: stage-wins,stages-completed,stage-time,age,attrition")
	chartCmd.Flags().Float64Var(&chartWidth, "width", 8, "image width in inches")
	chartCmd.Flags().Float64Var(&chartHeight, "height", 5, "image height in inches")
}
