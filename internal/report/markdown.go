package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// Markdown renders a compact summary with bracketed section tags.
func (v *Views) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if v.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", v.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", v.Rows))
	b.WriteString(fmt.Sprintf("Riders: %d\n", v.Riders))
	if len(v.Years) > 0 {
		b.WriteString(fmt.Sprintf("Years: %d-%d (%d seasons)\n", v.Years[0], v.Years[len(v.Years)-1], len(v.Years)))
	}

	b.WriteString("\n[STAGE WINS]\n")
	writeCounts(&b, v.StageWins)
	b.WriteString("\n[STAGES COMPLETED]\n")
	writeCounts(&b, v.StagesCompleted)

	b.WriteString("\n[DENSITY]\n")
	writeDensity(&b, "stage time", v.StageTime)
	writeDensity(&b, "age", v.Age)

	if len(v.Attrition) > 0 {
		b.WriteString("\n[ATTRITION]\n")
		for _, y := range v.Attrition {
			if len(y.Stages) == 0 {
				continue
			}
			last := y.Stages[len(y.Stages)-1]
			b.WriteString(fmt.Sprintf("- %d: %d stages, %s finished with %d riders (%.1f%% of peak)\n",
				y.Year, len(y.Stages), safeVal(last.StageResultsID), last.NumFinishers, last.PctFinishers*100))
		}
	}
	if len(v.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range v.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func writeCounts(b *strings.Builder, counts []stages.RiderCount) {
	if len(counts) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for i, c := range counts {
		b.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, safeVal(c.Rider), c.Count))
	}
}

func writeDensity(b *strings.Builder, label string, set *stages.DensitySet) {
	if set == nil || len(set.Curves) == 0 {
		b.WriteString(fmt.Sprintf("- %s: no curves\n", label))
	} else {
		b.WriteString(fmt.Sprintf("- %s: %d yearly curves over [%.4g, %.4g]\n", label, len(set.Curves), set.GridMin, set.GridMax))
	}
	if set != nil && len(set.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("  skipped: %v\n", set.Skipped))
	}
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
