package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// Leaderboard prints a ranked rider table under title.
func Leaderboard(w io.Writer, title string, counts []stages.RiderCount) {
	if title != "" {
		fmt.Fprintf(w, "\n%s\n", title)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Rider", "Count"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, c := range counts {
		table.Append([]string{strconv.Itoa(i + 1), c.Rider, strconv.Itoa(c.Count)})
	}
	table.Render()
}

// Attrition prints one line per (year, stage) in the order given.
func Attrition(w io.Writer, rows []stages.Attrition) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "Stage", "Finishers", "Pct"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, a := range rows {
		table.Append([]string{
			strconv.Itoa(a.Year),
			a.StageResultsID,
			strconv.Itoa(a.NumFinishers),
			fmt.Sprintf("%.1f%%", a.PctFinishers*100),
		})
	}
	table.Render()
}

// Density prints the per-year peak of each curve plus the skipped years.
func Density(w io.Writer, title string, set *stages.DensitySet) {
	if title != "" {
		fmt.Fprintf(w, "\n%s\n", title)
	}
	if set == nil {
		fmt.Fprintln(w, "(no data)")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "N", "Mode", "Peak density"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, c := range set.Curves {
		mode := peak(c.Points)
		table.Append([]string{
			strconv.Itoa(c.Year),
			strconv.Itoa(c.N),
			fmt.Sprintf("%.4g", mode.X),
			fmt.Sprintf("%.4g", mode.Y),
		})
	}
	table.Render()
	if len(set.Skipped) > 0 {
		fmt.Fprintf(w, "skipped years: %v\n", set.Skipped)
	}
}

func peak(pts []stages.Point) stages.Point {
	var best stages.Point
	for i, p := range pts {
		if i == 0 || p.Y > best.Y {
			best = p
		}
	}
	return best
}

// Tables prints every view of v.
func Tables(w io.Writer, v *Views) {
	fmt.Fprintf(w, "%s: %d rows, %d riders, %d years\n", v.Name, v.Rows, v.Riders, len(v.Years))
	Leaderboard(w, "Stage wins", v.StageWins)
	Leaderboard(w, "Stages completed", v.StagesCompleted)
	Density(w, "Stage time density (per year)", v.StageTime)
	Density(w, "Age density (per year)", v.Age)
	fmt.Fprintf(w, "\nAttrition\n")
	var flat []stages.Attrition
	for _, y := range v.Attrition {
		flat = append(flat, y.Stages...)
	}
	Attrition(w, flat)
	for _, warn := range v.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
