// Package report renders the dashboard views as terminal tables and as a
// Markdown summary that doubles as dataset context for the chat prompt.
package report

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// Views holds every dashboard view computed from one dataset.
type Views struct {
	Name            string                 `json:"name"`
	Rows            int                    `json:"rows"`
	Years           []int                  `json:"years"`
	Riders          int                    `json:"riders"`
	StageWins       []stages.RiderCount    `json:"stage_wins"`
	StagesCompleted []stages.RiderCount    `json:"stages_completed"`
	StageTime       *stages.DensitySet     `json:"stage_time"`
	Age             *stages.DensitySet     `json:"age"`
	StageAxis       []string               `json:"stage_axis"`
	Attrition       []stages.YearAttrition `json:"attrition"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// Build computes all views over rows. Density failures become warnings so
// the remaining views are still usable.
func Build(name string, rows []stages.Row, opt stages.DensityOptions) *Views {
	v := &Views{
		Name:            name,
		Rows:            len(rows),
		StageWins:       stages.StageWinCounts(rows),
		StagesCompleted: stages.StagesCompletedCounts(rows),
	}
	years := map[int]bool{}
	riders := map[string]bool{}
	for _, r := range rows {
		years[r.Year] = true
		riders[r.Rider] = true
	}
	for y := range years {
		v.Years = append(v.Years, y)
	}
	sort.Ints(v.Years)
	v.Riders = len(riders)

	var err error
	if v.StageTime, err = stages.StageTimeDensity(rows, opt); err != nil {
		v.Warnings = append(v.Warnings, fmt.Sprintf("stage time density: %v", err))
	}
	if v.Age, err = stages.AgeDensity(rows, opt); err != nil {
		v.Warnings = append(v.Warnings, fmt.Sprintf("age density: %v", err))
	}
	v.StageAxis, v.Attrition = stages.AttritionSeries(rows)
	return v
}
