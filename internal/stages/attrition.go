package stages

import "sort"

// Attrition is the finisher count of one stage relative to the busiest stage
// of the same year.
type Attrition struct {
	Year           int     `json:"year"`
	StageResultsID string  `json:"stage_results_id"`
	NumFinishers   int     `json:"num_finishers"`
	PctFinishers   float64 `json:"pct_finishers"`
}

// YearAttrition is one season's attrition, ordered along the stage axis.
type YearAttrition struct {
	Year   int         `json:"year"`
	Stages []Attrition `json:"stages"`
}

// AttritionByStage counts distinct riders per (year, stage) and divides by
// the largest count seen in that year. Rows come out grouped by year
// ascending, then stage ID in plain string order; callers apply OrderStages
// for display.
func AttritionByStage(rows []Row) []Attrition {
	type yearStage struct {
		year  int
		stage string
	}
	riders := map[yearStage]map[string]struct{}{}
	for _, r := range rows {
		k := yearStage{r.Year, r.StageResultsID}
		set := riders[k]
		if set == nil {
			set = map[string]struct{}{}
			riders[k] = set
		}
		set[r.Rider] = struct{}{}
	}

	out := make([]Attrition, 0, len(riders))
	maxByYear := map[int]int{}
	for k, set := range riders {
		n := len(set)
		out = append(out, Attrition{Year: k.year, StageResultsID: k.stage, NumFinishers: n})
		if n > maxByYear[k.year] {
			maxByYear[k.year] = n
		}
	}
	for i := range out {
		out[i].PctFinishers = float64(out[i].NumFinishers) / float64(maxByYear[out[i].Year])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].StageResultsID < out[j].StageResultsID
	})
	return out
}

// AttritionSeries returns the global stage axis and, per year ascending, that
// year's attrition reordered onto the axis.
func AttritionSeries(rows []Row) ([]string, []YearAttrition) {
	att := AttritionByStage(rows)
	ids := make([]string, len(att))
	for i, a := range att {
		ids[i] = a.StageResultsID
	}
	axis := StageAxis(ids)

	var series []YearAttrition
	for start := 0; start < len(att); {
		end := start
		for end < len(att) && att[end].Year == att[start].Year {
			end++
		}
		series = append(series, YearAttrition{Year: att[start].Year, Stages: orderAttrition(att[start:end])})
		start = end
	}
	return axis, series
}

func orderAttrition(in []Attrition) []Attrition {
	out := make([]Attrition, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return stageLess(out[i].StageResultsID, out[j].StageResultsID) })
	return out
}
