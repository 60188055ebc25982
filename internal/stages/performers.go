package stages

import "sort"

// TopN is the number of riders kept by the leaderboard transforms.
const TopN = 5

// RiderCount is one leaderboard entry.
type RiderCount struct {
	Rider string `json:"rider"`
	Count int    `json:"count"`
}

// StageWinCounts counts stage wins (rank == 1) per rider and returns the
// top five, most wins first.
func StageWinCounts(rows []Row) []RiderCount {
	return topRiders(rows, func(r Row) bool { return r.Rank != nil && *r.Rank == 1 })
}

// StagesCompletedCounts counts stage rows per rider regardless of rank and
// returns the top five.
func StagesCompletedCounts(rows []Row) []RiderCount {
	return topRiders(rows, func(Row) bool { return true })
}

// topRiders groups by rider in name order, then stable-sorts by count so
// that ties keep the grouping order.
func topRiders(rows []Row, keep func(Row) bool) []RiderCount {
	counts := map[string]int{}
	for _, r := range rows {
		if keep(r) {
			counts[r.Rider]++
		}
	}
	out := make([]RiderCount, 0, len(counts))
	for rider, n := range counts {
		out = append(out, RiderCount{Rider: rider, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rider < out[j].Rider })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}
