// Package stages holds the stage-result analytics behind the dashboard views:
// top-performer counts, per-year outlier trimming, kernel density curves,
// natural stage ordering and attrition.
//
// Every function here is pure. Inputs are never mutated and each call
// allocates its own output, so callers may share a row slice across
// goroutines without locking.
package stages

import "strconv"

// Column names of the raw stage-results table.
const (
	ColRider          = "rider"
	ColRank           = "rank"
	ColElapsed        = "elapsed"
	ColAge            = "age"
	ColYear           = "year"
	ColStageResultsID = "stage_results_id"
)

// Columns lists the required columns in canonical order.
var Columns = []string{ColRider, ColRank, ColElapsed, ColAge, ColYear, ColStageResultsID}

// Row is one rider-finish record. Rank, Elapsed and Age are nil when absent.
type Row struct {
	Rider          string   `json:"rider"`
	Rank           *int     `json:"rank,omitempty"`
	Elapsed        *float64 `json:"elapsed,omitempty"`
	Age            *float64 `json:"age,omitempty"`
	Year           int      `json:"year"`
	StageResultsID string   `json:"stage_results_id"`
}

// Int returns a pointer to v, for building rows with a present rank.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building rows with a present elapsed/age.
func Float(v float64) *float64 { return &v }

// numeric returns the value of a numeric column and whether it is present.
func (r Row) numeric(field string) (float64, bool) {
	switch field {
	case ColRank:
		if r.Rank == nil {
			return 0, false
		}
		return float64(*r.Rank), true
	case ColElapsed:
		if r.Elapsed == nil {
			return 0, false
		}
		return *r.Elapsed, true
	case ColAge:
		if r.Age == nil {
			return 0, false
		}
		return *r.Age, true
	case ColYear:
		return float64(r.Year), true
	}
	return 0, false
}

// key returns a comparable grouping key for the given column.
func (r Row) key(field string) string {
	switch field {
	case ColRider:
		return r.Rider
	case ColYear:
		return strconv.Itoa(r.Year)
	case ColStageResultsID:
		return r.StageResultsID
	case ColRank:
		if r.Rank == nil {
			return ""
		}
		return strconv.Itoa(*r.Rank)
	}
	return ""
}

func isNumericField(field string) bool {
	switch field {
	case ColRank, ColElapsed, ColAge, ColYear:
		return true
	}
	return false
}

func isGroupField(field string) bool {
	switch field {
	case ColRider, ColYear, ColStageResultsID, ColRank:
		return true
	}
	return false
}
