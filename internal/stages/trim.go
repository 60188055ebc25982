package stages

import (
	"math"
	"sort"
)

// iqrFactor scales the interquartile range into the retention fence.
const iqrFactor = 1.5

// group is one partition of rows sharing a key, in first-appearance order.
type group struct {
	key  string
	rows []Row
}

// groupBy partitions rows by field, preserving first-appearance order of the
// groups and input order within each group.
func groupBy(rows []Row, field string) []group {
	idx := map[string]int{}
	var out []group
	for _, r := range rows {
		k := r.key(field)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, group{key: k})
		}
		out[i].rows = append(out[i].rows, r)
	}
	return out
}

// TrimOutliersPerGroup drops rows whose valueField is absent, partitions the
// rest by groupField and, within each partition, keeps only rows whose value
// lies inside [Q1-1.5*IQR, Q3+1.5*IQR] computed from that partition alone.
// The result concatenates the partitions in first-appearance order.
func TrimOutliersPerGroup(rows []Row, valueField, groupField string) ([]Row, error) {
	if !isNumericField(valueField) {
		return nil, &InvalidInputError{Column: valueField, Reason: "not a numeric column"}
	}
	if !isGroupField(groupField) {
		return nil, &InvalidInputError{Column: groupField, Reason: "not a grouping column"}
	}
	present := make([]Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := r.numeric(valueField); ok {
			present = append(present, r)
		}
	}
	out := make([]Row, 0, len(present))
	for _, g := range groupBy(present, groupField) {
		out = append(out, trimGroup(g.rows, valueField)...)
	}
	return out, nil
}

func trimGroup(rows []Row, field string) []Row {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i], _ = r.numeric(field)
	}
	lo, hi := iqrFence(vals)
	kept := make([]Row, 0, len(rows))
	for i, r := range rows {
		if v := vals[i]; v >= lo && v <= hi {
			kept = append(kept, r)
		}
	}
	return kept
}

// iqrFence returns the inclusive retention bounds for vals.
func iqrFence(vals []float64) (lo, hi float64) {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - iqrFactor*iqr, q3 + iqrFactor*iqr
}

// quantile interpolates linearly between closest ranks of an ascending slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
