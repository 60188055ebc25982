package stages

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Density defaults.
const (
	DefaultGridPoints      = 1000
	DefaultMinObservations = 5
)

// Point is one (x, y) sample of a density curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DensityOptions tunes the per-year density builders.
type DensityOptions struct {
	// GridPoints is the number of evaluation points; 0 means DefaultGridPoints.
	GridPoints int
	// MinObservations skips year groups with fewer rows; 0 means DefaultMinObservations.
	MinObservations int
	// BandwidthFactor overrides Scott's factor n^(-1/5) when > 0.
	BandwidthFactor float64
}

// DefaultDensityOptions returns the dashboard's density settings.
func DefaultDensityOptions() DensityOptions {
	return DensityOptions{GridPoints: DefaultGridPoints, MinObservations: DefaultMinObservations}
}

func (o DensityOptions) normalized() DensityOptions {
	if o.GridPoints <= 0 {
		o.GridPoints = DefaultGridPoints
	}
	if o.MinObservations <= 0 {
		o.MinObservations = DefaultMinObservations
	}
	return o
}

// YearCurve is the density curve of one season.
type YearCurve struct {
	Year   int     `json:"year"`
	N      int     `json:"n"`
	Points []Point `json:"points"`
}

// DensitySet is a family of per-year curves sharing one x grid.
type DensitySet struct {
	GridMin float64     `json:"grid_min"`
	GridMax float64     `json:"grid_max"`
	Curves  []YearCurve `json:"curves"`
	// Skipped lists years left out for having too few observations or zero variance.
	Skipped []int `json:"skipped,omitempty"`
}

// DensityCurve evaluates a Gaussian kernel density estimate of values at
// gridPoints evenly spaced positions from gridMin to gridMax inclusive.
// The bandwidth follows Scott's rule. values must contain at least one
// element and have non-zero variance, otherwise ErrDegenerateSample is returned.
func DensityCurve(values []float64, gridMin, gridMax float64, gridPoints int) ([]Point, error) {
	return densityCurve(values, gridMin, gridMax, gridPoints, 0)
}

func densityCurve(values []float64, gridMin, gridMax float64, gridPoints int, factor float64) ([]Point, error) {
	if len(values) < 2 || math.IsNaN(gridMin) || math.IsNaN(gridMax) {
		return nil, ErrDegenerateSample
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, ErrDegenerateSample
	}
	if gridPoints <= 0 {
		gridPoints = DefaultGridPoints
	}
	if factor <= 0 {
		factor = math.Pow(float64(len(values)), -1.0/5)
	}
	h := sd * factor
	norm := 1 / (float64(len(values)) * h * math.Sqrt(2*math.Pi))

	xs := linspace(gridMin, gridMax, gridPoints)
	out := make([]Point, len(xs))
	for i, x := range xs {
		var sum float64
		for _, v := range values {
			z := (x - v) / h
			sum += math.Exp(-0.5 * z * z)
		}
		out[i] = Point{X: x, Y: sum * norm}
	}
	return out, nil
}

// linspace returns n evenly spaced values with both bounds included exactly.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	xs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	xs[n-1] = hi
	return xs
}

// StageTimeDensity trims elapsed-time outliers per year and builds one
// curve per year on a grid spanning the whole trimmed dataset.
func StageTimeDensity(rows []Row, opt DensityOptions) (*DensitySet, error) {
	trimmed, err := TrimOutliersPerGroup(rows, ColElapsed, ColYear)
	if err != nil {
		return nil, err
	}
	return densityByYear(trimmed, ColElapsed, opt)
}

// AgeDensity keeps one row per (rider, year), trims age outliers per year and
// builds one curve per year on a grid spanning the whole trimmed dataset.
func AgeDensity(rows []Row, opt DensityOptions) (*DensitySet, error) {
	trimmed, err := TrimOutliersPerGroup(UniqueRiderYears(rows), ColAge, ColYear)
	if err != nil {
		return nil, err
	}
	return densityByYear(trimmed, ColAge, opt)
}

// UniqueRiderYears keeps the first row of each (rider, year) pair.
func UniqueRiderYears(rows []Row) []Row {
	type riderYear struct {
		rider string
		year  int
	}
	seen := make(map[riderYear]bool, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		k := riderYear{r.Rider, r.Year}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func densityByYear(rows []Row, field string, opt DensityOptions) (*DensitySet, error) {
	opt = opt.normalized()
	set := &DensitySet{Curves: []YearCurve{}}
	if len(rows) == 0 {
		return set, nil
	}
	byYear := map[int][]float64{}
	set.GridMin, set.GridMax = math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		v, ok := r.numeric(field)
		if !ok {
			continue
		}
		byYear[r.Year] = append(byYear[r.Year], v)
		set.GridMin = math.Min(set.GridMin, v)
		set.GridMax = math.Max(set.GridMax, v)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		vals := byYear[y]
		if len(vals) < opt.MinObservations {
			set.Skipped = append(set.Skipped, y)
			continue
		}
		pts, err := densityCurve(vals, set.GridMin, set.GridMax, opt.GridPoints, opt.BandwidthFactor)
		if err == ErrDegenerateSample {
			set.Skipped = append(set.Skipped, y)
			continue
		}
		if err != nil {
			return nil, err
		}
		set.Curves = append(set.Curves, YearCurve{Year: y, N: len(vals), Points: pts})
	}
	return set, nil
}
