package stages

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elapsedRows(year int, vals ...float64) []Row {
	rows := make([]Row, len(vals))
	for i, v := range vals {
		rows[i] = finish(riderName(i), year, "stage-1", i+1, v)
	}
	return rows
}

func elapsedOf(rows []Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = *r.Elapsed
	}
	return out
}

func TestTrimOutliersPerGroup_DropsOutlier(t *testing.T) {
	got, err := TrimOutliersPerGroup(elapsedRows(2020, 1, 2, 3, 4, 5, 100), ColElapsed, ColYear)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, elapsedOf(got))
}

func TestTrimOutliersPerGroup_ZeroIQR(t *testing.T) {
	got, err := TrimOutliersPerGroup(elapsedRows(2020, 7, 7, 7, 7, 8), ColElapsed, ColYear)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7, 7, 7}, elapsedOf(got))
}

func TestTrimOutliersPerGroup_GroupsAreIndependent(t *testing.T) {
	// 100 is an outlier in 2019 but ordinary in 2020; a global IQR would drop it.
	rows := append(elapsedRows(2019, 1, 2, 3, 4, 5, 100), elapsedRows(2020, 98, 99, 100, 101, 102)...)
	got, err := TrimOutliersPerGroup(rows, ColElapsed, ColYear)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 98, 99, 100, 101, 102}, elapsedOf(got))
}

func TestTrimOutliersPerGroup_SkipsAbsentValues(t *testing.T) {
	rows := elapsedRows(2020, 10, 11, 12)
	rows = append(rows, Row{Rider: "dnf", Year: 2020, StageResultsID: "stage-1"})
	got, err := TrimOutliersPerGroup(rows, ColElapsed, ColYear)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestTrimOutliersPerGroup_DoesNotMutateInput(t *testing.T) {
	rows := elapsedRows(2020, 1, 2, 3, 4, 5, 100)
	before := elapsedOf(rows)
	_, err := TrimOutliersPerGroup(rows, ColElapsed, ColYear)
	require.NoError(t, err)
	assert.Equal(t, before, elapsedOf(rows))
}

func TestTrimOutliersPerGroup_InvalidFields(t *testing.T) {
	var inv *InvalidInputError
	_, err := TrimOutliersPerGroup(nil, ColRider, ColYear)
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, ColRider, inv.Column)

	_, err = TrimOutliersPerGroup(nil, ColAge, "team")
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "team", inv.Column)
}

func TestTrimOutliersPerGroup_Empty(t *testing.T) {
	got, err := TrimOutliersPerGroup(nil, ColAge, ColYear)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRequireColumns(t *testing.T) {
	assert.NoError(t, RequireColumns([]string{"Rider", " rank", "elapsed", "age", "year", "stage_results_id", "team"}))

	err := RequireColumns([]string{"rider", "rank", "elapsed", "year", "stage_results_id"})
	var inv *InvalidInputError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, ColAge, inv.Column)
	assert.Contains(t, err.Error(), `column "age"`)
}

func TestIQRFence(t *testing.T) {
	lo, hi := iqrFence([]float64{100, 1, 5, 2, 4, 3})
	// Q1 = 2.25, Q3 = 4.75 by linear interpolation.
	assert.InDelta(t, -1.5, lo, 1e-12)
	assert.InDelta(t, 8.5, hi, 1e-12)
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
}
