package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageWinCounts(t *testing.T) {
	rows := []Row{
		finish("Merckx", 1970, "stage-1", 1, 100),
		finish("Merckx", 1970, "stage-2", 1, 100),
		finish("Merckx", 1970, "stage-3", 2, 100),
		finish("Cavendish", 2011, "stage-5", 1, 100),
		finish("Hinault", 1979, "stage-1", 1, 100),
		{Rider: "DNF", Year: 1979, StageResultsID: "stage-2"},
	}
	got := StageWinCounts(rows)
	assert.Equal(t, []RiderCount{
		{Rider: "Merckx", Count: 2},
		{Rider: "Cavendish", Count: 1},
		{Rider: "Hinault", Count: 1},
	}, got)
}

func TestStagesCompletedCounts_TopFive(t *testing.T) {
	var rows []Row
	for i, n := range []int{3, 7, 7, 1, 4, 2, 9} {
		for s := 0; s < n; s++ {
			rows = append(rows, Row{Rider: riderName(i), Year: 2000, StageResultsID: "stage-1"})
		}
	}
	got := StagesCompletedCounts(rows)
	assert.Len(t, got, TopN)
	assert.Equal(t, RiderCount{Rider: riderName(6), Count: 9}, got[0])
	// Ties keep rider-name order.
	assert.Equal(t, riderName(1), got[1].Rider)
	assert.Equal(t, riderName(2), got[2].Rider)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Count, got[i].Count)
	}
}

func TestLeaderboards_Empty(t *testing.T) {
	assert.Empty(t, StageWinCounts(nil))
	assert.Empty(t, StagesCompletedCounts([]Row{}))
}

func TestLeaderboards_Idempotent(t *testing.T) {
	rows := append(stageField(2020, "stage-1", 30), stageField(2020, "stage-2", 20)...)
	assert.Equal(t, StagesCompletedCounts(rows), StagesCompletedCounts(rows))
	assert.Equal(t, StageWinCounts(rows), StageWinCounts(rows))
}
