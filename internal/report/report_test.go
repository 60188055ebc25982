package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tdfdash/internal/stages"
	"github.com/KaramelBytes/tdfdash/internal/stages/stagestest"
)

func TestBuildViews(t *testing.T) {
	rows := stagestest.Sample(2022, 2023)
	v := Build("sample", rows, stages.DefaultDensityOptions())
	assert.Equal(t, len(rows), v.Rows)
	assert.Equal(t, []int{2022, 2023}, v.Years)
	require.NotEmpty(t, v.StageWins)
	assert.Equal(t, "Pogačar", v.StageWins[0].Rider)
	assert.Len(t, v.StagesCompleted, stages.TopN)
	assert.Equal(t, stagestest.StageIDs, v.StageAxis)
	require.Len(t, v.Attrition, 2)
	assert.Empty(t, v.Warnings)
	require.NotNil(t, v.StageTime)
	assert.Len(t, v.StageTime.Curves, 2)
}

func TestBuildEmpty(t *testing.T) {
	v := Build("empty", nil, stages.DefaultDensityOptions())
	assert.Zero(t, v.Rows)
	assert.Empty(t, v.StageWins)
	assert.Empty(t, v.Attrition)
	md := v.Markdown()
	assert.Contains(t, md, "Rows: 0")
	assert.Contains(t, md, "(none)")
}

func TestLeaderboardTable(t *testing.T) {
	var buf bytes.Buffer
	Leaderboard(&buf, "Stage wins", []stages.RiderCount{{Rider: "Merckx", Count: 34}, {Rider: "Cavendish", Count: 34}})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\nStage wins\n"))
	assert.Less(t, strings.Index(out, "Merckx"), strings.Index(out, "Cavendish"))
	assert.Contains(t, out, "34")
}

func TestAttritionTable(t *testing.T) {
	var buf bytes.Buffer
	Attrition(&buf, []stages.Attrition{{Year: 2023, StageResultsID: "stage-21", NumFinishers: 150, PctFinishers: 0.75}})
	assert.Contains(t, buf.String(), "stage-21")
	assert.Contains(t, buf.String(), "75.0%")
}

func TestTablesAndMarkdown(t *testing.T) {
	v := Build("sample.csv", stagestest.Sample(), stages.DefaultDensityOptions())

	var buf bytes.Buffer
	Tables(&buf, v)
	out := buf.String()
	for _, want := range []string{"sample.csv", "Stage wins", "Stages completed", "Age density", "stage-7b"} {
		assert.Contains(t, out, want)
	}

	md := v.Markdown()
	assert.Contains(t, md, "[DATASET SUMMARY]")
	assert.Contains(t, md, "Years: 2021-2023 (3 seasons)")
	assert.Contains(t, md, "1. Pogačar (")
	assert.Contains(t, md, "[ATTRITION]")
	assert.Contains(t, md, "stage-10 finished with")
}

func TestDensitySkippedYears(t *testing.T) {
	rows := append(stagestest.Sample(2023), stages.Row{Rider: "lone", Year: 1903, StageResultsID: "stage-1", Elapsed: stages.Float(14400), Age: stages.Float(30)})
	v := Build("x", rows, stages.DefaultDensityOptions())
	var buf bytes.Buffer
	Density(&buf, "Stage time", v.StageTime)
	assert.Contains(t, buf.String(), "skipped years: [1903]")
	assert.Contains(t, v.Markdown(), "skipped: [1903]")
}
