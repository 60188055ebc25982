package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/stages"
	"github.com/KaramelBytes/tdfdash/internal/stages/stagestest"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestBarsLeaderOnTop(t *testing.T) {
	p, err := Bars([]stages.RiderCount{{Rider: "Merckx", Count: 34}, {Rider: "Hinault", Count: 28}, {Rider: "Leducq", Count: 25}}, "Stage wins")
	require.NoError(t, err)
	ticks := p.Y.Tick.Marker.Ticks(0, 2)
	require.Len(t, ticks, 3)
	assert.Equal(t, "Leducq", ticks[0].Label)
	assert.Equal(t, "Merckx", ticks[2].Label)
}

func TestAttritionAxisRange(t *testing.T) {
	axis := []string{"stage-1", "stage-2", "stage-10"}
	series := []stages.YearAttrition{{Year: 2023, Stages: []stages.Attrition{
		{Year: 2023, StageResultsID: "stage-1", NumFinishers: 176, PctFinishers: 1},
		{Year: 2023, StageResultsID: "stage-2", NumFinishers: 100, PctFinishers: 100.0 / 176},
		{Year: 2023, StageResultsID: "stage-10", NumFinishers: 170, PctFinishers: 170.0 / 176},
	}}}
	p, err := Attrition(axis, series)
	require.NoError(t, err)
	assert.Equal(t, 0.7, p.Y.Min)
	assert.Equal(t, 1.02, p.Y.Max)
	ticks := p.X.Tick.Marker.Ticks(0, 2)
	require.Len(t, ticks, 3)
	assert.Equal(t, "stage-10", ticks[2].Label)
}

func TestRenderAllToPNG(t *testing.T) {
	v := report.Build("sample", stagestest.Sample(), stages.DefaultDensityOptions())
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			p, err := Render(name, v)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, WritePNG(&buf, p, 4*DefaultWidth/8, 4*DefaultHeight/8))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRenderEmptyDataset(t *testing.T) {
	v := report.Build("empty", nil, stages.DefaultDensityOptions())
	for _, name := range Names {
		p, err := Render(name, v)
		require.NoError(t, err, name)
		var buf bytes.Buffer
		require.NoError(t, WritePNG(&buf, p, 0, 0), name)
	}
}

func TestRenderUnknown(t *testing.T) {
	_, err := Render("podium", &report.Views{})
	assert.ErrorContains(t, err, "unknown chart")
}
