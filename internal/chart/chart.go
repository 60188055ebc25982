// Package chart draws the dashboard views as PNG images with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// Chart names, also used as URL path segments and file names.
const (
	StageWins       = "stage-wins"
	StagesCompleted = "stages-completed"
	StageTime       = "stage-time"
	Age             = "age"
	AttritionChart  = "attrition"
)

// Names lists every chart in dashboard order.
var Names = []string{StageWins, StagesCompleted, StageTime, Age, AttritionChart}

// Default PNG size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// Attrition y-axis range.
const (
	attritionMin = 0.7
	attritionMax = 1.02
)

// curveColor is the semi-transparent black shared by the per-year lines.
var curveColor = color.NRGBA{A: 64}

// Bars draws a horizontal leaderboard with the leader on top.
func Bars(counts []stages.RiderCount, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Count"
	p.X.Min = 0
	if len(counts) == 0 {
		return p, nil
	}
	n := len(counts)
	values := make(plotter.Values, n)
	names := make([]string, n)
	// the plot's y axis grows upward, so the leader goes last
	for i, c := range counts {
		values[n-1-i] = float64(c.Count)
		names[n-1-i] = c.Rider
	}
	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.NRGBA{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff}
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

// Density overlays one line per year curve of set.
func Density(set *stages.DensitySet, title, xLabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Density"
	if set == nil {
		return p, nil
	}
	for _, c := range set.Curves {
		xys := make(plotter.XYs, len(c.Points))
		for i, pt := range c.Points {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("density %d: %w", c.Year, err)
		}
		line.Color = curveColor
		line.Width = vg.Points(1)
		p.Add(line)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Attrition draws each year's finisher share along the categorical stage axis.
func Attrition(axis []string, series []stages.YearAttrition) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Riders finishing each stage"
	p.X.Label.Text = "Stage"
	p.Y.Label.Text = "Share of the year's largest field"

	pos := make(map[string]float64, len(axis))
	for i, id := range axis {
		pos[id] = float64(i)
	}
	for _, y := range series {
		xys := make(plotter.XYs, 0, len(y.Stages))
		for _, a := range y.Stages {
			x, ok := pos[a.StageResultsID]
			if !ok {
				continue
			}
			xys = append(xys, plotter.XY{X: x, Y: a.PctFinishers})
		}
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("attrition %d: %w", y.Year, err)
		}
		line.Color = curveColor
		p.Add(line)
	}
	if len(axis) > 0 {
		p.NominalX(axis...)
		p.X.Tick.Label.Rotation = math.Pi / 2
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	// Add widens the axes to the data; the share axis stays fixed
	p.Y.Min, p.Y.Max = attritionMin, attritionMax
	return p, nil
}

// Render draws the named chart from v.
func Render(name string, v *report.Views) (*plot.Plot, error) {
	switch name {
	case StageWins:
		return Bars(v.StageWins, "Stage wins")
	case StagesCompleted:
		return Bars(v.StagesCompleted, "Stages completed")
	case StageTime:
		return Density(v.StageTime, "Stage time by year", "Elapsed time (s)")
	case Age:
		return Density(v.Age, "Rider age by year", "Age (years)")
	case AttritionChart:
		return Attrition(v.StageAxis, v.Attrition)
	}
	return nil, fmt.Errorf("unknown chart %q (known: %v)", name, Names)
}

// WritePNG encodes p as a PNG of the given size. Zero sizes use the defaults.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
