// Package plot draws the aggregate views as PNG charts.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoData = errors.New("nothing to plot")

var palette = []drawing.Color{
	drawing.ColorBlue,
	drawing.ColorRed,
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorPurple,
}

// line is one named Y series over the shared X values of a lineData.
type line struct {
	name    string
	yValues []float64
}

type lineData struct {
	xValues   []float64
	lines     []line
	nameXAxis string
	nameYAxis string
	nameGraph string
	// dots draws markers only, no connecting line
	dots bool
}

// DrawLines renders one or more series sharing an X axis, with a legend.
func DrawLines(data lineData) ([]byte, error) {
	if len(data.xValues) == 0 || len(data.lines) == 0 {
		return nil, ErrNoData
	}

	var all []float64
	series := make([]chart.Series, 0, len(data.lines))
	for i, l := range data.lines {
		color := palette[i%len(palette)]
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    3,
		}
		if data.dots {
			style.StrokeWidth = chart.Disabled
			style.DotWidth = 5
		}
		xs, ys := present(data.xValues, l.yValues)
		all = append(all, ys...)
		series = append(series, chart.ContinuousSeries{
			Name:    l.name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(all) == 0 {
		return nil, ErrNoData
	}

	graph := chart.Chart{
		Title: data.nameGraph,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 40,
			},
			FillColor: drawing.ColorWhite,
		},
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:  data.nameXAxis,
			Range: padded(findMinValue(data.xValues), findMaxValue(data.xValues), 1),
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.0f", vf)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  data.nameYAxis,
			Range: padded(findMinValue(all), findMaxValue(all), 0.1),
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.2f", vf)
				}
				return ""
			},
			GridMajorStyle: chart.Style{
				StrokeColor:     chart.ColorBlack,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// present drops NaN points, which mark a missing value for that X.
func present(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if i >= len(y) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// padded widens [min, max] so a single point still gives a non-zero range.
func padded(min, max, pad float64) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	if maxValue < 1e-10 {
		return 1e-10
	}

	// порядок величины и нормализация к [1, 10)
	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	return finalStep
}

func DrawPlotBar(data dataForGraph) ([]byte, error) {
	barValues := data.generateBarValues()
	if len(barValues) == 0 {
		return nil, ErrNoData
	}
	maxY := findMaxValue(data.getYValues())
	if maxY <= 0 {
		return nil, ErrNoData
	}
	ticks := data.generateGrid()
	if step := calculateGridStep(maxY); step > 0 {
		maxY = math.Ceil(maxY/step) * step
	}

	paddingX := customizePaddingXBottom(barValues)
	width, height := data.calculateChartDimensions(100)
	bar := chart.BarChart{}
	bar.Title = data.GetNameGraph()
	bar.Background = chart.Style{
		StrokeColor: chart.ColorBlack,
		Padding: chart.Box{
			Bottom: paddingX,
			Top:    50,
		},
	}
	bar.Height = height + 50
	bar.Width = width + paddingX + 50
	bar.BarWidth = 60
	bar.Bars = barValues
	bar.YAxis = chart.YAxis{
		Name: data.getNameYAxis(),
		Range: &chart.ContinuousRange{
			Min: 0.0,
			Max: maxY,
		},
		Style: chart.Style{
			StrokeWidth: 2,
			StrokeColor: chart.ColorBlack,
			FontSize:    17,
		},
		Ticks: ticks,
		GridMinorStyle: chart.Style{
			StrokeColor: chart.ColorBlack,
			StrokeWidth: 1,
			DotWidth:    1,
		},
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0}, // пунктир
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            17,
	}
	buffer := bytes.NewBuffer([]byte{})

	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func findMinValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	min := y[0]
	for _, v := range y {
		if v < min {
			min = v
		}
	}
	return min
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return count * 8
}
