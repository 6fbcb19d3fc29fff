package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// dataLabelsForGraph is a bar data set with text labels on the X axis,
// e.g. "KEN male" for a country and gender group.
type dataLabelsForGraph struct {
	labels    []string
	yValues   []float64
	colors    []drawing.Color
	nameYAxis string
	nameGraph string
}

func newDataLabelsForGraph(labels []string, y []float64, nameYAxis, nameGraph string) dataLabelsForGraph {
	return dataLabelsForGraph{
		labels:    labels,
		yValues:   y,
		nameYAxis: nameYAxis,
		nameGraph: nameGraph,
	}
}

func (d dataLabelsForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataLabelsForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataLabelsForGraph) getYValues() []float64 {
	return d.yValues
}

func (d dataLabelsForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	n := len(d.labels)
	if len(d.yValues) == 0 || n == 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if n < 2 {
		x = 10.0
	} else if n < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100        // ось Y и подписи
		spacingRatio = 0.2        // отступ между столбцами к ширине столбца
		aspectRatio  = 9.0 / 16.0 // соотношение сторон
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(n) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func (d dataLabelsForGraph) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		color := drawing.ColorPurple.WithAlpha(100)
		if i < len(d.colors) {
			color = d.colors[i]
		}
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: label,
			Style: chart.Style{FillColor: color},
		})
	}
	return bars
}

func (d dataLabelsForGraph) generateGrid() []chart.Tick {
	var ticks []chart.Tick
	max := findMaxValue(d.yValues)
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return nil
	}
	for i := 0.0; i <= max+gridStep/2; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.1f", i),
		})
	}
	return ticks
}
