package render

import (
	"io"

	"github.com/sgostarter/libsetpoint/setpoint"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

func NewChart(points []setpoint.PlotPoint, axes setpoint.AxisProvider, width, height int) chart.Chart {
	if width <= 0 {
		width = DefaultWidth
	}

	if height <= 0 {
		height = DefaultHeight
	}

	xs := make([]float64, 0, len(points)+1)
	ys := make([]float64, 0, len(points)+1)

	for _, p := range points {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}

	timeAxis := axes.Axis(setpoint.AxisTime)
	temperatureAxis := axes.Axis(setpoint.AxisTemperature)

	// a line series needs two vertices; a single point is drawn as a plateau to the end of the time axis
	if len(xs) == 1 {
		xs = append(xs, timeAxis.Max)
		ys = append(ys, ys[0])
	}

	return chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "Time (hours)",
			Range: &chart.ContinuousRange{Min: timeAxis.Min, Max: timeAxis.Max},
		},
		YAxis: chart.YAxis{
			Name:  "Temperature (°C)",
			Range: &chart.ContinuousRange{Min: temperatureAxis.Min, Max: temperatureAxis.Max},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "temperature setpoint",
				Style: chart.Style{
					StrokeColor: drawing.ColorRed,
					StrokeWidth: 2,
					DotWidth:    3,
					DotColor:    drawing.ColorRed,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
}

func SVG(w io.Writer, points []setpoint.PlotPoint, axes setpoint.AxisProvider) error {
	graph := NewChart(points, axes, DefaultWidth, DefaultHeight)

	return graph.Render(chart.SVG, w)
}

func PNG(w io.Writer, points []setpoint.PlotPoint, axes setpoint.AxisProvider) error {
	graph := NewChart(points, axes, DefaultWidth, DefaultHeight)

	return graph.Render(chart.PNG, w)
}
