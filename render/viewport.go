package render

import "github.com/sgostarter/libsetpoint/setpoint"

// Viewport maps between canvas pixels (origin top left, y pointing down) and chart data.
type Viewport struct {
	Width  int
	Height int
	Axes   setpoint.AxisProvider
}

func (vp Viewport) DataAt(px, py float64) (t, temperature float64) {
	timeAxis := vp.Axes.Axis(setpoint.AxisTime)
	temperatureAxis := vp.Axes.Axis(setpoint.AxisTemperature)

	if vp.Width > 0 {
		t = timeAxis.Min + px/float64(vp.Width)*(timeAxis.Max-timeAxis.Min)
	}

	if vp.Height > 0 {
		temperature = temperatureAxis.Max - py/float64(vp.Height)*(temperatureAxis.Max-temperatureAxis.Min)
	}

	return
}

func (vp Viewport) PixelAt(t, temperature float64) (px, py float64) {
	timeAxis := vp.Axes.Axis(setpoint.AxisTime)
	temperatureAxis := vp.Axes.Axis(setpoint.AxisTemperature)

	if span := timeAxis.Max - timeAxis.Min; span != 0 {
		px = (t - timeAxis.Min) / span * float64(vp.Width)
	}

	if span := temperatureAxis.Max - temperatureAxis.Min; span != 0 {
		py = (temperatureAxis.Max - temperature) / span * float64(vp.Height)
	}

	return
}
