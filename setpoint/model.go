package setpoint

type AxisName string

const (
	AxisTime        AxisName = "t"
	AxisTemperature AxisName = "T"
)

// Point is a setpoint in continuous coordinates.
type Point struct {
	Time        float64 `json:"time" yaml:"time"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// PlotPoint is one vertex of the staircase handed to a line renderer.
type PlotPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Axis struct {
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	Divisions float64 `json:"divisions" yaml:"divisions"`
}

type AxisProvider interface {
	Axis(name AxisName) Axis
}

type StaticAxes struct {
	Time        Axis `json:"time" yaml:"time"`
	Temperature Axis `json:"temperature" yaml:"temperature"`
}

func (axes StaticAxes) Axis(name AxisName) Axis {
	if name == AxisTemperature {
		return axes.Temperature
	}

	return axes.Time
}

func DefaultAxes() StaticAxes {
	return StaticAxes{
		Time:        Axis{Min: 0, Max: 100, Divisions: 100},
		Temperature: Axis{Min: 35, Max: 75, Divisions: 40},
	}
}

func DefaultPoints() []Point {
	return []Point{
		{Time: 0, Temperature: 75},
		{Time: 1, Temperature: 60},
		{Time: 2, Temperature: 50},
		{Time: 3, Temperature: 40},
		{Time: 5, Temperature: 35},
	}
}

type ToggleResult int

const (
	ToggleInserted ToggleResult = iota
	ToggleRemoved
	// ToggleKept means the click hit the only remaining point.
	ToggleKept
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleInserted:
		return "inserted"
	case ToggleRemoved:
		return "removed"
	case ToggleKept:
		return "kept"
	}

	return "unknown"
}
