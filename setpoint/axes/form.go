package axes

import (
	"fmt"
	"math"
	"os"

	"github.com/sgostarter/libsetpoint/setpoint"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	KeyTimeMin        = "t_min"
	KeyTimeMax        = "t_max"
	KeyTimeDivs       = "t_divs"
	KeyTemperatureMin = "T_min"
	KeyTemperatureMax = "T_max"
	KeyTemperatureDiv = "T_divs"
)

func MinKey(name setpoint.AxisName) string {
	return string(name) + "_min"
}

func MaxKey(name setpoint.AxisName) string {
	return string(name) + "_max"
}

func DivsKey(name setpoint.AxisName) string {
	return string(name) + "_divs"
}

// Form is the set of numeric input fields the axis parameters are read from. Values may be strings as typed
// by the user or numbers; they are coerced on every read.
type Form struct {
	values map[string]interface{}
}

func NewForm(values map[string]interface{}) *Form {
	f := &Form{
		values: make(map[string]interface{}, len(values)),
	}

	for k, v := range values {
		f.values[k] = v
	}

	return f
}

// NewDefaultForm holds the default axes.
func NewDefaultForm() *Form {
	defaults := setpoint.DefaultAxes()

	f := NewForm(nil)

	for _, name := range []setpoint.AxisName{setpoint.AxisTime, setpoint.AxisTemperature} {
		axis := defaults.Axis(name)

		f.Set(MinKey(name), axis.Min)
		f.Set(MaxKey(name), axis.Max)
		f.Set(DivsKey(name), axis.Divisions)
	}

	return f
}

func (f *Form) Set(key string, value interface{}) {
	f.values[key] = value
}

func (f *Form) Float(key string) (v float64, ok bool) {
	raw, exists := f.values[key]
	if !exists {
		return
	}

	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}

	ok = true

	return
}

func (f *Form) FloatOr(key string, def float64) float64 {
	if v, ok := f.Float(key); ok {
		return v
	}

	return def
}

// Axis reads {min, max, divisions} for the axis. t_min defaults to 0, every other missing or unparsable field
// falls back to the default axes.
func (f *Form) Axis(name setpoint.AxisName) setpoint.Axis {
	def := setpoint.DefaultAxes().Axis(name)
	if name == setpoint.AxisTime {
		def.Min = 0
	}

	return setpoint.Axis{
		Min:       f.FloatOr(MinKey(name), def.Min),
		Max:       f.FloatOr(MaxKey(name), def.Max),
		Divisions: f.FloatOr(DivsKey(name), def.Divisions),
	}
}

func (f *Form) Values() map[string]interface{} {
	vs := make(map[string]interface{}, len(f.values))

	for k, v := range f.values {
		vs[k] = v
	}

	return vs
}

// StepLabel describes the size of one division for the axis slider.
func (f *Form) StepLabel(name setpoint.AxisName) string {
	axis := f.Axis(name)

	divs := math.Round(axis.Divisions)
	if divs <= 0 {
		divs = 1
	}

	if name == setpoint.AxisTemperature {
		return fmt.Sprintf("temperature steps %g °C", math.Round((axis.Max-axis.Min)/divs*10)/10)
	}

	return fmt.Sprintf("time steps %g hours", math.Round(axis.Max/divs*10)/10)
}

func LoadFile(fileName string) (*Form, error) {
	d, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	var values map[string]interface{}

	err = yaml.Unmarshal(d, &values)
	if err != nil {
		return nil, err
	}

	return NewForm(values), nil
}

func (f *Form) SaveFile(fileName string) error {
	d, err := yaml.Marshal(f.values)
	if err != nil {
		return err
	}

	return os.WriteFile(fileName, d, 0600)
}
