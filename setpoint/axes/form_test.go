package axes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sgostarter/libsetpoint/setpoint"
	"github.com/stretchr/testify/assert"
)

func TestFormDefaults(t *testing.T) {
	f := NewDefaultForm()

	assert.EqualValues(t, setpoint.DefaultAxes().Time, f.Axis(setpoint.AxisTime))
	assert.EqualValues(t, setpoint.DefaultAxes().Temperature, f.Axis(setpoint.AxisTemperature))
}

func TestFormCoercesFieldValues(t *testing.T) {
	f := NewForm(map[string]interface{}{
		KeyTimeMax:        "48",
		KeyTimeDivs:       "96",
		KeyTemperatureMin: 30,
		KeyTemperatureMax: "80.5",
		KeyTemperatureDiv: "",
	})

	assert.EqualValues(t, setpoint.Axis{Min: 0, Max: 48, Divisions: 96}, f.Axis(setpoint.AxisTime))
	assert.EqualValues(t, setpoint.Axis{Min: 30, Max: 80.5, Divisions: 40}, f.Axis(setpoint.AxisTemperature))

	f.Set(KeyTimeMin, "2")
	assert.EqualValues(t, 2, f.Axis(setpoint.AxisTime).Min)

	f.Set(KeyTimeMin, "abc")
	assert.EqualValues(t, 0, f.Axis(setpoint.AxisTime).Min)

	_, ok := f.Float("w_cut")
	assert.False(t, ok)
	assert.EqualValues(t, 12, f.FloatOr("w_cut", 12))
}

func TestFormDrivesCurve(t *testing.T) {
	f := NewDefaultForm()
	c := setpoint.NewCurve(f, nil)

	f.Set(KeyTimeDivs, "20")
	c.Refresh()

	assert.EqualValues(t, []int{0, 1}, c.Buckets())
}

func TestFormStepLabel(t *testing.T) {
	f := NewDefaultForm()

	assert.EqualValues(t, "temperature steps 1 °C", f.StepLabel(setpoint.AxisTemperature))
	assert.EqualValues(t, "time steps 1 hours", f.StepLabel(setpoint.AxisTime))

	f.Set(KeyTemperatureDiv, 3)
	assert.EqualValues(t, "temperature steps 13.3 °C", f.StepLabel(setpoint.AxisTemperature))
}

func TestFormFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "axes")
	assert.Nil(t, err)

	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "axes.yaml")

	f := NewDefaultForm()
	f.Set(KeyTimeMax, 24)

	err = f.SaveFile(fileName)
	assert.Nil(t, err)

	loaded, err := LoadFile(fileName)
	assert.Nil(t, err)
	assert.EqualValues(t, setpoint.Axis{Min: 0, Max: 24, Divisions: 100}, loaded.Axis(setpoint.AxisTime))
	assert.EqualValues(t, f.Axis(setpoint.AxisTemperature), loaded.Axis(setpoint.AxisTemperature))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.NotNil(t, err)
}
