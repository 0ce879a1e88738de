package controller

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/setpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type utClimate struct {
	err error
}

func (c *utClimate) ReadClimate() (inside, outside ClimateReading, err error) {
	return ClimateReading{Temperature: 20, Humidity: 50}, ClimateReading{Temperature: 10, Humidity: 80}, c.err
}

func utMeasureController(t *testing.T, cfg Config, periodMs float64, climate ClimateSensors) (*controllerImpl, *utStorage) {
	schedule := setpoint.NewControllerConfig(0)
	schedule.MeasurementPeriodMs = periodMs
	schedule.WCut = 8.7

	storage := &utStorage{cfg: schedule}
	sensors := []*calibration.Sensor{
		calibration.NewSensor("ACS712", &utReader{v: 10}, storage),
		calibration.NewSensor("HX711", &utReader{v: 20}, storage),
	}

	c := NewController(cfg, storage, &utActuator{}, sensors, l.NewConsoleLoggerWrapper(), ClimateOption(climate))
	require.NotNil(t, c)

	impl, ok := c.(*controllerImpl)
	require.True(t, ok)

	return impl, storage
}

func TestAbsHumidity(t *testing.T) {
	assert.InDelta(t, 8.616, AbsHumidity(20, 50), 0.01)
	assert.InDelta(t, 24.47, AbsHumidity(30, 80), 0.01)
	assert.EqualValues(t, 0, AbsHumidity(25, 0))
}

func TestControllerMeasureBlock(t *testing.T) {
	impl, _ := utMeasureController(t, Config{BlockSize: 3}, 1, &utClimate{})

	block, err := impl.measureBlock(context.Background())
	require.Nil(t, err)
	assert.True(t, block.Time > 0)
	assert.EqualValues(t, 3, block.Cutoffs)
	assert.EqualValues(t, []float64{20, 20, 20}, block.InsideTemp)
	assert.EqualValues(t, []float64{80, 80, 80}, block.OutsideRH)
	assert.EqualValues(t, []float64{10, 10, 10}, block.Amps)
	assert.EqualValues(t, []float64{20, 20, 20}, block.Grams)

	cfg := impl.GetConfig()
	cfg.WCut = 8.5
	require.Nil(t, impl.SetConfig(cfg, time.Now()))

	block, err = impl.measureBlock(context.Background())
	require.Nil(t, err)
	assert.EqualValues(t, 0, block.Cutoffs)
}

func TestControllerMeasureBlockFailed(t *testing.T) {
	impl, _ := utMeasureController(t, Config{BlockSize: 3}, 1, &utClimate{err: errors.New("sht31 nack")})

	_, err := impl.measureBlock(context.Background())
	assert.NotNil(t, err)

	impl, _ = utMeasureController(t, Config{BlockSize: 3}, 60000, &utClimate{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = impl.measureBlock(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerMeasureRoutine(t *testing.T) {
	impl, storage := utMeasureController(t, Config{TickInterval: time.Millisecond * 10, BlockSize: 2}, 1,
		&utClimate{})

	impl.Start()

	var blocks []Block

	for idx := 0; idx < 200 && len(blocks) == 0; idx++ {
		time.Sleep(time.Millisecond * 10)

		blocks, _ = storage.LoadBlocks()
	}

	impl.TriggerStop()
	impl.Wait()

	require.NotEmpty(t, blocks)
	assert.EqualValues(t, 2, len(blocks[0].InsideTemp))
	assert.EqualValues(t, 2, blocks[0].Cutoffs)
}

func TestControllerMeasurementCSV(t *testing.T) {
	impl, storage := utMeasureController(t, Config{}, 1, nil)

	storage.blocks = []Block{
		{
			Time: 100, InsideTemp: []float64{20, 21}, OutsideTemp: []float64{10, 11},
			InsideRH: []float64{50, 51}, OutsideRH: []float64{80, 81},
			Amps: []float64{1, 2}, Grams: []float64{300, 301},
		},
		{Time: 200, InsideTemp: []float64{22.5}},
	}

	s := httptest.NewServer(impl.Handler())
	defer s.Close()

	resp, err := http.Get(s.URL + PathMeasurement)
	require.Nil(t, err)

	records, err := csv.NewReader(resp.Body).ReadAll()
	resp.Body.Close()
	require.Nil(t, err)

	assert.EqualValues(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.EqualValues(t, [][]string{
		{"j", "i", "time", "i_T", "i_RH", "o_T", "o_RH", "amps", "grams"},
		{"0", "0", "100", "20", "50", "10", "80", "1", "300"},
		{"0", "1", "100", "21", "51", "11", "81", "2", "301"},
		{"1", "0", "200", "22.5", "0", "0", "0", "0", "0"},
	}, records)

	resp, err = http.Post(s.URL+PathMeasurement, "text/csv", nil)
	require.Nil(t, err)
	resp.Body.Close()
	assert.EqualValues(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
