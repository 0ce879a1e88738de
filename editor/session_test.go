package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/controller"
	"github.com/sgostarter/libsetpoint/remote"
	"github.com/sgostarter/libsetpoint/setpoint"
	"github.com/sgostarter/libsetpoint/setpoint/axes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type utClient struct {
	cfg    *setpoint.ControllerConfig
	err    error
	posted []*setpoint.ControllerConfig
}

func (c *utClient) GetConfig(context.Context) (*setpoint.ControllerConfig, error) {
	return c.cfg, c.err
}

func (c *utClient) PostConfig(_ context.Context, cfg *setpoint.ControllerConfig) error {
	if c.err != nil {
		return c.err
	}

	c.posted = append(c.posted, cfg)

	return nil
}

func (c *utClient) GetCalibrations(context.Context) ([]calibration.Linear, error) {
	return []calibration.Linear{calibration.DefaultLinear()}, c.err
}

func (c *utClient) PostCalibration(context.Context, *calibration.Request) error {
	return c.err
}

func (c *utClient) Restart(context.Context) error {
	return c.err
}

func (c *utClient) GetMeasurements(context.Context) ([]byte, error) {
	return []byte("j,i,time,i_T,i_RH,o_T,o_RH,amps,grams\n"), c.err
}

type utAlerter struct {
	msgs []string
}

func (a *utAlerter) Alert(msg string) {
	a.msgs = append(a.msgs, msg)
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession(nil, nil, l.NewConsoleLoggerWrapper())

	assert.NotZero(t, s.ID())
	assert.EqualValues(t, setpoint.DefaultPoints(), s.Curve().Points())
	assert.EqualValues(t, 9, len(s.Plot()))

	assert.False(t, s.Load(context.Background()))
	assert.ErrorIs(t, s.Submit(context.Background()), ErrNoClient)

	var buf bytes.Buffer
	assert.Nil(t, s.RenderSVG(&buf))
}

func TestSessionLoad(t *testing.T) {
	cfg := setpoint.NewControllerConfig(0)
	copy(cfg.StepTimes[:], []float64{0, 2, 4})
	copy(cfg.StepFracs[:], []float64{1, 0.5, 0})
	cfg.WCut = 7

	s := NewSession(axes.NewDefaultForm(), &utClient{cfg: cfg}, nil)

	assert.True(t, s.Load(context.Background()))
	assert.EqualValues(t, []setpoint.Point{
		{Time: 0, Temperature: 75},
		{Time: 2, Temperature: 55},
		{Time: 4, Temperature: 35},
	}, s.Curve().Points())
	assert.EqualValues(t, 7, s.Form().FloatOr(KeyWCut, 0))
}

func TestSessionLoadFallback(t *testing.T) {
	alerter := &utAlerter{}
	client := &utClient{err: fmt.Errorf("%w: GET /config", remote.ErrTimeout)}

	s := NewSession(nil, client, nil, AlerterOption(alerter))

	assert.False(t, s.Load(context.Background()))
	assert.False(t, s.Load(context.Background()))
	assert.EqualValues(t, []string{MsgLoadTimeout}, alerter.msgs)
	assert.EqualValues(t, setpoint.DefaultPoints(), s.Curve().Points())

	alerter = &utAlerter{}
	client = &utClient{err: errors.New("decode /config: unexpected end of JSON input")}

	s = NewSession(nil, client, nil, AlerterOption(alerter))

	assert.False(t, s.Load(context.Background()))
	assert.Empty(t, alerter.msgs)
	assert.EqualValues(t, setpoint.DefaultPoints(), s.Curve().Points())
}

func TestSessionClick(t *testing.T) {
	s := NewSession(nil, nil, nil)

	// x=80px is t=10h, y=200px is 55 °C on the default 800x400 canvas
	assert.EqualValues(t, setpoint.ToggleInserted, s.Click(80, 200))
	assert.True(t, s.Curve().Has(10))
	assert.EqualValues(t, 6, s.Curve().Len())

	assert.EqualValues(t, setpoint.ToggleRemoved, s.Click(80, 200))
	assert.EqualValues(t, setpoint.DefaultPoints(), s.Curve().Points())
}

func TestSessionTemperatureBounds(t *testing.T) {
	s := NewSession(nil, nil, nil)

	s.SetField(axes.KeyTemperatureMax, "55.4")
	assert.EqualValues(t, 55, s.Form().Axis(setpoint.AxisTemperature).Max)
	assert.EqualValues(t, []setpoint.Point{
		{Time: 0, Temperature: 55},
		{Time: 2, Temperature: 50},
		{Time: 3, Temperature: 40},
		{Time: 5, Temperature: 35},
	}, s.Curve().Points())

	s.SetField(axes.KeyTemperatureMax, 38)
	assert.EqualValues(t, 33, s.Form().Axis(setpoint.AxisTemperature).Min)

	for _, p := range s.Curve().Points() {
		assert.True(t, p.Temperature >= 33 && p.Temperature <= 38)
	}
}

func TestSessionTemperatureMin(t *testing.T) {
	s := NewSession(nil, nil, nil)

	s.SetField(axes.KeyTemperatureMin, 72)
	assert.EqualValues(t, 77, s.Form().Axis(setpoint.AxisTemperature).Max)
	assert.EqualValues(t, []setpoint.Point{
		{Time: 0, Temperature: 75},
		{Time: 1, Temperature: 72},
		{Time: 5, Temperature: 72},
	}, s.Curve().Points())
}

func TestSessionTimeResolution(t *testing.T) {
	s := NewSession(nil, nil, nil)

	s.SetField(axes.KeyTimeDivs, "20")
	assert.EqualValues(t, []int{0, 1}, s.Curve().Buckets())

	s.SetField(KeyWCut, "3")
	assert.EqualValues(t, []int{0, 1}, s.Curve().Buckets())
}

func TestSessionSubmit(t *testing.T) {
	client := &utClient{}
	s := NewSession(nil, client, nil)

	assert.Nil(t, s.Submit(context.Background()))
	require.EqualValues(t, 1, len(client.posted))

	cfg := client.posted[0]
	assert.EqualValues(t, 12, cfg.WCut)
	assert.EqualValues(t, 40, cfg.NWavelets)
	assert.EqualValues(t, 1000, cfg.MeasurementPeriodMs)
	assert.EqualValues(t, []float64{0, 1, 2, 3, 5, 0}, cfg.StepTimes[:6])
	assert.EqualValues(t, []float64{1, 0.625, 0.375, 0.125, 0, 0}, cfg.StepFracs[:6])

	client.err = errors.New("connection refused")
	assert.NotNil(t, s.Submit(context.Background()))
	assert.NotNil(t, s.SubmitCalibration(context.Background(), &calibration.Request{}))
	assert.NotNil(t, s.Restart(context.Background()))

	_, err := s.Measurements(context.Background())
	assert.NotNil(t, err)
}

type utStorage struct {
	cfg    *setpoint.ControllerConfig
	m      map[string]calibration.Linear
	blocks []controller.Block
}

func (s *utStorage) LoadConfig() (*setpoint.ControllerConfig, bool, error) {
	return s.cfg, s.cfg != nil, nil
}

func (s *utStorage) SaveConfig(cfg *setpoint.ControllerConfig) error {
	c := *cfg
	s.cfg = &c

	return nil
}

func (s *utStorage) LoadCalibration(name string) (c calibration.Linear, exists bool, err error) {
	c, exists = s.m[name]

	return
}

func (s *utStorage) SaveCalibration(name string, c calibration.Linear) error {
	if s.m == nil {
		s.m = make(map[string]calibration.Linear)
	}

	s.m[name] = c

	return nil
}

func (s *utStorage) AppendBlock(b *controller.Block) error {
	s.blocks = append(s.blocks, *b)

	return nil
}

func (s *utStorage) LoadBlocks() ([]controller.Block, error) {
	return s.blocks, nil
}

type utActuator struct{}

func (utActuator) SetFraction(float64) error {
	return nil
}

func TestSessionWithController(t *testing.T) {
	ctl := controller.NewController(controller.Config{}, &utStorage{}, utActuator{}, nil, nil)
	require.NotNil(t, ctl)

	server := httptest.NewServer(ctl.Handler())
	defer server.Close()

	s := NewSession(nil, remote.NewClient(remote.Config{BaseURL: server.URL}, nil), nil)

	// the controller starts with an empty profile: one point at 35 °C
	assert.True(t, s.Load(context.Background()))
	assert.EqualValues(t, []setpoint.Point{{Time: 0, Temperature: 35}}, s.Curve().Points())

	assert.EqualValues(t, setpoint.ToggleInserted, s.Click(80, 200))
	assert.Nil(t, s.Submit(context.Background()))

	cfg := ctl.GetConfig()
	assert.EqualValues(t, 2, cfg.UsedSlots())
	assert.InDelta(t, 10, cfg.StepTimes[1], 1e-9)
	assert.InDelta(t, 0.5, cfg.StepFracs[1], 1e-9)
	assert.EqualValues(t, 2000, cfg.MeasurementPeriodMs)

	cs, err := s.Calibrations(context.Background())
	assert.Nil(t, err)
	assert.Empty(t, cs)
}
