package editor

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/godruoyi/go-snowflake"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/remote"
	"github.com/sgostarter/libsetpoint/render"
	"github.com/sgostarter/libsetpoint/setpoint"
	"github.com/sgostarter/libsetpoint/setpoint/axes"
)

const (
	KeyWCut                = "w_cut"
	KeyNWavelets           = "n_wavelets"
	KeyMeasurementPeriodMs = "measurement_period_ms"

	defaultSubmitWCut                = 12
	defaultSubmitNWavelets           = 40
	defaultSubmitMeasurementPeriodMs = 1000

	// smallest allowed T_max - T_min
	minTemperatureSpan = 5

	MsgLoadTimeout = "The server did not respond in time. Using default values."
)

// Session is the UI controller of one editing page: it owns the curve and routes clicks, field changes and
// controller exchanges to it.
type Session struct {
	id      uint64
	logger  l.Wrapper
	form    *axes.Form
	client  remote.Client
	alerter Alerter
	mapper  PixelMapper

	curve *setpoint.Curve

	alerted bool
}

func NewSession(form *axes.Form, client remote.Client, logger l.Wrapper, options ...Option) *Session {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if form == nil {
		form = axes.NewDefaultForm()
	}

	opts := &Options{}
	for _, o := range options {
		o(opts)
	}

	if opts.alerter == nil {
		opts.alerter = nopAlerter{}
	}

	if opts.mapper == nil {
		opts.mapper = render.Viewport{Width: render.DefaultWidth, Height: render.DefaultHeight, Axes: form}
	}

	id := snowflake.ID()

	logger = logger.WithFields(l.StringField(l.ClsKey, "Session"), l.UInt64Field("session", id))

	return &Session{
		id:      id,
		logger:  logger,
		form:    form,
		client:  client,
		alerter: opts.alerter,
		mapper:  opts.mapper,
		curve:   setpoint.NewCurve(form, opts.initial, setpoint.LoggerOption(logger)),
	}
}

func (s *Session) ID() uint64 {
	return s.id
}

func (s *Session) Curve() *setpoint.Curve {
	return s.curve
}

func (s *Session) Form() *axes.Form {
	return s.form
}

// Load seeds the curve from the controller. Any failure keeps the current curve; a timeout is reported to
// the user once per session.
func (s *Session) Load(ctx context.Context) (loaded bool) {
	if s.client == nil {
		return
	}

	cfg, err := s.client.GetConfig(ctx)
	if err != nil {
		s.logger.WithFields(l.ErrorField(err)).Error("load config failed, using defaults")

		if errors.Is(err, remote.ErrTimeout) && !s.alerted {
			s.alerted = true
			s.alerter.Alert(MsgLoadTimeout)
		}

		return
	}

	s.form.Set(KeyWCut, cfg.WCut)
	s.form.Set(KeyNWavelets, cfg.NWavelets)
	s.form.Set(KeyMeasurementPeriodMs, cfg.MeasurementPeriodMs)

	s.curve.Reset(cfg.Points())

	loaded = true

	return
}

// Click toggles the point under the pixel position.
func (s *Session) Click(px, py float64) setpoint.ToggleResult {
	t, temperature := s.mapper.DataAt(px, py)

	return s.curve.Toggle(t, temperature)
}

// SetField applies an input field change. Temperature bounds are rounded, clamp the curve and keep a span of at
// least 5 °C by moving the opposite bound.
func (s *Session) SetField(key string, value interface{}) {
	s.form.Set(key, value)

	switch key {
	case axes.KeyTemperatureMax:
		tMax := math.Round(s.form.FloatOr(key, setpoint.DefaultAxes().Temperature.Max))
		s.form.Set(key, tMax)

		if tMin := s.form.Axis(setpoint.AxisTemperature).Min; tMax-tMin < minTemperatureSpan {
			s.form.Set(axes.KeyTemperatureMin, tMax-minTemperatureSpan)
		}

		s.rescale()
	case axes.KeyTemperatureMin:
		tMin := math.Round(s.form.FloatOr(key, setpoint.DefaultAxes().Temperature.Min))
		s.form.Set(key, tMin)

		if tMax := s.form.Axis(setpoint.AxisTemperature).Max; tMax-tMin < minTemperatureSpan {
			s.form.Set(axes.KeyTemperatureMax, tMin+minTemperatureSpan)
		}

		s.rescale()
	case axes.KeyTimeMin, axes.KeyTimeMax, axes.KeyTimeDivs, axes.KeyTemperatureDiv:
		s.curve.Refresh()
	}
}

func (s *Session) rescale() {
	axis := s.form.Axis(setpoint.AxisTemperature)

	s.curve.RescaleTemperatureBounds(axis.Min, axis.Max)
}

func (s *Session) Plot() []setpoint.PlotPoint {
	return s.curve.Flatten()
}

func (s *Session) RenderSVG(w io.Writer) error {
	return render.SVG(w, s.Plot(), s.form)
}

// Config builds the record submitted to the controller.
func (s *Session) Config() *setpoint.ControllerConfig {
	cfg := &setpoint.ControllerConfig{
		MeasurementPeriodMs: s.form.FloatOr(KeyMeasurementPeriodMs, defaultSubmitMeasurementPeriodMs),
		NWavelets:           s.form.FloatOr(KeyNWavelets, defaultSubmitNWavelets),
		WCut:                s.form.FloatOr(KeyWCut, defaultSubmitWCut),
	}

	s.curve.FillConfig(cfg)

	return cfg
}

func (s *Session) Submit(ctx context.Context) error {
	if s.client == nil {
		return ErrNoClient
	}

	err := s.client.PostConfig(ctx, s.Config())
	if err != nil {
		s.logger.WithFields(l.ErrorField(err)).Error("submit config failed")
	}

	return err
}

func (s *Session) SubmitCalibration(ctx context.Context, req *calibration.Request) error {
	if s.client == nil {
		return ErrNoClient
	}

	err := s.client.PostCalibration(ctx, req)
	if err != nil {
		s.logger.WithFields(l.ErrorField(err)).Error("submit calibration failed")
	}

	return err
}

func (s *Session) Calibrations(ctx context.Context) ([]calibration.Linear, error) {
	if s.client == nil {
		return nil, ErrNoClient
	}

	return s.client.GetCalibrations(ctx)
}

func (s *Session) Restart(ctx context.Context) error {
	if s.client == nil {
		return ErrNoClient
	}

	return s.client.Restart(ctx)
}

func (s *Session) Measurements(ctx context.Context) ([]byte, error) {
	if s.client == nil {
		return nil, ErrNoClient
	}

	return s.client.GetMeasurements(ctx)
}
