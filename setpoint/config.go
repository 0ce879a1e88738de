package setpoint

import (
	"encoding/json"

	"github.com/sgostarter/i/l"
)

const (
	StepSlots = 20

	// stored fractions map to temperature = frac*FracRange + FracOffset
	FracRange  = 40.0
	FracOffset = 35.0
)

const (
	DefaultMeasurementPeriodMs = 2000
	DefaultNWavelets           = 40
	DefaultWCut                = 12
)

// ControllerConfig is the fixed-size record exchanged with the controller on /config.
type ControllerConfig struct {
	StepTimes [StepSlots]float64 `json:"step_times" yaml:"step_times"`
	StepFracs [StepSlots]float64 `json:"step_fracs" yaml:"step_fracs"`

	MeasurementPeriodMs float64 `json:"measurement_period_ms" yaml:"measurement_period_ms"`
	NWavelets           float64 `json:"n_wavelets" yaml:"n_wavelets"`
	WCut                float64 `json:"w_cut" yaml:"w_cut"`
	LastModified        float64 `json:"last_modified" yaml:"last_modified"`
}

func NewControllerConfig(lastModified float64) *ControllerConfig {
	return &ControllerConfig{
		MeasurementPeriodMs: DefaultMeasurementPeriodMs,
		NWavelets:           DefaultNWavelets,
		WCut:                DefaultWCut,
		LastModified:        lastModified,
	}
}

func (cfg *ControllerConfig) UnmarshalJSON(d []byte) error {
	var raw struct {
		StepTimes           *[StepSlots]float64 `json:"step_times"`
		StepFracs           *[StepSlots]float64 `json:"step_fracs"`
		MeasurementPeriodMs *float64            `json:"measurement_period_ms"`
		PeriodMs            *float64            `json:"period_ms"`
		NWavelets           float64             `json:"n_wavelets"`
		WCut                float64             `json:"w_cut"`
		LastModified        float64             `json:"last_modified"`
	}

	if err := json.Unmarshal(d, &raw); err != nil {
		return err
	}

	if raw.StepTimes == nil || raw.StepFracs == nil {
		return ErrIncompleteConfig
	}

	*cfg = ControllerConfig{
		StepTimes:    *raw.StepTimes,
		StepFracs:    *raw.StepFracs,
		NWavelets:    raw.NWavelets,
		WCut:         raw.WCut,
		LastModified: raw.LastModified,
	}

	if raw.MeasurementPeriodMs != nil {
		cfg.MeasurementPeriodMs = *raw.MeasurementPeriodMs
	} else if raw.PeriodMs != nil {
		cfg.MeasurementPeriodMs = *raw.PeriodMs
	}

	return nil
}

func FracToTemperature(frac float64) float64 {
	return frac*FracRange + FracOffset
}

func TemperatureToFrac(temperature float64) float64 {
	return (temperature - FracOffset) / FracRange
}

// UsedSlots counts the slots that describe the profile: everything up to the last slot that is not all-zero
// padding. Slot 0 is always used. Out-of-order times are kept; Normalize sorts them.
func (cfg *ControllerConfig) UsedSlots() int {
	n := StepSlots

	for ; n > 1; n-- {
		if cfg.StepTimes[n-1] != 0 || cfg.StepFracs[n-1] != 0 {
			break
		}
	}

	return n
}

func (cfg *ControllerConfig) Points() []Point {
	n := cfg.UsedSlots()

	ps := make([]Point, n)

	for idx := 0; idx < n; idx++ {
		ps[idx] = Point{
			Time:        cfg.StepTimes[idx],
			Temperature: FracToTemperature(cfg.StepFracs[idx]),
		}
	}

	return ps
}

// StepAt returns the index of the step active elapsed seconds after LastModified.
func (cfg *ControllerConfig) StepAt(elapsed float64) int {
	n := cfg.UsedSlots()

	step := 0

	for idx := 1; idx < n; idx++ {
		if cfg.StepTimes[idx] > elapsed {
			break
		}

		step = idx
	}

	return step
}

func (cfg *ControllerConfig) FractionAt(elapsed float64) float64 {
	return cfg.StepFracs[cfg.StepAt(elapsed)]
}

func NewCurveFromConfig(axes AxisProvider, cfg *ControllerConfig, options ...Option) *Curve {
	if cfg == nil {
		return NewCurve(axes, nil, options...)
	}

	return NewCurve(axes, cfg.Points(), options...)
}

// FillConfig writes the curve into the step arrays of cfg, zero padding unused slots and dropping points
// beyond StepSlots.
func (c *Curve) FillConfig(cfg *ControllerConfig) {
	cfg.StepTimes = [StepSlots]float64{}
	cfg.StepFracs = [StepSlots]float64{}

	for idx, e := range c.entries {
		if idx >= StepSlots {
			c.logger.WithFields(l.IntField("points", len(c.entries))).Debug("curve truncated to step slots")

			break
		}

		cfg.StepTimes[idx] = e.p.Time
		cfg.StepFracs[idx] = TemperatureToFrac(e.p.Temperature)
	}
}
