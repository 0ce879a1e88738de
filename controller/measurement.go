package controller

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
)

// DefaultBlockSize is the number of samples stored together in one Block.
const DefaultBlockSize = 100

type ClimateReading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// ClimateSensors reads the inside and outside temperature/relative humidity pair.
type ClimateSensors interface {
	ReadClimate() (inside, outside ClimateReading, err error)
}

// Block is a run of samples; Time is taken when the block is full.
type Block struct {
	Time int64 `json:"time"`
	// samples with inside absolute humidity below w_cut
	Cutoffs int `json:"cutoffs"`

	InsideTemp  []float64 `json:"inside_temp"`
	OutsideTemp []float64 `json:"outside_temp"`
	InsideRH    []float64 `json:"inside_rh"`
	OutsideRH   []float64 `json:"outside_rh"`
	Amps        []float64 `json:"amps"`
	Grams       []float64 `json:"grams"`
}

func newBlock(size int) *Block {
	return &Block{
		InsideTemp:  make([]float64, 0, size),
		OutsideTemp: make([]float64, 0, size),
		InsideRH:    make([]float64, 0, size),
		OutsideRH:   make([]float64, 0, size),
		Amps:        make([]float64, 0, size),
		Grams:       make([]float64, 0, size),
	}
}

// AbsHumidity converts temperature (°C, -17 to 100) and relative humidity (0 to 100) to g/m³ using the Stull
// Antoine coefficients for water vapour pressure and the ideal gas law.
func AbsHumidity(temperature, rhPercent float64) float64 {
	const (
		a        = 4.6543
		b        = 1435.264
		c        = -64.848
		mw       = 18.01528         // g/mol
		r        = 8.31446261815324 // J/(mol K)
		paPerBar = 1e5
	)

	kelvin := temperature + 273.15
	p := paPerBar * math.Pow(10, a-b/(kelvin+c)) * rhPercent / 100

	return mw * p / kelvin / r
}

func (impl *controllerImpl) measurementPeriod() time.Duration {
	ms := impl.GetConfig().MeasurementPeriodMs
	if ms <= 0 {
		return 0
	}

	return time.Duration(ms * float64(time.Millisecond))
}

func (impl *controllerImpl) readSensor(idx int) (float64, error) {
	if idx >= len(impl.sensors) {
		return 0, nil
	}

	return impl.sensors[idx].Read()
}

// measureBlock samples until the block is full, waiting measurement_period_ms after each climate read.
func (impl *controllerImpl) measureBlock(ctx context.Context) (*Block, error) {
	block := newBlock(impl.cfg.BlockSize)

	for idx := 0; idx < impl.cfg.BlockSize; idx++ {
		inside, outside, err := impl.opts.climate.ReadClimate()
		if err != nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(impl.measurementPeriod()):
		}

		amps, err := impl.readSensor(0)
		if err != nil {
			return nil, err
		}

		grams, err := impl.readSensor(1)
		if err != nil {
			return nil, err
		}

		block.InsideTemp = append(block.InsideTemp, inside.Temperature)
		block.OutsideTemp = append(block.OutsideTemp, outside.Temperature)
		block.InsideRH = append(block.InsideRH, inside.Humidity)
		block.OutsideRH = append(block.OutsideRH, outside.Humidity)
		block.Amps = append(block.Amps, amps)
		block.Grams = append(block.Grams, grams)

		if AbsHumidity(inside.Temperature, inside.Humidity) < impl.GetConfig().WCut {
			block.Cutoffs++
		}
	}

	block.Time = time.Now().Unix()

	return block, nil
}

func (impl *controllerImpl) measureRoutine(ctx context.Context, _ func() bool) {
	logger := impl.logger.WithFields(l.StringField(l.RoutineKey, "measureRoutine"))

	logger.Debug("enter")

	defer logger.Debug("leave")

	for ctx.Err() == nil {
		block, err := impl.measureBlock(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}

			logger.WithFields(l.ErrorField(err)).Error("measure failed")

			select {
			case <-ctx.Done():
			case <-time.After(impl.cfg.TickInterval):
			}

			continue
		}

		if err = impl.storage.AppendBlock(block); err != nil {
			logger.WithFields(l.ErrorField(err)).Error("save block failed")
		}
	}
}

func (impl *controllerImpl) Measurements() ([]Block, error) {
	return impl.storage.LoadBlocks()
}

// WriteMeasurementCSV writes one row per sample: block index, sample index, block time, inside temperature and
// humidity, outside temperature and humidity, amps and grams.
func (impl *controllerImpl) WriteMeasurementCSV(w io.Writer) error {
	blocks, err := impl.storage.LoadBlocks()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	err = writer.Write([]string{"j", "i", "time", "i_T", "i_RH", "o_T", "o_RH", "amps", "grams"})
	if err != nil {
		return err
	}

	for j, block := range blocks {
		for i := range block.InsideTemp {
			err = writer.Write([]string{
				cast.ToString(j),
				cast.ToString(i),
				cast.ToString(block.Time),
				cast.ToString(block.InsideTemp[i]),
				cast.ToString(at(block.InsideRH, i)),
				cast.ToString(at(block.OutsideTemp, i)),
				cast.ToString(at(block.OutsideRH, i)),
				cast.ToString(at(block.Amps, i)),
				cast.ToString(at(block.Grams, i)),
			})
			if err != nil {
				return err
			}
		}
	}

	writer.Flush()

	return writer.Error()
}

func at(vs []float64, i int) float64 {
	if i < len(vs) {
		return vs[i]
	}

	return 0
}
