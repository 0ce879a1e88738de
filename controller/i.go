package controller

import (
	"io"
	"net/http"
	"time"

	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/setpoint"
)

type Actuator interface {
	SetFraction(f float64) error
}

type Storage interface {
	calibration.Storage

	LoadConfig() (cfg *setpoint.ControllerConfig, exists bool, err error)
	SaveConfig(cfg *setpoint.ControllerConfig) error

	AppendBlock(b *Block) error
	LoadBlocks() ([]Block, error)
}

type Controller interface {
	GetConfig() setpoint.ControllerConfig
	SetConfig(cfg setpoint.ControllerConfig, now time.Time) error
	Restart()
	StepIndex() int
	Tick(now time.Time) error

	Calibrations() []calibration.Linear
	ApplyCalibration(req *calibration.Request) error

	Measurements() ([]Block, error)
	WriteMeasurementCSV(w io.Writer) error

	Handler() http.Handler

	Start()
	TriggerStop()
	Wait()
}

type Config struct {
	TickInterval time.Duration `yaml:"tickInterval" json:"tickInterval"`
	// zero disables stall detection
	StallTimeout time.Duration `yaml:"stallTimeout" json:"stallTimeout"`
	BlockSize    int           `yaml:"blockSize" json:"blockSize"`
}
