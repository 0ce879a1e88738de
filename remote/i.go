package remote

import (
	"context"
	"time"

	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/setpoint"
)

type Client interface {
	GetConfig(ctx context.Context) (*setpoint.ControllerConfig, error)
	PostConfig(ctx context.Context, cfg *setpoint.ControllerConfig) error

	GetCalibrations(ctx context.Context) ([]calibration.Linear, error)
	PostCalibration(ctx context.Context, req *calibration.Request) error

	Restart(ctx context.Context) error

	// GetMeasurements returns the raw /measurement.csv body.
	GetMeasurements(ctx context.Context) ([]byte, error)
}

type Config struct {
	BaseURL  string        `yaml:"baseURL" json:"baseURL"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	CacheTTL time.Duration `yaml:"cacheTTL" json:"cacheTTL"`
}
