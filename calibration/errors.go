package calibration

import "errors"

var (
	ErrNoStorage = errors.New("no calibration storage")
)
