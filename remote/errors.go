package remote

import "errors"

var (
	ErrTimeout = errors.New("controller did not respond in time")
	ErrStatus  = errors.New("unexpected status")
)
