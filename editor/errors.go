package editor

import "errors"

var (
	ErrNoClient = errors.New("no controller client")
)
