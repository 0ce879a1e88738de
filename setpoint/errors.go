package setpoint

import (
	"fmt"

	"github.com/sgostarter/i/commerr"
)

var (
	ErrIncompleteConfig = fmt.Errorf("%w: incomplete controller config", commerr.ErrInvalidArgument)
)
