package watchdog

import "time"

type Notifier interface {
	NotifyStall(idle time.Duration)
}

type WatchDog interface {
	Touch()

	Start()
	Stop()
	Started() bool

	Close()
}

type Config struct {
	CheckInterval time.Duration `yaml:"checkInterval" json:"checkInterval"`

	MaxIdle   time.Duration `yaml:"maxIdle" json:"maxIdle"`
	FailCount int           `yaml:"failCount" json:"failCount"`
}
