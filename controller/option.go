package controller

type Options struct {
	climate ClimateSensors
}

type Option func(o *Options)

// ClimateOption enables the measurement routine.
func ClimateOption(climate ClimateSensors) Option {
	return func(o *Options) {
		o.climate = climate
	}
}
