package editor

import "github.com/sgostarter/libsetpoint/setpoint"

type Alerter interface {
	Alert(msg string)
}

type PixelMapper interface {
	DataAt(px, py float64) (t, temperature float64)
}

type Options struct {
	alerter Alerter
	mapper  PixelMapper
	initial []setpoint.Point
}

type Option func(o *Options)

func AlerterOption(alerter Alerter) Option {
	return func(o *Options) {
		o.alerter = alerter
	}
}

func PixelMapperOption(mapper PixelMapper) Option {
	return func(o *Options) {
		o.mapper = mapper
	}
}

// InitialPointsOption replaces the built-in default curve used until (or instead of) a successful load.
func InitialPointsOption(points []setpoint.Point) Option {
	return func(o *Options) {
		o.initial = points
	}
}

type nopAlerter struct{}

func (nopAlerter) Alert(string) {}
