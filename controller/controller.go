package controller

import (
	"context"
	"sync"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/routineman"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/setpoint"
	"github.com/sgostarter/libsetpoint/watchdog"
)

func NewController(cfg Config, storage Storage, actuator Actuator, sensors []*calibration.Sensor,
	logger l.Wrapper, options ...Option) Controller {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "controllerImpl"))

	if storage == nil || actuator == nil {
		logger.Error("no dependency objects")

		return nil
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}

	opts := &Options{}
	for _, o := range options {
		o(opts)
	}

	impl := &controllerImpl{
		cfg:        cfg,
		opts:       opts,
		logger:     logger,
		storage:    storage,
		actuator:   actuator,
		sensors:    sensors,
		routineMan: routineman.NewRoutineMan(context.Background(), logger),
	}

	if cfg.StallTimeout > 0 {
		impl.watchDog = watchdog.NewWatchDog(watchdog.Config{
			CheckInterval: cfg.TickInterval,
			MaxIdle:       cfg.StallTimeout,
		}, impl, logger)
	} else {
		impl.watchDog = watchdog.NewFakeWatchDog()
	}

	impl.init()

	return impl
}

type controllerImpl struct {
	cfg      Config
	opts     *Options
	logger   l.Wrapper
	storage  Storage
	actuator Actuator
	sensors  []*calibration.Sensor

	routineMan routineman.RoutineMan
	watchDog   watchdog.WatchDog

	lock      sync.Mutex
	config    setpoint.ControllerConfig
	completed int
	stalls    int
}

func (impl *controllerImpl) init() {
	cfg, exists, err := impl.storage.LoadConfig()
	if err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("load config failed")
	}

	if err != nil || !exists || cfg == nil {
		cfg = setpoint.NewControllerConfig(float64(time.Now().Unix()))
	}

	impl.config = *cfg

	for _, sensor := range impl.sensors {
		if _, err = sensor.Load(); err != nil {
			impl.logger.WithFields(l.ErrorField(err), l.StringField("sensor", sensor.Name())).Error("load calibration failed")
		}
	}
}

func (impl *controllerImpl) GetConfig() setpoint.ControllerConfig {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	return impl.config
}

// SetConfig replaces the schedule. When the steps already executed are unchanged the schedule restarts from
// step 0 with last_modified set to now; otherwise the submitted record is taken as is and execution continues.
func (impl *controllerImpl) SetConfig(cfg setpoint.ControllerConfig, now time.Time) error {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	restart := prefixEqual(&impl.config, &cfg, impl.completed)
	if restart {
		cfg.LastModified = float64(now.Unix())
	}

	if err := impl.storage.SaveConfig(&cfg); err != nil {
		return err
	}

	if restart {
		impl.completed = 0
	}

	impl.config = cfg

	return nil
}

func prefixEqual(a, b *setpoint.ControllerConfig, n int) bool {
	if n > setpoint.StepSlots {
		n = setpoint.StepSlots
	}

	for idx := 0; idx < n; idx++ {
		if a.StepTimes[idx] != b.StepTimes[idx] || a.StepFracs[idx] != b.StepFracs[idx] {
			return false
		}
	}

	return true
}

func (impl *controllerImpl) Restart() {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.completed = 0
}

// StepIndex is the number of schedule steps applied so far.
func (impl *controllerImpl) StepIndex() int {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	return impl.completed
}

// Tick moves the actuator to the step active at now, only ever advancing.
func (impl *controllerImpl) Tick(now time.Time) error {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	step := impl.config.StepAt(float64(now.Unix()) - impl.config.LastModified)
	if step+1 <= impl.completed {
		return nil
	}

	err := impl.actuator.SetFraction(impl.config.StepFracs[step])
	if err != nil {
		return err
	}

	impl.completed = step + 1

	return nil
}

// NotifyStall is called by the watchdog when no tick succeeded for the stall timeout.
func (impl *controllerImpl) NotifyStall(idle time.Duration) {
	impl.lock.Lock()
	impl.stalls++
	impl.lock.Unlock()

	impl.logger.WithFields(l.StringField("idle", idle.String())).Error("actuator stalled")
}

func (impl *controllerImpl) Calibrations() []calibration.Linear {
	cs := make([]calibration.Linear, 0, len(impl.sensors))

	for _, sensor := range impl.sensors {
		cs = append(cs, sensor.Calibration())
	}

	return cs
}

func (impl *controllerImpl) ApplyCalibration(req *calibration.Request) error {
	return req.Apply(impl.sensors)
}

func (impl *controllerImpl) Start() {
	impl.watchDog.Start()
	impl.routineMan.StartRoutine(impl.tickRoutine, "tickRoutine")

	if impl.opts.climate != nil {
		impl.routineMan.StartRoutine(impl.measureRoutine, "measureRoutine")
	}
}

func (impl *controllerImpl) TriggerStop() {
	impl.watchDog.Stop()
	impl.routineMan.TriggerStop()
}

func (impl *controllerImpl) Wait() {
	impl.routineMan.Wait()
	impl.watchDog.Close()
}

func (impl *controllerImpl) tickRoutine(ctx context.Context, _ func() bool) {
	logger := impl.logger.WithFields(l.StringField(l.RoutineKey, "tickRoutine"))

	logger.Debug("enter")

	defer logger.Debug("leave")

	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case <-time.After(impl.cfg.TickInterval):
			if err := impl.Tick(time.Now()); err != nil {
				logger.WithFields(l.ErrorField(err)).Error("move actuator failed")

				continue
			}

			impl.watchDog.Touch()
		}
	}
}
