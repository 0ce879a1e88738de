package watchdog

import (
	"context"
	"sync"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/routineman"
)

// NewWatchDog reports to notifier whenever Touch has not been called for MaxIdle, checked every CheckInterval.
func NewWatchDog(cfg Config, notifier Notifier, logger l.Wrapper) WatchDog {
	if notifier == nil {
		return nil
	}

	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Second * 20
	}

	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = time.Minute
	}

	if cfg.FailCount <= 0 {
		cfg.FailCount = 1
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "watchDogImpl"))

	impl := &watchDogImpl{
		cfg:         cfg,
		notifier:    notifier,
		logger:      logger,
		routineMan:  routineman.NewRoutineMan(context.Background(), logger),
		lastTouchAt: time.Now(),
	}

	impl.routineMan.StartRoutine(impl.mainRoutine, "mainRoutine")

	return impl
}

type watchDogImpl struct {
	cfg        Config
	notifier   Notifier
	logger     l.Wrapper
	routineMan routineman.RoutineMan

	lock        sync.Mutex
	started     bool
	failCount   int
	lastTouchAt time.Time
}

func (impl *watchDogImpl) Touch() {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.lastTouchAt = time.Now()
}

func (impl *watchDogImpl) Start() {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.started = true
	impl.lastTouchAt = time.Now()
	impl.failCount = 0
}

func (impl *watchDogImpl) Stop() {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.started = false
}

func (impl *watchDogImpl) Started() bool {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	return impl.started
}

func (impl *watchDogImpl) Close() {
	impl.routineMan.TriggerStop()
	impl.routineMan.Wait()
}

// check returns the idle duration when the fail count is reached.
func (impl *watchDogImpl) check() (idle time.Duration, stalled bool) {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	if !impl.started {
		return
	}

	idle = time.Since(impl.lastTouchAt)
	if idle < impl.cfg.MaxIdle {
		impl.failCount = 0

		return
	}

	impl.failCount++
	if impl.failCount < impl.cfg.FailCount {
		return
	}

	impl.failCount = 0
	impl.lastTouchAt = time.Now()
	stalled = true

	return
}

func (impl *watchDogImpl) mainRoutine(ctx context.Context, _ func() bool) {
	logger := impl.logger.WithFields(l.StringField(l.RoutineKey, "mainRoutine"))

	logger.Debug("enter")

	defer logger.Debug("leave")

	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case <-time.After(impl.cfg.CheckInterval):
			if idle, stalled := impl.check(); stalled {
				impl.notifier.NotifyStall(idle)
			}
		}
	}
}
