package redisimpls

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/controller"
	"github.com/sgostarter/libsetpoint/setpoint"
)

func NewRedisStorage(preKey string, redisCli *redis.Client, logger l.Wrapper) controller.Storage {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "redisStorage"))

	if redisCli == nil {
		logger.Fatal("no redis client")
	}

	return &redisStorage{
		logger:   logger,
		preKey:   preKey,
		redisCli: redisCli,
	}
}

type redisStorage struct {
	logger   l.Wrapper
	preKey   string
	redisCli *redis.Client
}

func (impl *redisStorage) configKey() string {
	return impl.preKey + ":config"
}

func (impl *redisStorage) calibrationKey() string {
	return impl.preKey + ":calib"
}

func (impl *redisStorage) blocksKey() string {
	return impl.preKey + ":blocks"
}

func (impl *redisStorage) LoadConfig() (cfg *setpoint.ControllerConfig, exists bool, err error) {
	d, err := impl.redisCli.Get(context.Background(), impl.configKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = nil
		}

		return
	}

	cfg = &setpoint.ControllerConfig{}

	err = json.Unmarshal(d, cfg)
	if err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("stored config is broken")

		cfg = nil

		return
	}

	exists = true

	return
}

func (impl *redisStorage) SaveConfig(cfg *setpoint.ControllerConfig) error {
	d, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return impl.redisCli.Set(context.Background(), impl.configKey(), d, 0).Err()
}

func (impl *redisStorage) LoadCalibration(name string) (c calibration.Linear, exists bool, err error) {
	d, err := impl.redisCli.HGet(context.Background(), impl.calibrationKey(), name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = nil
		}

		return
	}

	err = json.Unmarshal(d, &c)
	if err != nil {
		return
	}

	exists = true

	return
}

func (impl *redisStorage) SaveCalibration(name string, c calibration.Linear) error {
	d, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return saveCalibrationScript.Run(context.Background(), impl.redisCli, []string{impl.calibrationKey()},
		name, string(d)).Err()
}

func (impl *redisStorage) AppendBlock(b *controller.Block) error {
	d, err := json.Marshal(b)
	if err != nil {
		return err
	}

	return impl.redisCli.RPush(context.Background(), impl.blocksKey(), d).Err()
}

func (impl *redisStorage) LoadBlocks() ([]controller.Block, error) {
	ds, err := impl.redisCli.LRange(context.Background(), impl.blocksKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	blocks := make([]controller.Block, 0, len(ds))

	for _, d := range ds {
		var b controller.Block

		if err = json.Unmarshal([]byte(d), &b); err != nil {
			impl.logger.WithFields(l.ErrorField(err)).Error("stored block is broken")

			continue
		}

		blocks = append(blocks, b)
	}

	return blocks, nil
}
