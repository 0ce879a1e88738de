package redisimpls

import "github.com/go-redis/redis/v8"

var (
	// returns 0 when the stored calibration is already identical
	saveCalibrationScript = redis.NewScript(`
		local old = redis.call('HGET', KEYS[1], ARGV[1])
		if old == ARGV[2] then
			return 0
		end
		redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
		return 1
	`)
)
