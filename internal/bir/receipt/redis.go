package receipt

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// nextORScript increments the counter and wraps it in one atomic step.
var nextORScript = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
if v > tonumber(ARGV[1]) then
	redis.call('SET', KEYS[1], 1)
	return 1
end
return v
`)

// RedisSequence keeps the counter in a Redis key shared by all instances.
type RedisSequence struct {
	client redis.Scripter
	key    string
}

// NewRedisSequence builds a provider keyed by series.
func NewRedisSequence(client redis.Scripter, series string) *RedisSequence {
	return &RedisSequence{client: client, key: RedisKey(series)}
}

// RedisKey returns the counter key for series.
func RedisKey(series string) string {
	return fmt.Sprintf("bir:or_sequence:%s", series)
}

// NextSequence implements SequenceProvider.
func (s *RedisSequence) NextSequence(ctx context.Context) (int64, error) {
	n, err := nextORScript.Run(ctx, s.client, []string{s.key}, MaxORNumber).Int64()
	if err != nil {
		return 0, fmt.Errorf("receipt: redis sequence %s: %w", s.key, err)
	}
	return n, nil
}
