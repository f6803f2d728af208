package highscore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// recordMaxScript обновляет значение только если новое больше
var recordMaxScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '-1')
local h = tonumber(ARGV[1])
if h > cur then
	redis.call('SET', KEYS[1], h)
	return h
end
return cur
`)

// RedisRepo хранит рекорд в Redis
type RedisRepo struct {
	client *redis.Client
	key    string
}

// NewRedisRepo подключается к Redis и проверяет соединение
func NewRedisRepo(ctx context.Context, addr, key string) (*RedisRepo, error) {
	if key == "" {
		key = DefaultKey
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRepo{client: client, key: key}, nil
}

func (r *RedisRepo) Load(ctx context.Context) (int, bool, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get high score: %w", err)
	}

	value, err := strconv.Atoi(data)
	if err != nil {
		return 0, false, fmt.Errorf("повреждённое значение рекорда %q: %w", data, err)
	}
	return value, true, nil
}

func (r *RedisRepo) RecordMax(ctx context.Context, height int) (int, error) {
	if height < 0 {
		return 0, ErrNegativeScore
	}

	value, err := recordMaxScript.Run(ctx, r.client, []string{r.key}, height).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to record high score: %w", err)
	}
	return int(value), nil
}

func (r *RedisRepo) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to reset high score: %w", err)
	}
	return nil
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}
