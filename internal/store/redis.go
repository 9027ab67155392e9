package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisTable keeps a table in one Redis hash: the field is the decimal
// key and the value is the JSON-encoded record.
type RedisTable[T Keyed] struct {
	client redis.Cmdable
	table  string
}

// NewRedisTable binds a hash name to a client.
func NewRedisTable[T Keyed](client redis.Cmdable, table string) *RedisTable[T] {
	return &RedisTable[T]{
		client: client,
		table:  table,
	}
}

// Scan reads the whole hash with HVALS. Order follows the hash, which is
// unspecified.
func (r *RedisTable[T]) Scan(ctx context.Context) ([]T, error) {
	values, err := r.client.HVals(ctx, r.table).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "hvals %s", r.table)
	}

	items := make([]T, 0, len(values))
	for _, value := range values {
		var item T
		if err := json.Unmarshal([]byte(value), &item); err != nil {
			return nil, errors.Wrapf(err, "decode %s item", r.table)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *RedisTable[T]) Get(ctx context.Context, key int) (T, bool, error) {
	var item T

	raw, err := r.client.HGet(ctx, r.table, strconv.Itoa(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return item, false, nil
	}
	if err != nil {
		return item, false, errors.Wrapf(err, "hget %s %d", r.table, key)
	}

	if err := json.Unmarshal(raw, &item); err != nil {
		return item, false, errors.Wrapf(err, "decode %s %d", r.table, key)
	}
	return item, true, nil
}

func (r *RedisTable[T]) Put(ctx context.Context, item T) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return errors.Wrapf(err, "encode %s %d", r.table, item.Key())
	}

	err = r.client.HSet(ctx, r.table, strconv.Itoa(item.Key()), raw).Err()
	return errors.Wrapf(err, "hset %s %d", r.table, item.Key())
}

func (r *RedisTable[T]) Delete(ctx context.Context, key int) error {
	err := r.client.HDel(ctx, r.table, strconv.Itoa(key)).Err()
	return errors.Wrapf(err, "hdel %s %d", r.table, key)
}

func (r *RedisTable[T]) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "ping redis")
}
