package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTable(t *testing.T) (*RedisTable[model.Guitar], *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisTable[model.Guitar](client, "Guitars"), mr
}

func TestRedisTable(t *testing.T) {
	testTableContract(t, func(t *testing.T) Table[model.Guitar] {
		table, _ := newRedisTable(t)
		return table
	})
}

func TestRedisTable_StoresJSONPerField(t *testing.T) {
	table, mr := newRedisTable(t)

	require.NoError(t, table.Put(context.Background(), model.Guitar{ID: 1, Brand: "Fender", Model: "Strat"}))

	assert.JSONEq(t, `{"id":1,"brand":"Fender","model":"Strat"}`, mr.HGet("Guitars", "1"))
}

func TestRedisTable_Unreachable(t *testing.T) {
	table, mr := newRedisTable(t)
	mr.Close()

	_, _, err := table.Get(context.Background(), 1)
	assert.Error(t, err)
}
