package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-command-workers/internal/common/config"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr, c := newMiniRedis(t)
	ctx := context.Background()

	type entry struct {
		Action string `json:"action"`
	}

	require.NoError(t, c.SetJSON(ctx, "voice:intent:abc", entry{Action: "navigate"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("voice:intent:abc"))

	var got entry
	require.NoError(t, c.GetJSON(ctx, "voice:intent:abc", &got))
	assert.Equal(t, "navigate", got.Action)

	mr.FastForward(2 * time.Minute)
	err := c.GetJSON(ctx, "voice:intent:abc", &got)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisClient_CorruptValue(t *testing.T) {
	mr, c := newMiniRedis(t)
	require.NoError(t, mr.Set("k", "not-json"))

	var dst map[string]interface{}
	err := c.GetJSON(context.Background(), "k", &dst)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisClient_Ping(t *testing.T) {
	mr, c := newMiniRedis(t)
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)

	c, err := NewRedis(config.RedisConfig{Address: "localhost:6379"})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestPostgresClient_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS voice_command_log`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c := &PostgresClient{DB: db}
	require.NoError(t, c.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_EnsureSchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS voice_command_log`).
		WillReturnError(errors.New("permission denied"))

	c := &PostgresClient{DB: db}
	err = c.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
