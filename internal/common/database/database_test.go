package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-intel/internal/common/config"
)

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	c := &PostgresClient{DB: db}

	mock.ExpectPing()
	assert.NoError(t, c.Ping(context.Background(), time.Second))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = c.Ping(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres ping failed")

	mock.ExpectClose()
	assert.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background(), time.Second))

	stats := c.PoolStats()
	assert.Equal(t, mr.Addr(), stats["address"])
	assert.GreaterOrEqual(t, stats["totalConns"], uint32(1))

	mr.Close()
	err := c.Ping(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), mr.Addr())
}
