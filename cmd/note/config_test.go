package main

import (
	"testing"
	"time"

	"github.com/matsen/note/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "db-path", normalizeKey("db_path"))
	assert.Equal(t, "db-path", normalizeKey("DB_PATH"))
	assert.Equal(t, "lock-timeout", normalizeKey("lock-timeout"))
}

func TestSetConfigValue(t *testing.T) {
	c := config.Default()

	require.NoError(t, setConfigValue(c, "db-path", "/tmp/x.db"))
	assert.Equal(t, "/tmp/x.db", c.DBPath)

	require.NoError(t, setConfigValue(c, "lock-timeout", "250ms"))
	assert.Equal(t, 250*time.Millisecond, c.LockTimeout)

	require.NoError(t, setConfigValue(c, "lock-stale-after", "2m"))
	assert.Equal(t, 2*time.Minute, c.LockStaleAfter)

	require.NoError(t, setConfigValue(c, "color", "never"))
	assert.Equal(t, config.ColorNever, c.Color)

	require.NoError(t, setConfigValue(c, "time-format", "2006-01-02"))
	assert.Equal(t, "2006-01-02", c.TimeFormat)

	assert.Error(t, setConfigValue(c, "lock-timeout", "soon"))
	assert.Error(t, setConfigValue(c, "pdf-root", "/x"))
}
