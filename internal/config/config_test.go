package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-bot/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	// GIVEN a file overriding some defaults and an env var overriding the file
	path := writeConfig(t, `
server:
  port: 8080
store:
  driver: memory
attendance:
  max_attempts: 5
  retry_delay: 1m
notify:
  attendance_webhook: http://from-file
`)
	t.Setenv("TEAMS_WEBHOOK", "http://from-env")
	t.Setenv("PORT", "9090")

	// WHEN
	cfg, err := config.Load(path)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Attendance.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Attendance.RetryDelay)
	assert.Equal(t, "http://from-env", cfg.Notify.AttendanceWebhook)
	// untouched defaults
	assert.Equal(t, 8, cfg.Attendance.DayStartHour)
	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, "ja", cfg.Locale)
	assert.Equal(t, "Asia/Yangon", cfg.Location().String())
	assert.Equal(t, "30 8 * * 1-5", cfg.Schedule.Attendance)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "store:\n  driver: redis\n"))
	assert.ErrorContains(t, err, "store.driver")

	_, err = config.Load(writeConfig(t, "timezone: Mars/Olympus\n"))
	assert.ErrorContains(t, err, "timezone")

	_, err = config.Load(writeConfig(t, "attendance:\n  max_attempts: 0\n"))
	assert.ErrorContains(t, err, "max_attempts")
}
