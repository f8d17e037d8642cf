package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, []string{"00:00", "12:00"}, cfg.CutTimes)
	assert.Equal(t, "America/Mexico_City", cfg.Timezone)
	assert.Equal(t, 2*time.Hour, cfg.HealthCheckInterval)
	assert.Equal(t, 100, cfg.ReportRetention)
	assert.EqualValues(t, 5800, cfg.Tariff.FirstHourRateCents)
	assert.EqualValues(t, 2900, cfg.Tariff.BlockRateCents)
	assert.Equal(t, 30, cfg.Tariff.BlockMinutes)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsBadCutTime(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CUT_TIMES", "00:00,25:99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUT_TIMES")
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestGetCents(t *testing.T) {
	t.Setenv("TARIFF_FIRST_HOUR", "58.50")
	assert.EqualValues(t, 5850, getCents("TARIFF_FIRST_HOUR", 0))

	t.Setenv("TARIFF_FIRST_HOUR", "58")
	assert.EqualValues(t, 5800, getCents("TARIFF_FIRST_HOUR", 0))

	t.Setenv("TARIFF_FIRST_HOUR", "not-a-number")
	assert.EqualValues(t, 1234, getCents("TARIFF_FIRST_HOUR", 1234))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"00:00", "12:00"}, splitCSV(" 00:00 , 12:00 "))
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV(" , ,"))
}
